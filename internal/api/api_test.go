package api

import (
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router  *gin.Engine
	clock   *clockwork.FakeClock
	store   storage.KeyValueStore
	tracker service.TrackerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewFileStorage(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	history := service.NewHistoryService(repository.NewHistoryRepository(store, "workoutData"), nil)
	require.NoError(t, history.Load(context.Background()))

	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 4, 14, 13, 20, 0, time.UTC))
	tracker := service.NewTrackerService(history, service.TrackerOptions{Clock: clock, Location: time.UTC})
	t.Cleanup(tracker.Close)

	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	router := gin.New()
	router.Use(RequestIDMiddleware(), LoggerMiddleware(log.New(&strings.Builder{})))
	SetupRoutes(router, tracker, history, RouteOptions{
		Templates:      tmpl,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	})

	return &testEnv{router: router, clock: clock, store: store, tracker: tracker}
}

func (e *testEnv) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestWorkoutFlow(t *testing.T) {
	env := newTestEnv(t)

	snap := decode[service.Snapshot](t, env.do(t, http.MethodGet, "/api/v1/session"))
	assert.Equal(t, 0, snap.Sets)
	assert.False(t, snap.CanFinish)

	rec := env.do(t, http.MethodPost, "/api/v1/session/finish")
	assert.Equal(t, http.StatusConflict, rec.Code)

	snap = decode[service.Snapshot](t, env.do(t, http.MethodPost, "/api/v1/session/sets"))
	assert.Equal(t, 1, snap.Sets)
	assert.True(t, snap.Resting)

	env.clock.Advance(45 * time.Second)
	snap = decode[service.Snapshot](t, env.do(t, http.MethodPost, "/api/v1/session/rest/stop"))
	assert.Equal(t, []int{45}, snap.RestTimes)
	assert.False(t, snap.Resting)

	env.do(t, http.MethodPost, "/api/v1/session/sets")
	env.clock.Advance(62 * time.Second)

	rec = env.do(t, http.MethodPost, "/api/v1/session/finish")
	require.Equal(t, http.StatusCreated, rec.Code)
	workout := decode[WorkoutResponse](t, rec)
	assert.Equal(t, 2, workout.Sets)
	assert.Equal(t, []int{45, 62}, workout.RestTimes)
	assert.Equal(t, []string{"0:45", "1:02"}, workout.RestTimesLabel)
	assert.Equal(t, "2025/1/4 14:15:07", workout.Date)

	history := decode[[]WorkoutResponse](t, env.do(t, http.MethodGet, "/api/v1/history"))
	require.Len(t, history, 1)
	assert.Equal(t, workout, history[0])

	raw, err := env.store.Get(context.Background(), "workoutData")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":`+strconv.FormatInt(workout.ID, 10)+`,"sets":2,"restTimes":[45,62],"date":"2025/1/4 14:15:07"}]`, string(raw))

	snap = decode[service.Snapshot](t, env.do(t, http.MethodGet, "/api/v1/session"))
	assert.Equal(t, 0, snap.Sets)
	assert.Equal(t, "idle", string(snap.State))
}

func TestDeleteWorkout(t *testing.T) {
	env := newTestEnv(t)

	var ids []int64
	for i := 0; i < 3; i++ {
		env.do(t, http.MethodPost, "/api/v1/session/sets")
		env.clock.Advance(time.Minute)
		ids = append(ids, decode[WorkoutResponse](t, env.do(t, http.MethodPost, "/api/v1/session/finish")).ID)
	}

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, "/api/v1/history/not-a-number").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/v1/history/42").Code)

	rec := env.do(t, http.MethodDelete, "/api/v1/history/"+strconv.FormatInt(ids[1], 10))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	history := decode[[]WorkoutResponse](t, env.do(t, http.MethodGet, "/api/v1/history"))
	require.Len(t, history, 2)
	assert.Equal(t, ids[2], history[0].ID)
	assert.Equal(t, ids[0], history[1].ID)
}

func TestClearHistory(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/session/sets")
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/session/finish").Code)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, "/api/v1/history").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, "/api/v1/history?confirm=no").Code)
	assert.Len(t, decode[[]WorkoutResponse](t, env.do(t, http.MethodGet, "/api/v1/history")), 1)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/history?confirm=true").Code)
	assert.Empty(t, decode[[]WorkoutResponse](t, env.do(t, http.MethodGet, "/api/v1/history")))
}

func TestDrawer(t *testing.T) {
	env := newTestEnv(t)

	snap := decode[service.Snapshot](t, env.do(t, http.MethodPost, "/api/v1/drawer/toggle"))
	assert.True(t, snap.DrawerOpen)
	snap = decode[service.Snapshot](t, env.do(t, http.MethodPost, "/api/v1/drawer/close"))
	assert.False(t, snap.DrawerOpen)
}

func TestDrawerClosesOnMainAreaAction(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/session/sets")
	env.clock.Advance(10 * time.Second)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/session/finish").Code)
	id := decode[[]WorkoutResponse](t, env.do(t, http.MethodGet, "/api/v1/history"))[0].ID

	require.True(t, decode[service.Snapshot](t, env.do(t, http.MethodPost, "/api/v1/drawer/toggle")).DrawerOpen)
	body := env.do(t, http.MethodGet, "/").Body.String()
	assert.Contains(t, body, `class="drawer open"`)
	// Only buttons inside the drawer keep it open; the rest close it before acting.
	assert.Contains(t, body, "drawer.contains(el) ? Promise.resolve() : closeDrawer()")

	// A delete from inside the drawer leaves it open.
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/history/"+strconv.FormatInt(id, 10)).Code)
	assert.Contains(t, env.do(t, http.MethodGet, "/").Body.String(), `class="drawer open"`)

	// "Complete a set" sits outside the drawer: close, then act, then reload.
	env.do(t, http.MethodPost, "/api/v1/drawer/close")
	env.do(t, http.MethodPost, "/api/v1/session/sets")

	rec := env.do(t, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.NotContains(t, body, `class="drawer open"`)
	assert.Contains(t, body, `<div class="sets-display" id="sets">1</div>`)
	assert.False(t, decode[service.Snapshot](t, env.do(t, http.MethodGet, "/api/v1/session")).DrawerOpen)
}

func TestIndexPage(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/session/sets")
	env.clock.Advance(125 * time.Second)
	env.do(t, http.MethodPost, "/api/v1/session/rest/stop")

	rec := env.do(t, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<div class="sets-display" id="sets">1</div>`)
	assert.Contains(t, body, `<span class="rest-chip">2:05</span>`)
	assert.Contains(t, body, "No workouts yet")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/metrics").Code)
}

func TestEventsStream(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/session/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	env.tracker.AddSet()

	scanner := bufio.NewScanner(resp.Body)
	var sawSet bool
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		var snap service.Snapshot
		require.NoError(t, json.Unmarshal([]byte(data), &snap))
		if snap.Sets == 1 {
			sawSet = true
			break
		}
	}
	assert.True(t, sawSet, "expected a snapshot with one set")
}
