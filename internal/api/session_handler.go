package api

import (
	"alcyxob/workout-tracker/internal/service"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const snapshotEvent = "snapshot"

// SessionHandler exposes the current workout session.
type SessionHandler struct {
	tracker service.TrackerService
}

func NewSessionHandler(tracker service.TrackerService) *SessionHandler {
	return &SessionHandler{tracker: tracker}
}

// GetSession godoc
// @Summary Current session snapshot
// @Tags Session
// @Produce json
// @Success 200 {object} service.Snapshot
// @Router /session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Snapshot())
}

// AddSet godoc
// @Summary Complete a set
// @Description Counts a set and (re)starts the rest timer.
// @Tags Session
// @Produce json
// @Success 200 {object} service.Snapshot
// @Router /session/sets [post]
func (h *SessionHandler) AddSet(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.AddSet())
}

// StopRest godoc
// @Summary Stop resting
// @Description Ends the running rest period, recording it when it lasted at least one second.
// @Tags Session
// @Produce json
// @Success 200 {object} service.Snapshot
// @Router /session/rest/stop [post]
func (h *SessionHandler) StopRest(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.StopRest())
}

// FinishWorkout godoc
// @Summary Finish the workout
// @Description Stores the session in history and resets it.
// @Tags Session
// @Produce json
// @Success 201 {object} WorkoutResponse
// @Failure 409 {object} gin.H "No sets recorded"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /session/finish [post]
func (h *SessionHandler) FinishWorkout(c *gin.Context) {
	record, err := h.tracker.FinishWorkout(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoSetsRecorded) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "Failed to save workout.")
		}
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(record))
}

// Events godoc
// @Summary Stream session snapshots
// @Description Server-sent events; one "snapshot" event per change and per rest tick.
// @Tags Session
// @Produce text/event-stream
// @Router /session/events [get]
func (h *SessionHandler) Events(c *gin.Context) {
	updates, cancel := h.tracker.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent(snapshotEvent, snap)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// ToggleDrawer godoc
// @Summary Toggle the history drawer
// @Tags Drawer
// @Produce json
// @Success 200 {object} service.Snapshot
// @Router /drawer/toggle [post]
func (h *SessionHandler) ToggleDrawer(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.ToggleDrawer())
}

// CloseDrawer godoc
// @Summary Close the history drawer
// @Tags Drawer
// @Produce json
// @Success 200 {object} service.Snapshot
// @Router /drawer/close [post]
func (h *SessionHandler) CloseDrawer(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.CloseDrawer())
}
