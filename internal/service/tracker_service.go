package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/metrics"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
)

var ErrNoSetsRecorded = errors.New("no sets recorded in this workout")

const (
	DefaultTickInterval = time.Second
	DefaultDateLayout   = "2006/1/2 15:04:05"
)

// Snapshot is the read model of the tracker handed to the API and subscribers.
type Snapshot struct {
	State          domain.SessionState `json:"state"`
	Sets           int                 `json:"sets"`
	RestTimes      []int               `json:"restTimes"`
	Resting        bool                `json:"resting"`
	RestStartedAt  *time.Time          `json:"restStartedAt,omitempty"`
	ElapsedSeconds int                 `json:"elapsedSeconds"`
	Elapsed        string              `json:"elapsed"`
	CanFinish      bool                `json:"canFinish"`
	DrawerOpen     bool                `json:"drawerOpen"`
}

type TrackerService interface {
	Snapshot() Snapshot
	AddSet() Snapshot
	StopRest() Snapshot
	FinishWorkout(ctx context.Context) (domain.WorkoutRecord, error)
	ToggleDrawer() Snapshot
	CloseDrawer() Snapshot
	// Subscribe returns a channel that receives the current snapshot and then
	// one per change or rest tick. Slow readers only see the latest value.
	Subscribe() (<-chan Snapshot, func())
	Close()
}

// TrackerOptions configures a TrackerService. Zero values pick the defaults.
type TrackerOptions struct {
	Clock        clockwork.Clock
	TickInterval time.Duration
	DateLayout   string
	Location     *time.Location
	Recorder     metrics.Recorder
}

// trackerService owns the session state machine. One mutex serializes every
// operation, including the rest ticker.
type trackerService struct {
	history  HistoryService
	clock    clockwork.Clock
	tick     time.Duration
	layout   string
	loc      *time.Location
	recorder metrics.Recorder

	mu         sync.Mutex
	session    domain.Session
	drawerOpen bool
	stopTicker chan struct{} // non-nil while a rest ticker runs
	subs       map[int]chan Snapshot
	nextSubID  int
	closed     bool
}

func NewTrackerService(history HistoryService, opts TrackerOptions) TrackerService {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultDateLayout
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &trackerService{
		history:  history,
		clock:    opts.Clock,
		tick:     opts.TickInterval,
		layout:   opts.DateLayout,
		loc:      opts.Location,
		recorder: opts.Recorder,
		subs:     make(map[int]chan Snapshot),
	}
}

func (s *trackerService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AddSet counts a set and restarts the rest timer, dropping any rest in flight.
func (s *trackerService) AddSet() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.AddSet(s.clock.Now())
	s.recorder.IncSetCompleted()
	s.startTickerLocked()
	log.Debug("set completed", "sets", s.session.Sets)

	return s.changedLocked()
}

func (s *trackerService) StopRest() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Resting {
		return s.snapshotLocked()
	}
	s.stopTickerLocked()
	if seconds, ok := s.session.StopRest(s.clock.Now()); ok {
		s.recorder.ObserveRest(seconds)
		log.Debug("rest recorded", "seconds", seconds)
	}
	return s.changedLocked()
}

// FinishWorkout stores the session as a WorkoutRecord and resets to idle.
// If the history cannot be saved the session is left untouched.
func (s *trackerService) FinishWorkout(ctx context.Context) (domain.WorkoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	draft := s.session
	draft.RestTimes = slices.Clone(s.session.RestTimes)
	prior := len(draft.RestTimes)

	sets, rests, ok := draft.Finish(now)
	if !ok {
		return domain.WorkoutRecord{}, ErrNoSetsRecorded
	}

	// Saved under mu: ticks and other actions wait for the write, so nothing
	// can change the session between the save and the reset below.
	record, err := s.history.Append(ctx, domain.NewWorkoutRecord(now.In(s.loc), sets, rests, s.layout))
	if err != nil {
		return domain.WorkoutRecord{}, err
	}

	if len(rests) > prior {
		s.recorder.ObserveRest(rests[len(rests)-1])
	}
	s.recorder.IncWorkoutFinished(sets)
	s.stopTickerLocked()
	s.session = draft
	log.Info("workout finished", "id", record.ID, "sets", record.Sets, "rests", len(record.RestTimes))

	s.changedLocked()
	return record, nil
}

func (s *trackerService) ToggleDrawer() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawerOpen = !s.drawerOpen
	return s.changedLocked()
}

func (s *trackerService) CloseDrawer() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.drawerOpen {
		return s.snapshotLocked()
	}
	s.drawerOpen = false
	return s.changedLocked()
}

func (s *trackerService) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = ch
	ch <- s.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close stops the rest ticker and ends every subscription.
func (s *trackerService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.stopTickerLocked()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// startTickerLocked replaces any running ticker. Elapsed is recomputed right
// away and then on every tick, always from the stored start instant.
func (s *trackerService) startTickerLocked() {
	s.stopTickerLocked()
	if s.closed {
		return
	}

	stop := make(chan struct{})
	s.stopTicker = stop
	ticker := s.clock.NewTicker(s.tick)
	s.session.Tick(s.clock.Now())

	go s.runTicker(ticker, stop)
}

func (s *trackerService) runTicker(ticker clockwork.Ticker, stop chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			s.mu.Lock()
			if s.stopTicker != stop {
				// superseded between the tick and taking the lock
				s.mu.Unlock()
				return
			}
			s.session.Tick(s.clock.Now())
			s.publishLocked(s.snapshotLocked())
			s.mu.Unlock()
		}
	}
}

func (s *trackerService) stopTickerLocked() {
	if s.stopTicker != nil {
		close(s.stopTicker)
		s.stopTicker = nil
	}
}

func (s *trackerService) changedLocked() Snapshot {
	snap := s.snapshotLocked()
	s.publishLocked(snap)
	return snap
}

func (s *trackerService) publishLocked(snap Snapshot) {
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale value the reader has not picked up yet
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (s *trackerService) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:          s.session.State(),
		Sets:           s.session.Sets,
		RestTimes:      slices.Clone(s.session.RestTimes),
		Resting:        s.session.Resting,
		ElapsedSeconds: s.session.ElapsedSeconds,
		Elapsed:        domain.FormatRestTime(s.session.ElapsedSeconds),
		CanFinish:      s.session.Sets > 0,
		DrawerOpen:     s.drawerOpen,
	}
	if snap.RestTimes == nil {
		snap.RestTimes = []int{}
	}
	if s.session.Resting {
		started := s.session.RestStartedAt
		snap.RestStartedAt = &started
	}
	return snap
}
