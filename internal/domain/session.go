package domain

import "time"

// SessionState names where the in-progress workout is.
type SessionState string

const (
	StateIdle    SessionState = "idle"    // no sets yet
	StateActive  SessionState = "active"  // sets > 0, timer stopped
	StateResting SessionState = "resting" // rest timer running
)

// Session is the current, not yet finished workout. It is never persisted.
// All methods take the current instant so callers decide which clock to trust.
type Session struct {
	Sets           int
	RestTimes      []int
	Resting        bool
	RestStartedAt  time.Time
	ElapsedSeconds int
}

// ElapsedSeconds is floor((now - start) / 1s), never negative.
func ElapsedSeconds(start, now time.Time) int {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

func (s *Session) State() SessionState {
	switch {
	case s.Resting:
		return StateResting
	case s.Sets > 0:
		return StateActive
	default:
		return StateIdle
	}
}

// AddSet counts a completed set and (re)starts the rest timer. A rest period
// already running is superseded without being recorded.
func (s *Session) AddSet(now time.Time) {
	s.Sets++
	s.Resting = true
	s.RestStartedAt = now
	s.ElapsedSeconds = 0
}

// Tick recomputes the elapsed rest from the start instant and returns it.
func (s *Session) Tick(now time.Time) int {
	if !s.Resting {
		return 0
	}
	s.ElapsedSeconds = ElapsedSeconds(s.RestStartedAt, now)
	return s.ElapsedSeconds
}

// StopRest ends the running rest period. The duration is recorded only when it
// is at least one second; ok reports whether it was.
func (s *Session) StopRest(now time.Time) (recorded int, ok bool) {
	if !s.Resting {
		return 0, false
	}
	elapsed := s.Tick(now)
	if elapsed > 0 {
		s.RestTimes = append(s.RestTimes, elapsed)
		recorded, ok = elapsed, true
	}
	s.clearRest()
	return recorded, ok
}

// Finish closes the session: a running rest of at least one second is recorded
// first, then the totals are returned and the session goes back to idle.
// With no sets Finish does nothing and returns ok == false.
func (s *Session) Finish(now time.Time) (sets int, restTimes []int, ok bool) {
	if s.Sets == 0 {
		return 0, nil, false
	}
	if s.Resting {
		s.StopRest(now)
	}
	sets, restTimes = s.Sets, s.RestTimes
	if restTimes == nil {
		restTimes = []int{}
	}
	*s = Session{}
	return sets, restTimes, true
}

func (s *Session) clearRest() {
	s.Resting = false
	s.RestStartedAt = time.Time{}
	s.ElapsedSeconds = 0
}
