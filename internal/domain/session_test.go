package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)

func TestAddSet_CountsEverySet(t *testing.T) {
	var s Session
	assert.Equal(t, StateIdle, s.State())

	for i := 1; i <= 7; i++ {
		s.AddSet(t0.Add(time.Duration(i) * time.Minute))
		assert.Equal(t, i, s.Sets)
		assert.Equal(t, StateResting, s.State())
		assert.Equal(t, 0, s.ElapsedSeconds)
	}
	// superseded rests are not recorded
	assert.Empty(t, s.RestTimes)
}

func TestAddSet_RestartsTimer(t *testing.T) {
	var s Session
	s.AddSet(t0)
	s.Tick(t0.Add(40 * time.Second))
	require.Equal(t, 40, s.ElapsedSeconds)

	s.AddSet(t0.Add(50 * time.Second))
	assert.Equal(t, t0.Add(50*time.Second), s.RestStartedAt)
	assert.Equal(t, 0, s.ElapsedSeconds)
}

func TestStopRest_ZeroSecondsNotRecorded(t *testing.T) {
	var s Session
	s.AddSet(t0)

	recorded, ok := s.StopRest(t0.Add(999 * time.Millisecond))
	assert.False(t, ok)
	assert.Zero(t, recorded)
	assert.Empty(t, s.RestTimes)
	assert.Equal(t, StateActive, s.State())
	assert.True(t, s.RestStartedAt.IsZero())
}

func TestStopRest_RecordsElapsed(t *testing.T) {
	var s Session
	s.AddSet(t0)

	recorded, ok := s.StopRest(t0.Add(45*time.Second + 700*time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, 45, recorded)
	assert.Equal(t, []int{45}, s.RestTimes)
	assert.Equal(t, StateActive, s.State())
	assert.Equal(t, 0, s.ElapsedSeconds)
}

func TestStopRest_NotRestingIsNoop(t *testing.T) {
	var s Session
	_, ok := s.StopRest(t0)
	assert.False(t, ok)
	assert.Equal(t, Session{}, s)
}

func TestFinish_NoSetsIsNoop(t *testing.T) {
	var s Session
	sets, rests, ok := s.Finish(t0)
	assert.False(t, ok)
	assert.Zero(t, sets)
	assert.Nil(t, rests)
	assert.Equal(t, Session{}, s)
}

func TestFinish_RecordsRunningRest(t *testing.T) {
	var s Session
	now := t0

	s.AddSet(now)
	now = now.Add(45 * time.Second)
	s.StopRest(now)

	s.AddSet(now)
	now = now.Add(90 * time.Second)
	s.StopRest(now)

	s.AddSet(now)
	now = now.Add(12 * time.Second)

	sets, rests, ok := s.Finish(now)
	require.True(t, ok)
	assert.Equal(t, 3, sets)
	assert.Equal(t, []int{45, 90, 12}, rests)
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, Session{}, s)
}

func TestFinish_RunningRestUnderOneSecondDropped(t *testing.T) {
	var s Session
	s.AddSet(t0)

	sets, rests, ok := s.Finish(t0.Add(300 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, 1, sets)
	assert.Equal(t, []int{}, rests)
}

func TestElapsedSeconds(t *testing.T) {
	assert.Equal(t, 0, ElapsedSeconds(t0, t0))
	assert.Equal(t, 1, ElapsedSeconds(t0, t0.Add(1999*time.Millisecond)))
	assert.Equal(t, 0, ElapsedSeconds(t0, t0.Add(-5*time.Second)), "clock going backwards clamps to zero")
}
