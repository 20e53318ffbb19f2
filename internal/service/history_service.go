package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound      = errors.New("workout not found")
	ErrConfirmationRequired = errors.New("clearing history requires confirmation")
	ErrInvalidWorkout       = errors.New("workout must have at least one set")
)

type HistoryService interface {
	Load(ctx context.Context) error
	List() []domain.WorkoutRecord
	Append(ctx context.Context, record domain.WorkoutRecord) (domain.WorkoutRecord, error)
	Delete(ctx context.Context, id int64) error
	ClearAll(ctx context.Context, confirmed bool) error
}

// historyService keeps the history in memory and writes the full list through
// to the repository on every mutation. Memory is only replaced after the write
// succeeds, so the two never diverge.
type historyService struct {
	repo     repository.HistoryRepository
	recorder metrics.Recorder

	mu      sync.RWMutex
	records []domain.WorkoutRecord
}

func NewHistoryService(repo repository.HistoryRepository, recorder metrics.Recorder) HistoryService {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &historyService{
		repo:     repo,
		recorder: recorder,
		records:  []domain.WorkoutRecord{},
	}
}

// Load replaces the in-memory history with the stored one. Unparsable data is
// discarded with a warning and treated as an empty history.
func (s *historyService) Load(ctx context.Context) error {
	records, err := s.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrCorruptData) {
			return err
		}
		log.Warn("discarding unreadable workout history", "err", err)
		records = []domain.WorkoutRecord{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.recorder.SetHistoryRecords(len(records))
	log.Info("workout history loaded", "records", len(records))
	return nil
}

func (s *historyService) List() []domain.WorkoutRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records)
}

// Append puts record at the front of the history. If its id is not newer than
// the current head it is bumped, keeping ids unique and ordered. The stored
// record is returned.
func (s *historyService) Append(ctx context.Context, record domain.WorkoutRecord) (domain.WorkoutRecord, error) {
	if record.Sets < 1 {
		return domain.WorkoutRecord{}, ErrInvalidWorkout
	}
	record.RestTimes = slices.Clone(record.RestTimes)
	if record.RestTimes == nil {
		record.RestTimes = []int{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) > 0 && record.ID <= s.records[0].ID {
		record.ID = s.records[0].ID + 1
	}

	next := make([]domain.WorkoutRecord, 0, len(s.records)+1)
	next = append(next, record)
	next = append(next, s.records...)
	if err := s.commit(ctx, next); err != nil {
		return domain.WorkoutRecord{}, err
	}
	record.RestTimes = slices.Clone(record.RestTimes)
	return record, nil
}

func (s *historyService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.records, func(r domain.WorkoutRecord) bool { return r.ID == id })
	if idx < 0 {
		return ErrWorkoutNotFound
	}

	next := make([]domain.WorkoutRecord, 0, len(s.records)-1)
	next = append(next, s.records[:idx]...)
	next = append(next, s.records[idx+1:]...)
	return s.commit(ctx, next)
}

func (s *historyService) ClearAll(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, []domain.WorkoutRecord{})
}

// commit must be called with mu held.
func (s *historyService) commit(ctx context.Context, next []domain.WorkoutRecord) error {
	if err := s.repo.Save(ctx, next); err != nil {
		log.Error("failed to persist workout history", "records", len(next), "err", err)
		return err
	}
	s.records = next
	s.recorder.SetHistoryRecords(len(next))
	return nil
}

func cloneRecords(records []domain.WorkoutRecord) []domain.WorkoutRecord {
	out := make([]domain.WorkoutRecord, len(records))
	for i, r := range records {
		r.RestTimes = slices.Clone(r.RestTimes)
		out[i] = r
	}
	return out
}
