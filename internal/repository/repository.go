package repository

import (
	"alcyxob/workout-tracker/internal/domain"
	"context"
)

// Error constants for repository layer
var (
	ErrNotFound    = RepositoryError("not found")
	ErrSaveFailed  = RepositoryError("save failed")
	ErrCorruptData = RepositoryError("stored data is corrupt")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// HistoryRepository persists the whole workout history as one value.
type HistoryRepository interface {
	// Load returns the stored history, newest first. A missing value is an
	// empty history; a value that does not parse is reported as ErrCorruptData.
	Load(ctx context.Context) ([]domain.WorkoutRecord, error)

	// Save replaces the stored history with records.
	Save(ctx context.Context, records []domain.WorkoutRecord) error
}
