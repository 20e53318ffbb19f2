package repository

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// kvHistoryRepository stores the history as a JSON array under a single key.
type kvHistoryRepository struct {
	store storage.KeyValueStore
	key   string
}

// NewHistoryRepository creates a history repository on top of any key-value store.
func NewHistoryRepository(store storage.KeyValueStore, key string) HistoryRepository {
	return &kvHistoryRepository{store: store, key: key}
}

func (r *kvHistoryRepository) Load(ctx context.Context) ([]domain.WorkoutRecord, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return []domain.WorkoutRecord{}, nil
		}
		return nil, err
	}

	var records []domain.WorkoutRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if records == nil {
		// a stored JSON null
		records = []domain.WorkoutRecord{}
	}
	for i := range records {
		if records[i].RestTimes == nil {
			records[i].RestTimes = []int{}
		}
	}
	return records, nil
}

func (r *kvHistoryRepository) Save(ctx context.Context, records []domain.WorkoutRecord) error {
	if records == nil {
		records = []domain.WorkoutRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}
