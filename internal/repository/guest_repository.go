package repository

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"cncsignals/internal/domain"
	"cncsignals/internal/storage"
)

// GuestRepositoryImpl implements domain.GuestRepository over a storage.Store.
type GuestRepositoryImpl struct {
	store storage.Store
}

// NewGuestRepository creates a new GuestRepository.
func NewGuestRepository(store storage.Store) domain.GuestRepository {
	return &GuestRepositoryImpl{store: store}
}

// Load returns the persisted counter, or found=false on first run.
func (r *GuestRepositoryImpl) Load() (domain.GuestCounter, bool, error) {
	raw, ok, err := r.store.Get(keyGuestTracker)
	if err != nil {
		return domain.GuestCounter{}, false, fmt.Errorf("failed to read guest counter: %w", err)
	}
	if !ok {
		return domain.GuestCounter{}, false, nil
	}

	var counter domain.GuestCounter
	if err := json.Unmarshal(raw, &counter); err != nil {
		slog.Warn("guest counter record is corrupt, treating as absent", "error", err)
		return domain.GuestCounter{}, false, nil
	}
	return counter, true, nil
}

// Save replaces the persisted counter.
func (r *GuestRepositoryImpl) Save(counter domain.GuestCounter) error {
	raw, err := json.Marshal(counter)
	if err != nil {
		return fmt.Errorf("failed to marshal guest counter: %w", err)
	}
	if err := r.store.Set(keyGuestTracker, raw); err != nil {
		return fmt.Errorf("failed to write guest counter: %w", err)
	}
	return nil
}
