package repository

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"cncsignals/internal/domain"
	"cncsignals/internal/storage"
)

// HistoryRepositoryImpl implements domain.HistoryRepository over a
// storage.Store. Each identity gets its own key so histories never leak
// across accounts.
type HistoryRepositoryImpl struct {
	store storage.Store
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(store storage.Store) domain.HistoryRepository {
	return &HistoryRepositoryImpl{store: store}
}

// Load returns the persisted sequence for email, newest first.
func (r *HistoryRepositoryImpl) Load(email string) ([]domain.MarketAnalysis, error) {
	raw, ok, err := r.store.Get(keyHistoryPrefix + email)
	if err != nil {
		return nil, fmt.Errorf("failed to read history log: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var entries []domain.MarketAnalysis
	if err := json.Unmarshal(raw, &entries); err != nil {
		slog.Warn("history log record is corrupt, treating as empty",
			"email", email, "error", err)
		return nil, nil
	}
	return entries, nil
}

// Save replaces the persisted sequence for email.
func (r *HistoryRepositoryImpl) Save(email string, entries []domain.MarketAnalysis) error {
	if entries == nil {
		entries = []domain.MarketAnalysis{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal history log: %w", err)
	}
	if err := r.store.Set(keyHistoryPrefix+email, raw); err != nil {
		return fmt.Errorf("failed to write history log: %w", err)
	}
	return nil
}

// Delete removes the persisted sequence for email.
func (r *HistoryRepositoryImpl) Delete(email string) error {
	if err := r.store.Delete(keyHistoryPrefix + email); err != nil {
		return fmt.Errorf("failed to delete history log: %w", err)
	}
	return nil
}
