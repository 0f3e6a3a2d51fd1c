package repository

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"cncsignals/internal/domain"
	"cncsignals/internal/storage"
)

// SessionRepositoryImpl implements domain.SessionRepository over a
// storage.Store. At most one session record exists at a time.
type SessionRepositoryImpl struct {
	store storage.Store
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(store storage.Store) domain.SessionRepository {
	return &SessionRepositoryImpl{store: store}
}

// Load returns the persisted session, or found=false.
func (r *SessionRepositoryImpl) Load() (domain.User, bool, error) {
	raw, ok, err := r.store.Get(keyActiveSession)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("failed to read active session: %w", err)
	}
	if !ok {
		return domain.User{}, false, nil
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		slog.Warn("active session record is corrupt, treating as absent", "error", err)
		return domain.User{}, false, nil
	}
	return user, true, nil
}

// Save replaces the persisted session. The password hash is stripped here
// so a caller can never accidentally persist it into the session record.
func (r *SessionRepositoryImpl) Save(user domain.User) error {
	raw, err := json.Marshal(user.Redacted())
	if err != nil {
		return fmt.Errorf("failed to marshal active session: %w", err)
	}
	if err := r.store.Set(keyActiveSession, raw); err != nil {
		return fmt.Errorf("failed to write active session: %w", err)
	}
	return nil
}

// Clear removes the persisted session.
func (r *SessionRepositoryImpl) Clear() error {
	if err := r.store.Delete(keyActiveSession); err != nil {
		return fmt.Errorf("failed to clear active session: %w", err)
	}
	return nil
}
