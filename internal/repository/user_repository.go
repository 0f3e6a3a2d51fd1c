package repository

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"cncsignals/internal/domain"
	"cncsignals/internal/storage"
)

// UserRepositoryImpl implements domain.UserRepository over a storage.Store.
// The whole user table lives under one key as an ordered JSON list.
type UserRepositoryImpl struct {
	store storage.Store
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(store storage.Store) domain.UserRepository {
	return &UserRepositoryImpl{store: store}
}

// GetAll returns every identity in insertion order.
func (r *UserRepositoryImpl) GetAll() ([]domain.User, error) {
	raw, ok, err := r.store.Get(keyUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to read user table: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var users []domain.User
	if err := json.Unmarshal(raw, &users); err != nil {
		slog.Warn("user table record is corrupt, treating as empty", "error", err)
		return nil, nil
	}
	return users, nil
}

// GetByEmail returns the identity for email, or found=false.
func (r *UserRepositoryImpl) GetByEmail(email string) (domain.User, bool, error) {
	users, err := r.GetAll()
	if err != nil {
		return domain.User{}, false, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

// Insert appends a new identity to the table.
func (r *UserRepositoryImpl) Insert(user domain.User) error {
	users, err := r.GetAll()
	if err != nil {
		return err
	}
	return r.save(append(users, user))
}

// Update replaces the row matching user.Email. Updating an absent email is
// a no-op: the caller decides whether that is an error.
func (r *UserRepositoryImpl) Update(user domain.User) error {
	users, err := r.GetAll()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Email == user.Email {
			users[i] = user
			return r.save(users)
		}
	}
	return nil
}

// Delete removes the row for email.
func (r *UserRepositoryImpl) Delete(email string) error {
	users, err := r.GetAll()
	if err != nil {
		return err
	}
	kept := users[:0]
	for _, u := range users {
		if u.Email != email {
			kept = append(kept, u)
		}
	}
	return r.save(kept)
}

func (r *UserRepositoryImpl) save(users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to marshal user table: %w", err)
	}
	if err := r.store.Set(keyUsers, raw); err != nil {
		return fmt.Errorf("failed to write user table: %w", err)
	}
	return nil
}
