package usecase

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cncsignals/internal/domain"
)

// SessionService owns the active session and the durable user table. Every
// mutation funnels through one read-merge-write step that rewrites the table
// row and the session record together, so the two can never diverge after a
// write completes.
type SessionService struct {
	mu       sync.Mutex
	users    domain.UserRepository
	sessions domain.SessionRepository
	history  domain.HistoryRepository
	now      func() time.Time

	current *domain.User // redacted working copy, nil for a guest

	onLogin  []func(email string)
	onLogout []func()
}

// NewSessionService creates a new SessionService. now is injectable so the
// calendar-day reset can be tested; pass time.Now in production.
func NewSessionService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	history domain.HistoryRepository,
	now func() time.Time,
) *SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		users:    users,
		sessions: sessions,
		history:  history,
		now:      now,
	}
}

// OnLogin registers a hook fired after a session becomes active
// (login, register, restore).
func (s *SessionService) OnLogin(fn func(email string)) {
	s.onLogin = append(s.onLogin, fn)
}

// OnLogout registers a hook fired after the session is cleared.
func (s *SessionService) OnLogout(fn func()) {
	s.onLogout = append(s.onLogout, fn)
}

// Restore loads the persisted session on process start, applies the daily
// reset, and propagates it to the user-table row. A session whose email is
// no longer in the table is cleared (forced logout) rather than surfaced.
func (s *SessionService) Restore() error {
	s.mu.Lock()
	stored, ok, err := s.sessions.Load()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !ok {
		s.mu.Unlock()
		return nil
	}

	row, found, err := s.users.GetByEmail(stored.Email)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !found {
		slog.Warn("clearing stale session", "email", stored.Email)
		if err := s.sessions.Clear(); err != nil {
			s.mu.Unlock()
			return err
		}
		s.mu.Unlock()
		return nil
	}

	if reset := s.applyDailyReset(&row); reset {
		if err := s.writeBoth(row); err != nil {
			s.mu.Unlock()
			return err
		}
	} else if err := s.sessions.Save(row); err != nil {
		// Re-sync the session record to the authoritative table row.
		s.mu.Unlock()
		return err
	}

	redacted := row.Redacted()
	s.current = &redacted
	email := row.Email
	s.mu.Unlock()

	s.fireLogin(email)
	return nil
}

// Register creates a new identity and makes it the active session.
func (s *SessionService) Register(email, name, password, phone string) (domain.User, error) {
	s.mu.Lock()
	if _, exists, err := s.users.GetByEmail(email); err != nil {
		s.mu.Unlock()
		return domain.User{}, err
	} else if exists {
		s.mu.Unlock()
		return domain.User{}, domain.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.mu.Unlock()
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		ID:              uuid.New(),
		Name:            name,
		Email:           email,
		Phone:           phone,
		PasswordHash:    string(hash),
		FreeCreditsUsed: 0,
		LastResetDate:   domain.CalendarDay(now),
		Stats:           domain.ZeroStats(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.users.Insert(user); err != nil {
		s.mu.Unlock()
		return domain.User{}, err
	}
	if err := s.sessions.Save(user); err != nil {
		s.mu.Unlock()
		return domain.User{}, err
	}

	redacted := user.Redacted()
	s.current = &redacted
	s.mu.Unlock()

	s.fireLogin(email)
	return redacted, nil
}

// Login authenticates against the user table and makes the matching
// identity the active session. The daily reset is applied to the stored row
// before it is exposed.
func (s *SessionService) Login(email, password string) (domain.User, error) {
	s.mu.Lock()
	row, found, err := s.users.GetByEmail(email)
	if err != nil {
		s.mu.Unlock()
		return domain.User{}, err
	}
	if !found {
		s.mu.Unlock()
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		s.mu.Unlock()
		return domain.User{}, domain.ErrInvalidCredentials
	}

	if s.applyDailyReset(&row) {
		if err := s.users.Update(row); err != nil {
			s.mu.Unlock()
			return domain.User{}, err
		}
	}
	if err := s.sessions.Save(row); err != nil {
		s.mu.Unlock()
		return domain.User{}, err
	}

	redacted := row.Redacted()
	s.current = &redacted
	s.mu.Unlock()

	s.fireLogin(email)
	return redacted, nil
}

// Logout clears the active session. The user table is untouched.
func (s *SessionService) Logout() error {
	s.mu.Lock()
	if err := s.sessions.Clear(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = nil
	s.mu.Unlock()

	s.fireLogout()
	return nil
}

// Current returns the active identity (redacted), if any.
func (s *SessionService) Current() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.User{}, false
	}
	return *s.current, true
}

// IsAuthenticated reports whether a session is active.
func (s *SessionService) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// UpdateProfile merges the given fields into the active identity.
func (s *SessionService) UpdateProfile(p domain.ProfileUpdate) (domain.User, error) {
	return s.upsert(func(u *domain.User) {
		if p.Name != nil {
			u.Name = *p.Name
		}
		if p.Phone != nil {
			u.Phone = *p.Phone
		}
		if p.Avatar != nil {
			u.Avatar = *p.Avatar
		}
		if p.Bio != nil {
			u.Bio = *p.Bio
		}
	})
}

// Verify marks the active identity as verified.
func (s *SessionService) Verify() (domain.User, error) {
	return s.upsert(func(u *domain.User) { u.IsVerified = true })
}

// UpgradeToVip grants the active identity unlimited usage and history.
func (s *SessionService) UpgradeToVip() (domain.User, error) {
	return s.upsert(func(u *domain.User) { u.IsVip = true })
}

// IncrementCredits bumps the daily usage counter for the active identity.
// The ledger caller is responsible for skipping VIP identities.
func (s *SessionService) IncrementCredits() (domain.User, error) {
	return s.upsert(func(u *domain.User) { u.FreeCreditsUsed++ })
}

// UpdateStats writes the derived stats into the active identity. Writes are
// skipped when the stats have not changed.
func (s *SessionService) UpdateStats(stats domain.TradingStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.ErrNotAuthenticated
	}
	if s.current.Stats != nil && *s.current.Stats == stats {
		return nil
	}
	_, err := s.upsertLocked(func(u *domain.User) {
		st := stats
		u.Stats = &st
	})
	return err
}

// EnsureDailyReset applies the calendar-day reset to the active identity if
// its stored day is stale, and returns the up-to-date identity. Called
// lazily on usage reads; there is no background timer.
func (s *SessionService) EnsureDailyReset() (domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.User{}, false, nil
	}
	if s.current.LastResetDate == domain.CalendarDay(s.now()) {
		return *s.current, true, nil
	}
	u, err := s.upsertLocked(func(u *domain.User) {
		s.applyDailyReset(u)
	})
	if err != nil {
		return domain.User{}, false, err
	}
	return u, true, nil
}

// DeleteAccount removes the active identity from the user table, clears the
// session, and drops its persisted history.
func (s *SessionService) DeleteAccount() error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	email := s.current.Email

	if err := s.users.Delete(email); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.sessions.Clear(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.history.Delete(email); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = nil
	s.mu.Unlock()

	s.fireLogout()
	return nil
}

// ReconcileStats re-derives every identity's stats from its persisted
// history and repairs any drift. Returns how many rows were rewritten.
// Usage counters and reset dates are never touched here.
func (s *SessionService) ReconcileStats() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.GetAll()
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, row := range users {
		entries, err := s.history.Load(row.Email)
		if err != nil {
			return repaired, err
		}
		stats := ComputeStats(entries)
		if row.Stats != nil && *row.Stats == stats {
			continue
		}
		row.Stats = &stats
		row.UpdatedAt = s.now()
		if err := s.users.Update(row); err != nil {
			return repaired, err
		}
		if s.current != nil && s.current.Email == row.Email {
			if err := s.sessions.Save(row); err != nil {
				return repaired, err
			}
			redacted := row.Redacted()
			s.current = &redacted
		}
		repaired++
	}
	return repaired, nil
}

// upsert re-reads the latest table row for the active identity, applies
// merge, and writes the table row and the session record in one step.
func (s *SessionService) upsert(merge func(*domain.User)) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	return s.upsertLocked(merge)
}

func (s *SessionService) upsertLocked(merge func(*domain.User)) (domain.User, error) {
	row, found, err := s.users.GetByEmail(s.current.Email)
	if err != nil {
		return domain.User{}, err
	}
	if !found {
		// The identity was deleted out from under the session.
		if clearErr := s.sessions.Clear(); clearErr != nil {
			return domain.User{}, clearErr
		}
		s.current = nil
		return domain.User{}, domain.ErrStaleSession
	}

	merge(&row)
	row.UpdatedAt = s.now()

	if err := s.writeBoth(row); err != nil {
		return domain.User{}, err
	}

	redacted := row.Redacted()
	s.current = &redacted
	return redacted, nil
}

// writeBoth persists the table row and its session projection together.
func (s *SessionService) writeBoth(row domain.User) error {
	if err := s.users.Update(row); err != nil {
		return err
	}
	return s.sessions.Save(row)
}

// applyDailyReset zeroes the usage counter when the stored day is not
// today. Returns whether a reset happened.
func (s *SessionService) applyDailyReset(u *domain.User) bool {
	today := domain.CalendarDay(s.now())
	if u.LastResetDate == today {
		return false
	}
	u.FreeCreditsUsed = 0
	u.LastResetDate = today
	return true
}

func (s *SessionService) fireLogin(email string) {
	for _, fn := range s.onLogin {
		fn(email)
	}
}

func (s *SessionService) fireLogout() {
	for _, fn := range s.onLogout {
		fn()
	}
}
