package usecase

import (
	"sync"
	"time"

	"cncsignals/internal/domain"
)

// DefaultDailyLimit is the daily analysis quota for non-VIP callers.
const DefaultDailyLimit = 3

// UsageService tracks consumption against the daily quota. Registered and
// anonymous usage are deliberately separate counters: logging in does not
// inherit guest usage, and logging out does not leak registered usage back
// into the guest pool.
type UsageService struct {
	sessions *SessionService
	guests   domain.GuestRepository
	limit    int
	now      func() time.Time

	mu sync.Mutex // serializes guest counter read-modify-writes
}

// NewUsageService creates a new UsageService. A limit <= 0 falls back to
// DefaultDailyLimit.
func NewUsageService(sessions *SessionService, guests domain.GuestRepository, limit int, now func() time.Time) *UsageService {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	if now == nil {
		now = time.Now
	}
	return &UsageService{
		sessions: sessions,
		guests:   guests,
		limit:    limit,
		now:      now,
	}
}

// CurrentUsage returns today's consumption: the active identity's counter,
// or the guest counter when nobody is logged in. The lazy daily reset is
// applied on read.
func (s *UsageService) CurrentUsage() (int, error) {
	user, active, err := s.sessions.EnsureDailyReset()
	if err != nil {
		return 0, err
	}
	if active {
		return user.FreeCreditsUsed, nil
	}
	return s.guestUsage()
}

// IsExhausted reports whether the caller has used up today's quota. VIP
// identities are never exhausted.
func (s *UsageService) IsExhausted() (bool, error) {
	user, active, err := s.sessions.EnsureDailyReset()
	if err != nil {
		return false, err
	}
	if active {
		return !user.IsVip && user.FreeCreditsUsed >= s.limit, nil
	}
	n, err := s.guestUsage()
	if err != nil {
		return false, err
	}
	return n >= s.limit, nil
}

// Authorize returns ErrQuotaExceeded when the caller has used up today's
// quota. Checked before an analysis call is attempted, never after.
func (s *UsageService) Authorize() error {
	exhausted, err := s.IsExhausted()
	if err != nil {
		return err
	}
	if exhausted {
		return domain.ErrQuotaExceeded
	}
	return nil
}

// RecordUsage charges one analysis against the caller's counter. VIP
// identities are not charged but the call still succeeds.
func (s *UsageService) RecordUsage() error {
	user, active, err := s.sessions.EnsureDailyReset()
	if err != nil {
		return err
	}
	if active {
		if user.IsVip {
			return nil
		}
		_, err := s.sessions.IncrementCredits()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := domain.CalendarDay(s.now())
	counter, found, err := s.guests.Load()
	if err != nil {
		return err
	}
	if !found || counter.Date != today {
		counter = domain.GuestCounter{Date: today, Count: 0}
	}
	counter.Count++
	return s.guests.Save(counter)
}

// guestUsage reads today's guest count, resetting the stored counter in
// place when its day is stale.
func (s *UsageService) guestUsage() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := domain.CalendarDay(s.now())
	counter, found, err := s.guests.Load()
	if err != nil {
		return 0, err
	}
	if !found || counter.Date != today {
		if err := s.guests.Save(domain.GuestCounter{Date: today, Count: 0}); err != nil {
			return 0, err
		}
		return 0, nil
	}
	return counter.Count, nil
}
