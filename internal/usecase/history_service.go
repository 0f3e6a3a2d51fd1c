package usecase

import (
	"log/slog"
	"sync"
	"time"

	"cncsignals/internal/domain"
)

// HistoryService keeps the active identity's analysis history in memory,
// newest first, mirrored to its persisted per-identity sequence. Every
// mutation synchronously recomputes the derived stats and writes them back
// into the owning identity.
type HistoryService struct {
	repo     domain.HistoryRepository
	sessions *SessionService

	mu      sync.Mutex
	email   string
	entries []domain.MarketAnalysis
}

// NewHistoryService creates a HistoryService and wires it to the session
// lifecycle: history loads on login and drops from memory on logout.
func NewHistoryService(repo domain.HistoryRepository, sessions *SessionService) *HistoryService {
	s := &HistoryService{repo: repo, sessions: sessions}
	sessions.OnLogin(s.load)
	sessions.OnLogout(s.Clear)
	return s
}

// Append prepends an entry and persists the full sequence. Appending is a
// silent no-op unless the active identity is VIP: non-VIP identities never
// accumulate history.
func (s *HistoryService) Append(entry domain.MarketAnalysis) error {
	user, active := s.sessions.Current()
	if !active || !user.IsVip {
		return nil
	}

	s.mu.Lock()
	s.entries = append([]domain.MarketAnalysis{entry}, s.entries...)
	snapshot := make([]domain.MarketAnalysis, len(s.entries))
	copy(snapshot, s.entries)
	err := s.repo.Save(user.Email, s.entries)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	return s.onHistoryChanged(snapshot)
}

// List returns entries whose timestamp, truncated to the calendar day,
// falls within the inclusive [start, end] day range. Nil bounds are open;
// no filter returns everything, newest first.
func (s *HistoryService) List(start, end *time.Time) []domain.MarketAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.MarketAnalysis, 0, len(s.entries))
	for _, e := range s.entries {
		day := dayOf(time.UnixMilli(e.Timestamp))
		if start != nil && day.Before(dayOf(*start)) {
			continue
		}
		if end != nil && day.After(dayOf(*end)) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Len returns the current in-memory history size.
func (s *HistoryService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear drops the in-memory sequence. The persisted data is untouched so it
// reloads on the identity's next login.
func (s *HistoryService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = ""
	s.entries = nil
}

// load pulls the persisted sequence for email into memory.
func (s *HistoryService) load(email string) {
	entries, err := s.repo.Load(email)
	if err != nil {
		slog.Warn("failed to load history log", "email", email, "error", err)
		entries = nil
	}

	s.mu.Lock()
	s.email = email
	s.entries = entries
	s.mu.Unlock()
}

// onHistoryChanged recomputes the derived stats from the new snapshot and
// writes them back into the owning identity. The write is skipped inside
// SessionService when the stats did not change.
func (s *HistoryService) onHistoryChanged(snapshot []domain.MarketAnalysis) error {
	return s.sessions.UpdateStats(ComputeStats(snapshot))
}

// dayOf truncates t to local midnight for calendar-day comparison.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
