package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered identity, keyed by email in the user table.
type User struct {
	ID              uuid.UUID     `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone,omitempty"`
	PasswordHash    string        `json:"password,omitempty"` // stripped from the active session record
	IsVerified      bool          `json:"isVerified"`
	IsVip           bool          `json:"isVip"`
	FreeCreditsUsed int           `json:"freeCreditsUsed"`
	LastResetDate   string        `json:"lastResetDate"` // calendar day, "2006-01-02"
	Stats           *TradingStats `json:"stats,omitempty"`
	Avatar          string        `json:"avatar,omitempty"`
	Bio             string        `json:"bio,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Redacted returns a copy safe to expose as the active session: the
// password hash never leaves the user table.
func (u User) Redacted() User {
	u.PasswordHash = ""
	return u
}

// TradingStats is always derived from the history log, never edited directly.
type TradingStats struct {
	WinRate           float64 `json:"winRate"`
	TotalTrades       int     `json:"totalTrades"`
	ProfitFactor      float64 `json:"profitFactor"`
	NetPnL            float64 `json:"netPnL"`
	AverageRiskReward string  `json:"averageRiskReward"`
	BestPair          string  `json:"bestPair"`
}

// ZeroStats is the stats block assigned at registration.
func ZeroStats() *TradingStats {
	return &TradingStats{AverageRiskReward: "0:0", BestPair: "-"}
}

// GuestCounter tracks anonymous usage for a single calendar day.
type GuestCounter struct {
	Date  string `json:"date"` // calendar day, "2006-01-02"
	Count int    `json:"count"`
}

// ProfileUpdate carries the editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
	Bio    *string `json:"bio,omitempty"`
}

// CalendarDay truncates t to the day granularity used by the quota reset.
func CalendarDay(t time.Time) string {
	return t.Format("2006-01-02")
}
