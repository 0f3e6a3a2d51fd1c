package domain

// UserRepository owns the durable user table: the ordered list of all
// registered identities, passwords included.
type UserRepository interface {
	// GetAll returns every identity in insertion order.
	GetAll() ([]User, error)

	// GetByEmail returns the identity for email, or found=false.
	GetByEmail(email string) (User, bool, error)

	// Insert appends a new identity to the table.
	Insert(user User) error

	// Update replaces the row matching user.Email.
	Update(user User) error

	// Delete removes the row for email. Deleting an absent email is a no-op.
	Delete(email string) error
}

// SessionRepository owns the single active-session record, a redacted
// projection of one user-table row.
type SessionRepository interface {
	// Load returns the persisted session, or found=false.
	Load() (User, bool, error)

	// Save replaces the persisted session.
	Save(user User) error

	// Clear removes the persisted session.
	Clear() error
}

// HistoryRepository owns the per-identity analysis history, newest first.
type HistoryRepository interface {
	// Load returns the persisted sequence for email (empty if none).
	Load(email string) ([]MarketAnalysis, error)

	// Save replaces the persisted sequence for email.
	Save(email string, entries []MarketAnalysis) error

	// Delete removes the persisted sequence for email.
	Delete(email string) error
}

// GuestRepository owns the anonymous daily-usage counter.
type GuestRepository interface {
	// Load returns the persisted counter, or found=false on first run.
	Load() (GuestCounter, bool, error)

	// Save replaces the persisted counter.
	Save(counter GuestCounter) error
}
