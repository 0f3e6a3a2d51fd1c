// Package repository implements the ledger's persisted records as JSON
// codecs over a storage.Store. A record that fails to parse is treated as
// absent and logged, never surfaced as a fatal error.
package repository

// Persisted record keys. The names are part of the on-disk format.
const (
	keyUsers         = "cnc_users"
	keyActiveSession = "cnc_active_session"
	keyGuestTracker  = "cnc_guest_tracker"
	keyHistoryPrefix = "cnc_user_history:"
)
