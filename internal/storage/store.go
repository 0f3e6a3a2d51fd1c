// Package storage provides the synchronous key to JSON-value persistence
// layer the ledger is built on. One profile maps to one store.
package storage

// Store is a durable, synchronous key->JSON map. Implementations must be
// safe for concurrent use; reads and writes block until complete.
type Store interface {
	// Get returns the raw value for key and whether it exists.
	Get(key string) ([]byte, bool, error)

	// Set durably writes value under key.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Keys returns all present keys in unspecified order.
	Keys() ([]string, error)

	// Close releases underlying resources.
	Close() error
}
