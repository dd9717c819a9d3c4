// Package datastore persists the DIRE session state. The model is a small
// durable key/value store (users, action log entries, settings, the session
// secret), with a SQLite implementation for production and an in-memory one
// for tests.
package datastore

import "errors"

// ErrNotFound reports a key with no stored value. Callers treat it as "use
// the documented default"; any other read error at startup is fatal.
var ErrNotFound = errors.New("datastore: key not found")

// KV is the durable key/value surface the session core writes through.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) (string, error)
	// Put stores value under key, replacing any previous value.
	Put(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Close releases the underlying resources.
	Close() error
}
