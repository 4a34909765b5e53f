package driven

import "errors"

// ErrKeyStoreUnavailable indicates the master key could not be obtained:
// the key file is unreadable, unwritable, or exists with the wrong size.
// A wrong-size file is never regenerated, since a fresh key would orphan
// every ciphertext sealed under the old one.
var ErrKeyStoreUnavailable = errors.New("key storage unavailable")

// KeyStore defines the driven port for master key persistence. The key
// encrypts every stored secret, so there is exactly one active key for the
// lifetime of a vault.
type KeyStore interface {
	// LoadOrCreate returns the master key, generating and persisting a new
	// one only when none exists yet.
	LoadOrCreate() ([]byte, error)
}
