// Package keyfile persists the vault master key as a raw 32-byte file with
// owner-only permissions.
package keyfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/Codeplay77/otpvault/internal/domain/port/driven"
	"github.com/Codeplay77/otpvault/internal/secrets"
)

// Compile-time interface satisfaction check.
var _ driven.KeyStore = (*Store)(nil)

// Store is the file-based implementation of the KeyStore port.
type Store struct {
	path string
}

// New creates a Store reading and writing the given key file path.
func New(path string) *Store {
	return &Store{path: path}
}

// LoadOrCreate returns the master key. A missing file is the only condition
// that triggers generation; any other problem with the file is an error,
// because writing a fresh key over an existing vault would orphan every
// ciphertext sealed under the old one.
func (s *Store) LoadOrCreate() ([]byte, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return s.create()
	}
	return s.Load()
}

// Load reads an existing key file and refuses anything that is not exactly
// a 32-byte key. Unlike LoadOrCreate, a missing file is an error: recovery
// tooling uses Load so it can never run against a freshly invented key.
func (s *Store) Load() ([]byte, error) {
	key, err := os.ReadFile(s.path)
	if err != nil {
		return nil, keyErr("read key file", err)
	}
	if len(key) != secrets.KeySize {
		return nil, keyErr("validate key file", fmt.Errorf("%s holds %d bytes, want %d", s.path, len(key), secrets.KeySize))
	}
	return key, nil
}

func (s *Store) create() ([]byte, error) {
	key, err := secrets.GenerateKey()
	if err != nil {
		return nil, keyErr("generate key", err)
	}
	if err := os.WriteFile(s.path, key, 0o600); err != nil {
		return nil, keyErr("write key file", err)
	}
	return key, nil
}

// keyErr tags an operation failure with the port sentinel so callers can
// match driven.ErrKeyStoreUnavailable while logs keep the cause.
func keyErr(op string, err error) error {
	return errors.Join(driven.ErrKeyStoreUnavailable, fmt.Errorf("%s: %w", op, err))
}
