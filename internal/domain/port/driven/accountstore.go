package driven

import (
	"context"
	"errors"

	"github.com/Codeplay77/otpvault/internal/domain/model"
)

// Sentinel errors returned by AccountStore implementations.
var (
	// ErrAccountNotFound indicates the requested account id does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrStorageUnavailable indicates the backing store could not serve the
	// operation: the database is unreachable, locked by another process, or
	// the statement failed at the driver level.
	ErrStorageUnavailable = errors.New("credential storage unavailable")
)

// AccountStore defines the driven port for TOTP account persistence. It
// stores ciphertext only; encryption and decryption happen above this
// boundary, so an adapter never sees a plaintext secret.
type AccountStore interface {
	// Insert stores a new account and returns its assigned id. Ids are
	// monotonically increasing and never reused, even after deletes.
	Insert(ctx context.Context, name, issuer string, secretCiphertext []byte) (int64, error)

	// GetByID retrieves an account by id. Returns nil, nil if no account
	// has that id.
	GetByID(ctx context.Context, id int64) (*model.Account, error)

	// ListAll returns all accounts in insertion order.
	ListAll(ctx context.Context) ([]model.Account, error)

	// Delete removes an account by id. Returns ErrAccountNotFound if the
	// account does not exist.
	Delete(ctx context.Context, id int64) error
}
