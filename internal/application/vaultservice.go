// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Codeplay77/otpvault/internal/domain/model"
	"github.com/Codeplay77/otpvault/internal/domain/port/driven"
	"github.com/Codeplay77/otpvault/internal/secrets"
	"github.com/Codeplay77/otpvault/internal/totp"
)

// ErrNameRequired indicates an enrollment was attempted without an account
// name. Names label the account in every listing, so an empty one is rejected
// before anything touches the store.
var ErrNameRequired = errors.New("account name is required")

// AccountCode pairs a stored account with its current one-time code. Err is
// set when that account's ciphertext could not be decrypted; the other fields
// besides Account are zero in that case. A failed entry never hides the
// healthy ones around it.
type AccountCode struct {
	Account          model.Account
	Code             string
	SecondsRemaining int
	Err              error
}

// VaultService orchestrates the account lifecycle: decoding user-supplied
// secrets, sealing them under the master key, persisting ciphertext, and
// deriving the rotating codes. It holds the master key bytes for its lifetime
// and never logs key material, plaintext secrets, or derived codes.
type VaultService struct {
	accounts       driven.AccountStore
	masterKey      []byte
	minSecretBytes int
}

// NewVaultService creates a VaultService over the given account store and
// master key. minSecretBytes is the smallest decoded secret accepted by
// AddAccount; values below 1 fall back to totp.DefaultMinSecretBytes.
func NewVaultService(accounts driven.AccountStore, masterKey []byte, minSecretBytes int) *VaultService {
	return &VaultService{
		accounts:       accounts,
		masterKey:      masterKey,
		minSecretBytes: minSecretBytes,
	}
}

// AddAccount validates and stores a new enrollment. The secret text is
// decoded from Base32, sealed under the master key, and inserted as a single
// durable write, so a failure at any stage leaves no partial account behind.
// Decode failures match totp.ErrInvalidSecret; storage failures match
// driven.ErrStorageUnavailable.
func (s *VaultService) AddAccount(ctx context.Context, name, issuer, secretText string) (model.Account, error) {
	if name == "" {
		return model.Account{}, fmt.Errorf("add account: %w", ErrNameRequired)
	}

	key, err := totp.DecodeSecret(secretText, s.minSecretBytes)
	if err != nil {
		return model.Account{}, fmt.Errorf("add account %q: %w", name, err)
	}

	ciphertext, err := secrets.Encrypt(s.masterKey, key)
	if err != nil {
		return model.Account{}, fmt.Errorf("add account %q: %w", name, err)
	}

	id, err := s.accounts.Insert(ctx, name, issuer, ciphertext)
	if err != nil {
		return model.Account{}, err
	}

	slog.Info("account added", "id", id, "name", name, "issuer", issuer)

	return model.Account{
		ID:               id,
		Name:             name,
		Issuer:           issuer,
		SecretCiphertext: ciphertext,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// AddAccountFromURI enrolls an account from an otpauth://totp URI, the
// payload carried by provisioning QR codes. The URI's label and issuer become
// the account's name and issuer; the embedded secret goes through the same
// validation as a manually typed one.
func (s *VaultService) AddAccountFromURI(ctx context.Context, rawURI string) (model.Account, error) {
	name, issuer, secretText, err := totp.ParseURI(rawURI)
	if err != nil {
		return model.Account{}, fmt.Errorf("add account from uri: %w", err)
	}
	return s.AddAccount(ctx, name, issuer, secretText)
}

// ListAccountsWithCodes returns every stored account with the code valid at
// now. A single account whose ciphertext fails to decrypt is reported through
// that entry's Err field and does not abort the rest of the listing; the
// returned error is reserved for the store itself being unavailable.
func (s *VaultService) ListAccountsWithCodes(ctx context.Context, now time.Time) ([]AccountCode, error) {
	accounts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]AccountCode, 0, len(accounts))
	for _, account := range accounts {
		entry := AccountCode{Account: account}
		entry.Code, entry.SecondsRemaining, entry.Err = s.deriveCode(account, now)
		if entry.Err != nil {
			slog.Error("account unusable", "id", account.ID, "name", account.Name, "error", entry.Err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// AccountCode returns a single account with its code valid at now. Unlike the
// listing there is no partial shape here, so a decrypt failure is returned as
// an error matching secrets.ErrDecryptionFailed. An unknown id matches
// driven.ErrAccountNotFound.
func (s *VaultService) AccountCode(ctx context.Context, id int64, now time.Time) (AccountCode, error) {
	account, err := s.getAccount(ctx, id)
	if err != nil {
		return AccountCode{}, err
	}

	entry := AccountCode{Account: *account}
	entry.Code, entry.SecondsRemaining, err = s.deriveCode(*account, now)
	if err != nil {
		return AccountCode{}, fmt.Errorf("account %d: %w", id, err)
	}

	return entry, nil
}

// RevealSecret decrypts one account's secret and returns it as canonical
// Base32 text, the form the user originally enrolled. Confirmation gating is
// the caller's responsibility; this method performs the reveal unconditionally.
func (s *VaultService) RevealSecret(ctx context.Context, id int64) (string, error) {
	account, err := s.getAccount(ctx, id)
	if err != nil {
		return "", err
	}

	key, err := secrets.Decrypt(s.masterKey, account.SecretCiphertext)
	if err != nil {
		return "", fmt.Errorf("account %d: %w", id, err)
	}

	slog.Info("secret revealed", "id", id, "name", account.Name)

	return totp.EncodeSecret(key), nil
}

// EnrollmentURI returns the otpauth://totp URI for one account, suitable for
// re-provisioning another device via QR code. Like RevealSecret this exposes
// the plaintext secret, so callers gate it behind the same confirmation.
func (s *VaultService) EnrollmentURI(ctx context.Context, id int64) (string, error) {
	account, err := s.getAccount(ctx, id)
	if err != nil {
		return "", err
	}

	key, err := secrets.Decrypt(s.masterKey, account.SecretCiphertext)
	if err != nil {
		return "", fmt.Errorf("account %d: %w", id, err)
	}

	return totp.BuildURI(account.Name, account.Issuer, totp.EncodeSecret(key)), nil
}

// DeleteAccount removes an account permanently. Ids are never reused, so a
// second delete of the same id matches driven.ErrAccountNotFound.
func (s *VaultService) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("account deleted", "id", id)
	return nil
}

// getAccount loads one account, mapping the store's nil-on-absent convention
// to driven.ErrAccountNotFound.
func (s *VaultService) getAccount(ctx context.Context, id int64) (*model.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", id, driven.ErrAccountNotFound)
	}
	return account, nil
}

// deriveCode unseals an account's secret and computes its code for now. The
// plaintext key exists only inside this call.
func (s *VaultService) deriveCode(account model.Account, now time.Time) (string, int, error) {
	key, err := secrets.Decrypt(s.masterKey, account.SecretCiphertext)
	if err != nil {
		return "", 0, err
	}
	return totp.Code(key, now)
}
