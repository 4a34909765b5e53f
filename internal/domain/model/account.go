package model

import "time"

// Account is a stored TOTP enrollment. Name identifies the account within the
// issuing service ("user@example.com"), Issuer the service itself ("GitHub").
// SecretCiphertext is the Base32 secret sealed with the vault master key;
// plaintext secrets exist only in memory, never in this struct.
type Account struct {
	ID               int64
	Name             string
	Issuer           string
	SecretCiphertext []byte
	CreatedAt        time.Time
}
