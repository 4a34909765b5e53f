package secrets

import "errors"

var (
	// ErrInvalidKeyLength indicates the supplied key is not KeySize bytes.
	ErrInvalidKeyLength = errors.New("encryption key must be 32 bytes")

	// ErrEncryptionFailed indicates plaintext could not be sealed.
	ErrEncryptionFailed = errors.New("failed to encrypt secret")

	// ErrDecryptionFailed indicates the ciphertext could not be authenticated
	// and decrypted with the supplied key. Raised for truncated blobs, tampered
	// data, and data encrypted under a different key; the AEAD cannot
	// distinguish these causes.
	ErrDecryptionFailed = errors.New("failed to decrypt secret")

	// ErrKeyGenerationFailed indicates the system randomness source failed.
	ErrKeyGenerationFailed = errors.New("failed to generate encryption key")
)
