package totp

import "errors"

var (
	// ErrInvalidSecret indicates the supplied secret text is not a usable
	// Base32 secret: empty after sanitization, characters outside [A-Z2-7],
	// undecodable padding, or a decoded key below the minimum length.
	ErrInvalidSecret = errors.New("invalid secret key")

	// ErrEmptySecret indicates code derivation was attempted with an empty
	// key. Unreachable when secrets come through DecodeSecret.
	ErrEmptySecret = errors.New("empty secret key")

	// ErrInvalidURI indicates the supplied enrollment URI is not a usable
	// otpauth://totp URI.
	ErrInvalidURI = errors.New("invalid otpauth URI")
)
