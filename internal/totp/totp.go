// Package totp implements RFC 6238 time-based one-time passwords over the
// RFC 4226 HOTP core, plus the Base32 secret codec and otpauth:// URI
// handling shared by every authenticator app. All functions are pure:
// identical inputs always produce identical outputs, which is what makes the
// generated codes interoperable with any other RFC 6238 client holding the
// same secret.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

const (
	// Digits is the number of digits in a generated code.
	Digits = 6

	// Period is the code validity window in seconds, aligned to Unix epoch.
	Period = 30

	// DefaultMinSecretBytes is the minimum decoded secret length accepted by
	// DecodeSecret when the caller does not supply its own threshold. Ten
	// bytes (80 bits) matches common authenticator minimums.
	DefaultMinSecretBytes = 10
)

// secretPattern matches a sanitized Base32 secret: uppercase A-Z, digits 2-7,
// optional trailing padding.
var secretPattern = regexp.MustCompile(`^[A-Z2-7]+=*$`)

// noPadding is the encoding used for canonical secret output. Authenticator
// secrets are conventionally shown without padding.
var noPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// SanitizeSecret normalizes user-supplied secret text: whitespace and dashes
// are stripped and letters are uppercased. Grouping like "jbsw y3dp-ehpk 3pxp"
// becomes "JBSWY3DPEHPK3PXP".
func SanitizeSecret(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return unicode.ToUpper(r)
	}, raw)
}

// DecodeSecret sanitizes and decodes a Base32 secret into raw key bytes.
// Padding is handled internally so callers may supply padded or unpadded
// text. minBytes is the smallest acceptable decoded length; values below 1
// fall back to DefaultMinSecretBytes. All rejection paths return an error
// matching ErrInvalidSecret via errors.Is.
func DecodeSecret(raw string, minBytes int) ([]byte, error) {
	if minBytes < 1 {
		minBytes = DefaultMinSecretBytes
	}

	s := SanitizeSecret(raw)
	if s == "" {
		return nil, errors.Join(ErrInvalidSecret, errors.New("empty after sanitization"))
	}
	if !secretPattern.MatchString(s) {
		return nil, errors.Join(ErrInvalidSecret, errors.New("characters outside base32 alphabet [A-Z2-7]"))
	}

	// Normalize padding: strip whatever the user pasted, then re-pad to the
	// 8-character block the standard decoder requires.
	s = strings.TrimRight(s, "=")
	if rem := len(s) % 8; rem != 0 {
		s += strings.Repeat("=", 8-rem)
	}

	key, err := base32.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	if len(key) < minBytes {
		return nil, errors.Join(ErrInvalidSecret, fmt.Errorf("secret decodes to %d bytes, minimum is %d", len(key), minBytes))
	}

	return key, nil
}

// EncodeSecret renders raw key bytes as canonical unpadded Base32, the form
// shown to users and embedded in enrollment URIs. EncodeSecret and
// DecodeSecret round-trip the byte content of any valid secret.
func EncodeSecret(key []byte) string {
	return noPadding.EncodeToString(key)
}

// Code computes the current 6-digit code for the 30-second step containing
// now, along with the seconds remaining until the code rotates. The remaining
// count is always in [1, Period]: it is Period exactly at a step boundary and
// 1 in the final second of the window.
//
// The derivation follows RFC 6238 with the RFC 4226 core: the step index is
// HMAC-SHA1'd as an 8-byte big-endian counter, dynamically truncated to a
// 31-bit value, and reduced modulo 10^6.
func Code(key []byte, now time.Time) (code string, secondsRemaining int, err error) {
	if len(key) == 0 {
		return "", 0, ErrEmptySecret
	}

	unix := now.Unix()
	value := hotp(key, uint64(unix/Period))
	remaining := Period - int(unix%Period)

	return fmt.Sprintf("%06d", value), remaining, nil
}

// hotp implements the RFC 4226 HMAC-based one-time password for a single
// counter value, reduced to Digits decimal digits.
func hotp(key []byte, counter uint64) int {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: the low nibble of the last byte selects a 4-byte
	// window; the top bit is cleared so the value is a positive 31-bit int.
	offset := sum[len(sum)-1] & 0x0f
	value := int(sum[offset]&0x7f)<<24 |
		int(sum[offset+1])<<16 |
		int(sum[offset+2])<<8 |
		int(sum[offset+3])

	return value % 1_000_000
}
