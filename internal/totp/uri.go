package totp

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// BuildURI renders an enrollment URI in the Key Uri Format understood by
// authenticator apps:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
//
// The label is "Issuer:Name" with both parts path-escaped; when issuer is
// empty the label is just the name and the issuer query parameter is omitted.
// Algorithm, digits and period are always written explicitly so scanners
// never fall back to their own defaults.
func BuildURI(name, issuer, secret string) string {
	label := url.PathEscape(name)
	if issuer != "" {
		label = url.PathEscape(issuer) + ":" + label
	}

	query := url.Values{}
	query.Set("secret", secret)
	if issuer != "" {
		query.Set("issuer", issuer)
	}
	query.Set("algorithm", "SHA1")
	query.Set("digits", strconv.Itoa(Digits))
	query.Set("period", strconv.Itoa(Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode())
}

// ParseURI extracts the account name, issuer and Base32 secret from an
// otpauth://totp enrollment URI, the string carried by provisioning QR codes.
//
// The issuer comes from the issuer query parameter when present, otherwise
// from an "Issuer:Account" label prefix. URIs that request a non-default
// algorithm, digit count or period are rejected rather than silently
// enrolled: codes computed here are always SHA1/6-digit/30-second, and
// accepting such a URI would produce codes that match no other client.
//
// The secret is returned as written; callers validate it with DecodeSecret.
// All rejection paths return an error matching ErrInvalidURI via errors.Is.
func ParseURI(raw string) (name, issuer, secret string, err error) {
	u, parseErr := url.Parse(strings.TrimSpace(raw))
	if parseErr != nil {
		return "", "", "", errors.Join(ErrInvalidURI, parseErr)
	}
	if u.Scheme != "otpauth" {
		return "", "", "", errors.Join(ErrInvalidURI, fmt.Errorf("scheme %q, want otpauth", u.Scheme))
	}
	if u.Host != "totp" {
		return "", "", "", errors.Join(ErrInvalidURI, fmt.Errorf("type %q, want totp", u.Host))
	}

	query := u.Query()

	secret = query.Get("secret")
	if secret == "" {
		return "", "", "", errors.Join(ErrInvalidURI, errors.New("missing secret parameter"))
	}

	if err := checkDefaultParams(query); err != nil {
		return "", "", "", err
	}

	// The label is the path with its leading slash removed; url.Parse has
	// already unescaped it.
	name = strings.TrimPrefix(u.Path, "/")
	issuer = query.Get("issuer")
	if before, after, found := strings.Cut(name, ":"); found {
		if issuer == "" {
			issuer = before
		}
		name = strings.TrimSpace(after)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", "", errors.Join(ErrInvalidURI, errors.New("empty account label"))
	}

	return name, issuer, secret, nil
}

// checkDefaultParams rejects URIs whose optional parameters diverge from the
// SHA1/6-digit/30-second profile this package generates.
func checkDefaultParams(query url.Values) error {
	if alg := query.Get("algorithm"); alg != "" && !strings.EqualFold(alg, "SHA1") {
		return errors.Join(ErrInvalidURI, fmt.Errorf("unsupported algorithm %q", alg))
	}
	if d := query.Get("digits"); d != "" && d != strconv.Itoa(Digits) {
		return errors.Join(ErrInvalidURI, fmt.Errorf("unsupported digits %q", d))
	}
	if p := query.Get("period"); p != "" && p != strconv.Itoa(Period) {
		return errors.Join(ErrInvalidURI, fmt.Errorf("unsupported period %q", p))
	}
	return nil
}
