package totp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Codeplay77/otpvault/internal/totp"
)

func TestBuildURI(t *testing.T) {
	tests := []struct {
		name   string
		acct   string
		issuer string
		secret string
		want   string
	}{
		{
			name:   "with issuer",
			acct:   "user@example.com",
			issuer: "GitHub",
			secret: "JBSWY3DPEHPK3PXP",
			want:   "otpauth://totp/GitHub:user@example.com?algorithm=SHA1&digits=6&issuer=GitHub&period=30&secret=JBSWY3DPEHPK3PXP",
		},
		{
			name:   "without issuer",
			acct:   "alice",
			issuer: "",
			secret: "JBSWY3DPEHPK3PXP",
			want:   "otpauth://totp/alice?algorithm=SHA1&digits=6&period=30&secret=JBSWY3DPEHPK3PXP",
		},
		{
			name:   "special characters escaped",
			acct:   "test+user@example.com",
			issuer: "Test & App",
			secret: "JBSWY3DPEHPK3PXP",
			want:   "otpauth://totp/Test%20&%20App:test+user@example.com?algorithm=SHA1&digits=6&issuer=Test+%26+App&period=30&secret=JBSWY3DPEHPK3PXP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := totp.BuildURI(tt.acct, tt.issuer, tt.secret)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseURI(t *testing.T) {
	t.Run("full form", func(t *testing.T) {
		name, issuer, secret, err := totp.ParseURI("otpauth://totp/GitHub:user@example.com?secret=JBSWY3DPEHPK3PXP&issuer=GitHub")
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", name)
		assert.Equal(t, "GitHub", issuer)
		assert.Equal(t, "JBSWY3DPEHPK3PXP", secret)
	})

	t.Run("issuer from label prefix only", func(t *testing.T) {
		name, issuer, secret, err := totp.ParseURI("otpauth://totp/Google:user@gmail.com?secret=JBSWY3DPEHPK3PXP")
		require.NoError(t, err)
		assert.Equal(t, "user@gmail.com", name)
		assert.Equal(t, "Google", issuer)
		assert.Equal(t, "JBSWY3DPEHPK3PXP", secret)
	})

	t.Run("query issuer wins over label prefix", func(t *testing.T) {
		name, issuer, _, err := totp.ParseURI("otpauth://totp/LabelCo:bob?secret=JBSWY3DPEHPK3PXP&issuer=QueryCo")
		require.NoError(t, err)
		assert.Equal(t, "bob", name)
		assert.Equal(t, "QueryCo", issuer)
	})

	t.Run("no issuer anywhere", func(t *testing.T) {
		name, issuer, _, err := totp.ParseURI("otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP")
		require.NoError(t, err)
		assert.Equal(t, "alice", name)
		assert.Equal(t, "", issuer)
	})

	t.Run("percent-escaped label", func(t *testing.T) {
		name, issuer, _, err := totp.ParseURI("otpauth://totp/My%20Service:alice?secret=JBSWY3DPEHPK3PXP")
		require.NoError(t, err)
		assert.Equal(t, "alice", name)
		assert.Equal(t, "My Service", issuer)
	})

	t.Run("explicit default params accepted", func(t *testing.T) {
		_, _, _, err := totp.ParseURI("otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&algorithm=SHA1&digits=6&period=30")
		assert.NoError(t, err)
	})

	t.Run("lowercase sha1 accepted", func(t *testing.T) {
		_, _, _, err := totp.ParseURI("otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&algorithm=sha1")
		assert.NoError(t, err)
	})

	t.Run("surrounding whitespace trimmed", func(t *testing.T) {
		name, _, _, err := totp.ParseURI("  otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP\n")
		require.NoError(t, err)
		assert.Equal(t, "alice", name)
	})

	invalid := []struct {
		name string
		uri  string
	}{
		{"wrong scheme", "https://totp/alice?secret=JBSWY3DPEHPK3PXP"},
		{"hotp type", "otpauth://hotp/alice?secret=JBSWY3DPEHPK3PXP"},
		{"missing secret", "otpauth://totp/alice?issuer=GitHub"},
		{"empty label", "otpauth://totp/?secret=JBSWY3DPEHPK3PXP"},
		{"sha256 algorithm", "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&algorithm=SHA256"},
		{"eight digits", "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&digits=8"},
		{"sixty second period", "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP&period=60"},
		{"not a uri at all", "JBSWY3DPEHPK3PXP"},
	}

	for _, tt := range invalid {
		t.Run(tt.name+" -> ErrInvalidURI", func(t *testing.T) {
			_, _, _, err := totp.ParseURI(tt.uri)
			assert.ErrorIs(t, err, totp.ErrInvalidURI)
		})
	}
}

func TestURI_RoundTrip(t *testing.T) {
	uri := totp.BuildURI("user@example.com", "Example Corp", "JBSWY3DPEHPK3PXP")

	name, issuer, secret, err := totp.ParseURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", name)
	assert.Equal(t, "Example Corp", issuer)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", secret)
}
