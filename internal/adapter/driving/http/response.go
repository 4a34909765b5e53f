package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Codeplay77/otpvault/internal/application"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// AccountResponse is the JSON representation of a stored account with its
// current code. It never carries ciphertext or plaintext key material: Code
// is the derived 6-digit value, and Error flags an account whose stored
// secret could not be decrypted (such an entry has no code).
type AccountResponse struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Issuer           string `json:"issuer"`
	Code             string `json:"code,omitempty"`
	SecondsRemaining int    `json:"seconds_remaining,omitempty"`
	CreatedAt        string `json:"created_at"`
	Error            string `json:"error,omitempty"`
}

// RevealResponse is the JSON representation of an explicit secret reveal:
// the Base32 secret for copy-paste plus the otpauth URI for manual
// re-enrollment on another device.
type RevealResponse struct {
	ID     int64  `json:"id"`
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

// AddAccountRequest is the JSON body for the add account endpoint. Either
// URI carries a full otpauth://totp enrollment URI, or Name and Secret (and
// optionally Issuer) describe a manual enrollment.
type AddAccountRequest struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toAccountResponse converts a service AccountCode to its JSON representation.
// A per-row decryption failure is rendered as a generic error string; the
// underlying cause stays in the server log.
func toAccountResponse(entry application.AccountCode) AccountResponse {
	resp := AccountResponse{
		ID:        entry.Account.ID,
		Name:      entry.Account.Name,
		Issuer:    entry.Account.Issuer,
		CreatedAt: entry.Account.CreatedAt.UTC().Format(time.RFC3339),
	}

	if entry.Err != nil {
		resp.Error = "decryption failed"
		return resp
	}

	resp.Code = entry.Code
	resp.SecondsRemaining = entry.SecondsRemaining
	return resp
}
