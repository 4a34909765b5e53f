package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/Codeplay77/otpvault/internal/application"
	"github.com/Codeplay77/otpvault/internal/domain/model"
	"github.com/Codeplay77/otpvault/internal/domain/port/driven"
	"github.com/Codeplay77/otpvault/internal/secrets"
	"github.com/Codeplay77/otpvault/internal/totp"
)

// QR image size bounds in pixels.
const (
	qrDefaultSize = 256
	qrMinSize     = 64
	qrMaxSize     = 1024
)

// Handler is the HTTP driving adapter that serves the local vault API.
type Handler struct {
	vault  *application.VaultService
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(vault *application.VaultService, logger *slog.Logger) *Handler {
	return &Handler{
		vault:  vault,
		logger: logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request-id, logging, and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/accounts", h.ListAccounts)
	mux.HandleFunc("POST /api/v1/accounts", h.AddAccount)
	mux.HandleFunc("GET /api/v1/accounts/{id}", h.GetAccount)
	mux.HandleFunc("GET /api/v1/accounts/{id}/secret", h.RevealSecret)
	mux.HandleFunc("GET /api/v1/accounts/{id}/qr", h.QRCode)
	mux.HandleFunc("DELETE /api/v1/accounts/{id}", h.DeleteAccount)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging; request id
	// outermost so every log line can carry it.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// ListAccounts returns all accounts with the code valid at the requested
// time. The optional "at" query parameter (Unix seconds) overrides the
// server clock so a presentation layer can drive its own recompute cycle.
// An account whose ciphertext fails to decrypt is reported in its own entry
// and does not abort the listing.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	now, err := requestTime(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid at parameter: expected unix seconds")
		return
	}

	entries, err := h.vault.ListAccountsWithCodes(r.Context(), now)
	if err != nil {
		h.logger.Error("failed to list accounts", "error", err)
		writeStorageError(w, err)
		return
	}

	resp := make([]AccountResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, toAccountResponse(entry))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddAccount enrolls a new account from a JSON body carrying either an
// otpauth:// URI or a name/issuer/secret triple, and responds with the
// created account and its current code.
func (h *Handler) AddAccount(w http.ResponseWriter, r *http.Request) {
	var req AddAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var created model.Account
	var err error
	if req.URI != "" {
		created, err = h.vault.AddAccountFromURI(r.Context(), req.URI)
	} else {
		created, err = h.vault.AddAccount(r.Context(), req.Name, req.Issuer, req.Secret)
	}

	switch {
	case err == nil:
	case errors.Is(err, totp.ErrInvalidSecret):
		writeError(w, http.StatusBadRequest, "invalid secret key")
		return
	case errors.Is(err, totp.ErrInvalidURI):
		writeError(w, http.StatusBadRequest, "invalid otpauth uri")
		return
	case errors.Is(err, application.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "account name is required")
		return
	default:
		h.logger.Error("failed to add account", "error", err)
		writeStorageError(w, err)
		return
	}

	entry, err := h.vault.AccountCode(r.Context(), created.ID, time.Now())
	if err != nil {
		h.logger.Error("failed to load created account", "id", created.ID, "error", err)
		writeStorageError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(entry))
}

// GetAccount returns a single account with the code valid at the requested
// time. The "at" query parameter works as in ListAccounts.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	now, err := requestTime(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid at parameter: expected unix seconds")
		return
	}

	entry, err := h.vault.AccountCode(r.Context(), id, now)
	if err != nil {
		h.respondAccountError(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(entry))
}

// RevealSecret returns one account's plaintext Base32 secret. The caller must
// send "X-Confirm-Reveal: yes" to prove the user confirmed the action; a
// request without it gets 428 Precondition Required and reveals nothing.
func (h *Handler) RevealSecret(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if r.Header.Get("X-Confirm-Reveal") != "yes" {
		writeError(w, http.StatusPreconditionRequired, "reveal requires confirmation: set X-Confirm-Reveal: yes")
		return
	}

	secret, err := h.vault.RevealSecret(r.Context(), id)
	if err != nil {
		h.respondAccountError(w, id, err)
		return
	}

	uri, err := h.vault.EnrollmentURI(r.Context(), id)
	if err != nil {
		h.respondAccountError(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, RevealResponse{
		ID:     id,
		Secret: secret,
		URI:    uri,
	})
}

// QRCode renders one account's enrollment URI as a PNG QR code for scanning
// into another authenticator. Like RevealSecret this exposes the secret, so
// the same confirmation header is required. The optional "size" query
// parameter is the image edge in pixels, clamped to [64, 1024].
func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if r.Header.Get("X-Confirm-Reveal") != "yes" {
		writeError(w, http.StatusPreconditionRequired, "reveal requires confirmation: set X-Confirm-Reveal: yes")
		return
	}

	size := qrDefaultSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid size parameter")
			return
		}
		size = min(max(parsed, qrMinSize), qrMaxSize)
	}

	uri, err := h.vault.EnrollmentURI(r.Context(), id)
	if err != nil {
		h.respondAccountError(w, id, err)
		return
	}

	png, err := qrcode.Encode(uri, qrcode.Medium, size)
	if err != nil {
		h.logger.Error("failed to encode qr code", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// DeleteAccount permanently removes an account.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.vault.DeleteAccount(r.Context(), id); err != nil {
		h.respondAccountError(w, id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// respondAccountError maps single-account operation failures to status codes:
// unknown id 404, undecryptable ciphertext 500, unavailable storage 503.
func (h *Handler) respondAccountError(w http.ResponseWriter, id int64, err error) {
	switch {
	case errors.Is(err, driven.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, secrets.ErrDecryptionFailed):
		h.logger.Error("account decryption failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "decryption failed")
	default:
		h.logger.Error("account operation failed", "id", id, "error", err)
		writeStorageError(w, err)
	}
}

// writeStorageError distinguishes environment faults (503, try again once the
// store or key file is reachable) from unexpected internal errors (500).
func writeStorageError(w http.ResponseWriter, err error) {
	if errors.Is(err, driven.ErrStorageUnavailable) || errors.Is(err, driven.ErrKeyStoreUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// pathID parses the {id} path segment, writing a 400 response on junk input.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return 0, false
	}
	return id, true
}

// requestTime resolves the effective "now" for code computation: the "at"
// query parameter as Unix seconds when present, the server clock otherwise.
func requestTime(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		return time.Now(), nil
	}

	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(unix, 0), nil
}
