package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"assettrack/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps domain sentinels to stable status+message pairs. Anything
// unmapped is a 500 with a generic body; the detail stays in the logs.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrPasswordLength),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidOtp):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, domain.ErrDuplicateIdentity),
		errors.Is(err, domain.ErrAlreadyVerified):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAssetNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, domain.ErrNotVerified):
		status = http.StatusForbidden
		msg = err.Error()
	case errors.Is(err, domain.ErrMissingToken):
		status = http.StatusUnauthorized
		msg = err.Error()
	case errors.Is(err, domain.ErrInvalidToken):
		status = http.StatusForbidden
		msg = err.Error()
	case errors.Is(err, domain.ErrOtpDelivery):
		status = http.StatusBadGateway
		msg = err.Error()
	default:
		slog.Error("unhandled error at http boundary",
			"error", err, "method", r.Method, "path", r.URL.Path)
	}

	writeJSON(w, status, errorBody{Error: msg})
}

// decodeJSON rejects unknown fields so malformed or over-specified bodies
// fail before any store access.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.ErrValidation
	}
	return nil
}
