package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/thehopecrystal/verify-properties/internal/identity"
	"github.com/thehopecrystal/verify-properties/internal/lifecycle"
	"github.com/thehopecrystal/verify-properties/internal/records"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, identity.ErrInvalidInput),
		errors.Is(err, records.ErrInvalidInput),
		errors.Is(err, lifecycle.ErrUnknownStatus):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, records.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, records.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, identity.ErrAlreadyExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error("Request failed", slog.Any("err", err))
		w.Header().Set("Retry-After", "3")
		http.Error(w, http.StatusText(code), code)
		return
	}
	http.Error(w, err.Error(), code)
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}
