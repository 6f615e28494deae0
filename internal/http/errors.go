package http

import (
	"errors"
	"net/http"

	"github.com/ecombi/dashboard/internal/domain"
)

// statusForError maps service errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrSnapshotNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnknownReport), errors.Is(err, domain.ErrUnknownTab):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
