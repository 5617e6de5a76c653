package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-journal-vault/internal/envelope"
	"github.com/MKhiriev/go-journal-vault/internal/service"
	"github.com/MKhiriev/go-journal-vault/internal/store"
	"github.com/MKhiriev/go-journal-vault/internal/validators"
)

var errorStatusMap = map[error]int{
	service.ErrVersionIsNotSpecified: http.StatusInternalServerError,

	validators.ErrInvalidJournalID:  http.StatusBadRequest,
	validators.ErrInvalidEnvelopeID: http.StatusBadRequest,
	validators.ErrEmptyEnvelope:     http.StatusBadRequest,
	validators.ErrEnvelopeTooLarge:  http.StatusRequestEntityTooLarge,
	validators.ErrUnsupportedType:   http.StatusInternalServerError,
	validators.ErrUnknownField:      http.StatusInternalServerError,

	envelope.ErrMalformedEnvelope: http.StatusBadRequest,

	ErrInvalidJournalID:    http.StatusBadRequest,
	ErrInvalidJSON:         http.StatusBadRequest,
	ErrContentHashMismatch: http.StatusBadRequest,

	store.ErrEnvelopeAlreadyExists: http.StatusConflict,
	store.ErrEnvelopeNotFound:      http.StatusNotFound,
	store.ErrEnvelopeNotSaved:      http.StatusInternalServerError,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
	store.ErrScanningRows:       http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// messageFromError returns a client-safe message for err. Internal failures
// are reported by status text only.
func messageFromError(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	for target := range errorStatusMap {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return http.StatusText(status)
}
