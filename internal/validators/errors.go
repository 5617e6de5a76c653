package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidJournalID  = errors.New("invalid journal id")
	ErrInvalidEnvelopeID = errors.New("invalid envelope id")
	ErrEmptyEnvelope     = errors.New("envelope is required")
	ErrEnvelopeTooLarge  = errors.New("envelope is too large")
)
