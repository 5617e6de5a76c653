package validators

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-journal-vault/internal/envelope"
	"github.com/MKhiriev/go-journal-vault/internal/utils"
	"github.com/MKhiriev/go-journal-vault/models"
)

// Field names accepted by [EnvelopeValidator].
const (
	FieldJournalID = "journal_id"
	FieldID        = "id"
	FieldPayload   = "payload"
)

// EnvelopeValidator checks a [models.StoredEnvelope] before it is stored.
type EnvelopeValidator struct {
	maxEnvelopeSize int64
}

// NewEnvelopeValidator returns a validator for stored envelopes. A
// maxEnvelopeSize of zero disables the size limit.
func NewEnvelopeValidator(maxEnvelopeSize int64) Validator {
	return &EnvelopeValidator{maxEnvelopeSize: maxEnvelopeSize}
}

func (v *EnvelopeValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.StoredEnvelope:
		return v.validateStoredEnvelope(ctx, value, fields...)
	case *models.StoredEnvelope:
		if value == nil {
			return ErrUnsupportedType
		}
		return v.validateStoredEnvelope(ctx, *value, fields...)
	default:
		return ErrUnsupportedType
	}
}

func (v *EnvelopeValidator) validateStoredEnvelope(_ context.Context, env models.StoredEnvelope, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldJournalID, FieldID, FieldPayload}
	}

	for _, f := range fields {
		switch f {
		case FieldJournalID:
			if !utils.ValidJournalID(env.JournalID) {
				return ErrInvalidJournalID
			}
		case FieldID:
			// empty: the server assigns one
			if env.ID != "" && !utils.ValidIdentifier(env.ID) {
				return ErrInvalidEnvelopeID
			}
		case FieldPayload:
			if len(env.Payload) == 0 {
				return ErrEmptyEnvelope
			}
			if v.maxEnvelopeSize > 0 && int64(len(env.Payload)) > v.maxEnvelopeSize {
				return ErrEnvelopeTooLarge
			}
			if _, err := envelope.Parse(env.Payload); err != nil {
				return fmt.Errorf("payload: %w", err)
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
