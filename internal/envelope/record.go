package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-journal-vault/internal/crypto"
	"github.com/MKhiriev/go-journal-vault/models"
)

type wireRecord struct {
	Version    *int               `json:"version"`
	KeyContext *models.KeyContext `json:"keyContext"`
	Wrapped    json.RawMessage    `json:"wrapped"`
}

type recordOut struct {
	Version    int               `json:"version"`
	KeyContext models.KeyContext `json:"keyContext"`
	Wrapped    json.RawMessage   `json:"wrapped"`
}

// MarshalRecoveryRecord serializes a recovery record. The wrapped key uses
// the regular envelope encoding.
func MarshalRecoveryRecord(r models.RecoveryRecord) ([]byte, error) {
	if err := ValidateRecoveryRecord(r); err != nil {
		return nil, err
	}
	wrapped, err := Marshal(r.Wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return json.Marshal(recordOut{Version: r.Version, KeyContext: r.KeyContext, Wrapped: wrapped})
}

// ParseRecoveryRecord decodes and validates a recovery record. Failures wrap
// [ErrMalformedRecord].
func ParseRecoveryRecord(data []byte) (models.RecoveryRecord, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return models.RecoveryRecord{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	if w.Version == nil || w.KeyContext == nil || len(w.Wrapped) == 0 {
		return models.RecoveryRecord{}, fmt.Errorf("%w: missing field", ErrMalformedRecord)
	}
	wrapped, err := Parse(w.Wrapped)
	if err != nil {
		return models.RecoveryRecord{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	r := models.RecoveryRecord{Version: *w.Version, KeyContext: *w.KeyContext, Wrapped: wrapped}
	if err := ValidateRecoveryRecord(r); err != nil {
		return models.RecoveryRecord{}, err
	}
	return r, nil
}

// ValidateRecoveryRecord checks the record version, the wrapped key's
// context and the wrapped envelope. The ciphertext must be exactly one key
// long.
func ValidateRecoveryRecord(r models.RecoveryRecord) error {
	if r.Version != models.RecoveryRecordVersion {
		return fmt.Errorf("%w: %w: %d", ErrMalformedRecord, ErrUnsupportedVersion, r.Version)
	}
	if err := crypto.ValidateKeyContext(r.KeyContext); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	if err := Validate(r.Wrapped); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	if len(r.Wrapped.Ciphertext) != crypto.KeySize {
		return fmt.Errorf("%w: wrapped key has the wrong length", ErrMalformedRecord)
	}
	return nil
}

// RecordAssociatedData binds the wrapped key's context to the wrapping
// envelope header, so a record cannot be grafted onto another profile.
func RecordAssociatedData(r models.RecoveryRecord) []byte {
	kc, err := json.Marshal(r.KeyContext)
	if err != nil {
		// unreachable: KeyContext has only plain fields
		panic(err)
	}
	aad := AssociatedData(r.Wrapped)
	out := make([]byte, 0, len(aad)+1+len(kc))
	out = append(out, aad...)
	out = append(out, '\n')
	return append(out, kc...)
}
