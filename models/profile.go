package models

import "time"

// RecoveryRecordVersion is the layout version of [RecoveryRecord].
const RecoveryRecordVersion = 1

// KeyProfile is the non-secret enrollment record of a journal. It is created
// once, persisted next to (not inside) the encrypted entries and is all a
// device needs, together with the user's secret, to re-derive the key.
type KeyProfile struct {
	// JournalID is the opaque identifier that groups the journal's envelopes
	// in storage.
	JournalID string `json:"journalId"`

	// KeyContext holds the account salt and the pinned KDF parameters used for
	// new entries.
	KeyContext KeyContext `json:"keyContext"`

	// Verifier is an envelope of a fixed check string sealed under the derived
	// key. When present, a wrong secret is rejected at unlock time instead of
	// on the first decrypt.
	Verifier *Envelope `json:"verifier,omitempty"`

	// Recovery is the wrapped-key record produced at recovery enrollment.
	// Nil when the user skipped recovery.
	Recovery *RecoveryRecord `json:"recovery,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasRecovery reports whether a recovery phrase was enrolled.
func (p KeyProfile) HasRecovery() bool {
	return p.Recovery != nil
}

// RecoveryRecord lets a recovery phrase alone regenerate the journal key.
// Wrapped is an envelope whose plaintext is the raw 32-byte key; its KDF and
// Salt describe the phrase-derived wrapping key. KeyContext is the context of
// the wrapped key and is authenticated together with it.
type RecoveryRecord struct {
	Version    int        `json:"version"`
	KeyContext KeyContext `json:"keyContext"`
	Wrapped    Envelope   `json:"wrapped"`
}

// RecoveryEnrollment is handed to the caller exactly once. The phrase is not
// kept anywhere by the system; only Record is persisted.
type RecoveryEnrollment struct {
	Phrase string
	Record RecoveryRecord
}

// Clone returns a deep copy of the profile.
func (p KeyProfile) Clone() KeyProfile {
	out := p
	out.KeyContext = p.KeyContext.Clone()
	if p.Verifier != nil {
		v := p.Verifier.Clone()
		out.Verifier = &v
	}
	if p.Recovery != nil {
		r := *p.Recovery
		r.KeyContext = p.Recovery.KeyContext.Clone()
		r.Wrapped = p.Recovery.Wrapped.Clone()
		out.Recovery = &r
	}
	return out
}
