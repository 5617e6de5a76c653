package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/MKhiriev/go-journal-vault/internal/crypto"
	"github.com/MKhiriev/go-journal-vault/models"
)

// BundleMACPurpose separates the bundle MAC subkey from other MAC uses.
const BundleMACPurpose = "bundle/v1"

// wireBundle mirrors [models.Bundle] with pointer fields for presence checks.
type wireBundle struct {
	Format     *string            `json:"format"`
	Version    *int               `json:"version"`
	CreatedAt  json.RawMessage    `json:"createdAt"`
	Count      *int               `json:"count"`
	KeyContext *models.KeyContext `json:"keyContext"`
	Recovery   json.RawMessage    `json:"recovery,omitempty"`
	Entries    *[]json.RawMessage `json:"entries"`
	MAC        *[]byte            `json:"mac"`
}

// MarshalBundle serializes a bundle as indented JSON for a backup file.
func MarshalBundle(b models.Bundle) ([]byte, error) {
	if b.Entries == nil {
		b.Entries = []json.RawMessage{}
	}
	return json.MarshalIndent(b, "", "  ")
}

// ParseBundle decodes an export file and performs the structural checks that
// need no key: format tag, version, count against the entry list, a present
// integrity value and a valid key context. Individual entries are left as
// raw bytes; the caller verifies the MAC before parsing any of them.
func ParseBundle(data []byte) (models.Bundle, error) {
	var w wireBundle
	if err := json.Unmarshal(data, &w); err != nil {
		return models.Bundle{}, fmt.Errorf("%w: %w", ErrMalformedBundle, err)
	}

	switch {
	case w.Format == nil || *w.Format != models.BundleFormat:
		return models.Bundle{}, fmt.Errorf("%w: not a journal export", ErrMalformedBundle)
	case w.Version == nil:
		return models.Bundle{}, fmt.Errorf("%w: missing version", ErrMalformedBundle)
	case *w.Version != models.BundleVersion:
		return models.Bundle{}, fmt.Errorf("%w: %w: %d", ErrMalformedBundle, ErrUnsupportedVersion, *w.Version)
	case w.Entries == nil:
		return models.Bundle{}, fmt.Errorf("%w: missing entries", ErrMalformedBundle)
	case w.Count == nil || *w.Count != len(*w.Entries):
		return models.Bundle{}, fmt.Errorf("%w: entry count mismatch", ErrMalformedBundle)
	case w.MAC == nil || len(*w.MAC) == 0:
		return models.Bundle{}, fmt.Errorf("%w: missing integrity value", ErrMalformedBundle)
	case w.KeyContext == nil:
		return models.Bundle{}, fmt.Errorf("%w: missing key context", ErrMalformedBundle)
	}
	if err := crypto.ValidateKeyContext(*w.KeyContext); err != nil {
		return models.Bundle{}, fmt.Errorf("%w: %w", ErrMalformedBundle, err)
	}

	b := models.Bundle{
		Format:     *w.Format,
		Version:    *w.Version,
		Count:      *w.Count,
		KeyContext: *w.KeyContext,
		Entries:    *w.Entries,
		MAC:        *w.MAC,
	}
	if len(w.CreatedAt) > 0 {
		if err := json.Unmarshal(w.CreatedAt, &b.CreatedAt); err != nil {
			return models.Bundle{}, fmt.Errorf("%w: bad createdAt", ErrMalformedBundle)
		}
	}
	if len(w.Recovery) > 0 && !bytes.Equal(w.Recovery, []byte("null")) {
		rec, err := ParseRecoveryRecord(w.Recovery)
		if err != nil {
			return models.Bundle{}, fmt.Errorf("%w: %w", ErrMalformedBundle, err)
		}
		b.Recovery = &rec
	}
	return b, nil
}

// BundleMACInput returns the ordered parts covered by the bundle MAC: the
// format and version, the entry count, the key context, the recovery record
// and every entry in order. Entries are compacted first so reformatting the
// file does not change the MAC.
func BundleMACInput(b models.Bundle) ([][]byte, error) {
	kc, err := json.Marshal(b.KeyContext)
	if err != nil {
		return nil, err
	}
	var rec []byte
	if b.Recovery != nil {
		if rec, err = MarshalRecoveryRecord(*b.Recovery); err != nil {
			return nil, err
		}
	}

	parts := make([][]byte, 0, 5+len(b.Entries))
	parts = append(parts,
		[]byte(b.Format),
		[]byte(strconv.Itoa(b.Version)),
		[]byte(strconv.Itoa(b.Count)),
		kc,
		rec,
	)
	for _, e := range b.Entries {
		var buf bytes.Buffer
		if err := json.Compact(&buf, e); err != nil {
			// Keep malformed entries byte-exact; they are still covered.
			parts = append(parts, e)
			continue
		}
		parts = append(parts, buf.Bytes())
	}
	return parts, nil
}
