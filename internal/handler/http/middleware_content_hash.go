package http

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/internal/utils"
	"github.com/MKhiriev/go-journal-vault/models"
)

// ContentHashHeader carries the hex SHA-256 of the serialized envelope in an
// upload. The header is optional; when present it must match.
const ContentHashHeader = "X-Content-SHA256"

// withContentHash compares ContentHashHeader with the hash of the uploaded
// envelope bytes and restores the body for the next handler.
func (h *Handler) withContentHash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				utils.WriteError(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			log.Err(err).Str("func", "*Handler.withContentHash").Msg("failed to read request body")
			utils.WriteError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		want := r.Header.Get(ContentHashHeader)
		if want == "" {
			next.ServeHTTP(w, r)
			return
		}

		var rec models.EnvelopeRecord
		if err = json.Unmarshal(body, &rec); err != nil {
			utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
			return
		}

		sum := sha256.Sum256(rec.Envelope)
		got := hex.EncodeToString(sum[:])
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			log.Warn().Str("func", "*Handler.withContentHash").Msg("content hash mismatch")
			utils.WriteError(w, ErrContentHashMismatch.Error(), http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
