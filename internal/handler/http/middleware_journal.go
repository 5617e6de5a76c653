package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/internal/utils"
)

// withJournalID validates the {journalID} path segment and stores it in the
// request context under [utils.JournalIDCtxKey].
func (h *Handler) withJournalID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		journalID := chi.URLParam(r, "journalID")
		if !utils.ValidJournalID(journalID) {
			logger.FromRequest(r).Warn().Str("func", "*Handler.withJournalID").Msg("rejected journal id")
			utils.WriteError(w, ErrInvalidJournalID.Error(), http.StatusBadRequest)
			return
		}

		log := logger.FromRequest(r).GetChildLogger()
		log.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("journal_id", journalID)
		})

		ctx := context.WithValue(r.Context(), utils.JournalIDCtxKey, journalID)
		next.ServeHTTP(w, r.WithContext(log.WithContext(ctx)))
	})
}
