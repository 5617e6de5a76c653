// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/internal/utils"
	"github.com/MKhiriev/go-journal-vault/models"
)

func (h *Handler) uploadEnvelope(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	journalID, _ := utils.GetJournalIDFromContext(r.Context())

	var rec models.EnvelopeRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			utils.WriteError(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	stored, err := h.services.EnvelopeService.Upload(r.Context(), journalID, rec)
	if err != nil {
		h.writeServiceError(w, r, "*Handler.uploadEnvelope", err)
		return
	}

	log.Debug().Str("func", "*Handler.uploadEnvelope").Str("envelope_id", stored.ID).Msg("envelope stored")
	_, _ = utils.WriteJSON(w, stored, http.StatusCreated)
}

func (h *Handler) listEnvelopes(w http.ResponseWriter, r *http.Request) {
	journalID, _ := utils.GetJournalIDFromContext(r.Context())

	records, err := h.services.EnvelopeService.List(r.Context(), journalID)
	if err != nil {
		h.writeServiceError(w, r, "*Handler.listEnvelopes", err)
		return
	}
	if records == nil {
		records = []models.EnvelopeRecord{}
	}

	_, _ = utils.WriteJSON(w, records, http.StatusOK)
}

func (h *Handler) getEnvelope(w http.ResponseWriter, r *http.Request) {
	journalID, _ := utils.GetJournalIDFromContext(r.Context())

	rec, err := h.services.EnvelopeService.Get(r.Context(), journalID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, "*Handler.getEnvelope", err)
		return
	}

	_, _ = utils.WriteJSON(w, rec, http.StatusOK)
}

func (h *Handler) deleteEnvelope(w http.ResponseWriter, r *http.Request) {
	journalID, _ := utils.GetJournalIDFromContext(r.Context())

	if err := h.services.EnvelopeService.Delete(r.Context(), journalID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, "*Handler.deleteEnvelope", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps err to a status and a message that never echoes
// request content.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	status := statusFromError(err)
	event := logger.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromRequest(r).Error()
	}
	event.Err(err).Str("func", fn).Int("status", status).Msg("request failed")

	utils.WriteError(w, messageFromError(err, status), status)
}
