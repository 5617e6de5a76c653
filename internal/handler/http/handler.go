package http

import (
	"github.com/MKhiriev/go-journal-vault/internal/config"
	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/internal/service"
)

// envelopeRecordOverhead is the room left in a request body for the JSON
// record around the envelope.
const envelopeRecordOverhead = 4 << 10

type Handler struct {
	services *service.Services

	// maxBodySize caps request bodies before they are decoded.
	maxBodySize int64

	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg config.ServerHTTP, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:    services,
		maxBodySize: cfg.MaxEnvelopeSize + envelopeRecordOverhead,
		logger:      logger,
	}
}
