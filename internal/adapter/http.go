package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-journal-vault/internal/config"
	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/internal/utils"
	"github.com/MKhiriev/go-journal-vault/models"
)

const (
	envelopesPath = "/api/journals/{journalID}/envelopes"
	envelopePath  = envelopesPath + "/{id}"

	// contentHashHeader mirrors the server's upload integrity header.
	contentHashHeader = "X-Content-SHA256"

	defaultRetries = 2
)

type httpServerAdapter struct {
	client *utils.HTTPClient
	logger *logger.Logger
}

// NewHTTPServerAdapter constructs the HTTP implementation of [ServerAdapter]
// for the server at cfg.HTTPAddress. A missing scheme defaults to http.
func NewHTTPServerAdapter(cfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewHTTPClient(
		utils.WithBaseURL(baseURL),
		utils.WithTimeout(cfg.RequestTimeout),
		utils.WithRetries(defaultRetries),
	)

	return &httpServerAdapter{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Store uploads env with a content hash the server verifies before storing.
func (h *httpServerAdapter) Store(ctx context.Context, env models.StoredEnvelope) (string, error) {
	sum := sha256.Sum256(env.Payload)

	var created models.EnvelopeRecord
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(contentHashHeader, hex.EncodeToString(sum[:])).
		SetPathParam("journalID", env.JournalID).
		SetBody(models.EnvelopeRecord{
			ID:        env.ID,
			CreatedAt: env.CreatedAt,
			Envelope:  env.Payload,
		}).
		SetResult(&created).
		Post(envelopesPath)
	if err != nil {
		return "", fmt.Errorf("upload envelope request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: no envelope id", ErrUnexpectedResponse)
	}

	h.logger.Debug().Str("func", "*httpServerAdapter.Store").Str("envelope_id", created.ID).Msg("envelope uploaded")
	return created.ID, nil
}

func (h *httpServerAdapter) Fetch(ctx context.Context, journalID, id string) (models.StoredEnvelope, error) {
	var rec models.EnvelopeRecord
	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"journalID": journalID, "id": id}).
		SetResult(&rec).
		Get(envelopePath)
	if err != nil {
		return models.StoredEnvelope{}, fmt.Errorf("fetch envelope request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.StoredEnvelope{}, err
	}

	return toStored(journalID, rec), nil
}

func (h *httpServerAdapter) List(ctx context.Context, journalID string) ([]models.StoredEnvelope, error) {
	var records []models.EnvelopeRecord
	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("journalID", journalID).
		SetResult(&records).
		Get(envelopesPath)
	if err != nil {
		return nil, fmt.Errorf("list envelopes request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	stored := make([]models.StoredEnvelope, 0, len(records))
	for _, rec := range records {
		stored = append(stored, toStored(journalID, rec))
	}
	return stored, nil
}

func (h *httpServerAdapter) Delete(ctx context.Context, journalID, id string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"journalID": journalID, "id": id}).
		Delete(envelopePath)
	if err != nil {
		return fmt.Errorf("delete envelope request: %w", err)
	}
	return mapHTTPError(resp)
}

func (h *httpServerAdapter) ServerVersion(ctx context.Context) (string, error) {
	var info models.ServerInfo
	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&info).
		Get("/api/version")
	if err != nil {
		return "", fmt.Errorf("version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}
	return info.Version, nil
}

func toStored(journalID string, rec models.EnvelopeRecord) models.StoredEnvelope {
	return models.StoredEnvelope{
		ID:        rec.ID,
		JournalID: journalID,
		Payload:   []byte(rec.Envelope),
		CreatedAt: rec.CreatedAt,
	}
}
