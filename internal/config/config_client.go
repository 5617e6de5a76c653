package config

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-journal-vault/models"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// Version is the client build version.
	Version string
	// JournalID selects the journal the client reads and writes.
	JournalID string
}

// ClientCrypto holds key-derivation defaults for new profiles and the idle
// timeout of an unlocked session.
type ClientCrypto struct {
	KDF              string
	PBKDF2Iterations uint32
	Argon2Time       uint32
	Argon2Memory     uint32
	Argon2Threads    uint8
	// SessionTimeout locks an idle session. Zero disables auto-lock.
	SessionTimeout time.Duration
}

// KDFParams returns the parameters pinned into profiles enrolled with this
// configuration.
func (c ClientCrypto) KDFParams() models.KDFParams {
	switch c.KDF {
	case models.KDFPBKDF2:
		return models.KDFParams{
			Name:       models.KDFPBKDF2,
			Hash:       models.HashSHA256,
			Iterations: c.PBKDF2Iterations,
		}
	case models.KDFArgon2id:
		return models.KDFParams{
			Name:       models.KDFArgon2id,
			Iterations: c.Argon2Time,
			Memory:     c.Argon2Memory,
			Threads:    c.Argon2Threads,
		}
	default:
		return models.KDFParams{Name: c.KDF}
	}
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the envelope server address used by the client.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// Backend is [BackendLocal] or [BackendRemote].
	Backend string
	// DB holds local database settings. The profile always lives here.
	DB DB
	// Files holds the export bundle settings.
	Files Files
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Crypto contains key-derivation defaults and the session timeout.
	Crypto ClientCrypto
	// Adapter contains the envelope server address and timeout.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
}

// GetClientConfig builds and validates a client-specific config view.
//
// overrides carries values taken from the client's command-line flags and
// wins over the environment, which wins over the JSON file and the built-in
// client defaults. overrides may be nil.
func GetClientConfig(overrides *StructuredConfig) (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withConfig(overrides).
		withEnv().
		withJSON().
		withDefaults(clientDefaults()).
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newClientConfig(cfg)
}

func newClientConfig(cfg *StructuredConfig) (*ClientConfig, error) {
	clientCfg := &ClientConfig{
		App: ClientApp{
			Version:   cfg.App.Version,
			JournalID: cfg.App.JournalID,
		},
		Crypto: ClientCrypto{
			KDF:              cfg.Crypto.KDF,
			PBKDF2Iterations: cfg.Crypto.PBKDF2Iterations,
			Argon2Time:       cfg.Crypto.Argon2Time,
			Argon2Memory:     cfg.Crypto.Argon2Memory,
			Argon2Threads:    cfg.Crypto.Argon2Threads,
			SessionTimeout:   cfg.Crypto.SessionTimeout,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			Backend: cfg.Storage.Backend,
			DB:      cfg.Storage.DB,
			Files:   cfg.Storage.Files,
		},
	}

	return clientCfg, clientCfg.validate()
}
