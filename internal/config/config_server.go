package config

import (
	"fmt"
	"time"
)

// ServerApp holds server application settings.
type ServerApp struct {
	Version string
}

// ServerStorage holds the envelope server's database settings.
type ServerStorage struct {
	DB DB
}

// ServerHTTP holds the listener settings.
type ServerHTTP struct {
	HTTPAddress     string
	RequestTimeout  time.Duration
	MaxEnvelopeSize int64
}

// ServerConfig is the envelope server's view of [StructuredConfig]. The
// server never derives keys, so it carries no crypto settings.
type ServerConfig struct {
	App     ServerApp
	Storage ServerStorage
	Server  ServerHTTP
}

// GetServerConfig loads the configuration with [GetStructuredConfig] and
// maps the fields used by the envelope server.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newServerConfig(cfg)
}

func newServerConfig(cfg *StructuredConfig) (*ServerConfig, error) {
	serverCfg := &ServerConfig{
		App: ServerApp{Version: cfg.App.Version},
		Storage: ServerStorage{
			DB: cfg.Storage.DB,
		},
		Server: ServerHTTP{
			HTTPAddress:     cfg.Server.HTTPAddress,
			RequestTimeout:  cfg.Server.RequestTimeout,
			MaxEnvelopeSize: cfg.Server.MaxEnvelopeSize,
		},
	}

	return serverCfg, serverCfg.validate()
}
