// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-journal-vault/internal/crypto"
	"github.com/MKhiriev/go-journal-vault/internal/utils"
)

// validate checks the values that are invalid in any view. Empty fields are
// accepted here; each view decides which of them it requires.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Storage.DB.Dialect {
	case "", DialectSQLite, DialectPostgres:
	default:
		return fmt.Errorf("%w: unknown dialect %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Dialect)
	}

	switch cfg.Storage.Backend {
	case "", BackendLocal, BackendRemote:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidStorageConfigs, cfg.Storage.Backend)
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if !utils.ValidJournalID(cfg.App.JournalID) {
		return ErrInvalidAppConfigs
	}

	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}
	if cfg.Storage.DB.Dialect != DialectSQLite {
		return fmt.Errorf("%w: client database must be %s", ErrInvalidStorageConfigs, DialectSQLite)
	}

	if cfg.Storage.Backend == BackendRemote &&
		(cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0) {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Crypto.SessionTimeout < 0 {
		return fmt.Errorf("%w: negative session timeout", ErrInvalidCryptoConfigs)
	}
	if err := crypto.ValidateKDFParams(cfg.Crypto.KDFParams()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCryptoConfigs, err)
	}

	return nil
}

func (cfg *ServerConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 || cfg.Server.MaxEnvelopeSize <= 0 {
		return ErrInvalidServerConfigs
	}

	return nil
}
