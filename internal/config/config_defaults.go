package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/MKhiriev/go-journal-vault/models"
)

const (
	defaultJournalID        = "personal"
	defaultPBKDF2Iterations = 600_000
	defaultArgon2Time       = 1
	defaultArgon2Memory     = 64 * 1024
	defaultArgon2Threads    = 4
	defaultSessionTimeout   = 15 * time.Minute
	defaultHTTPAddress      = "localhost:8080"
	defaultRequestTimeout   = 30 * time.Second
	defaultMaxEnvelopeSize  = 1 << 20
	defaultMaxBundleSize    = 64 << 20

	dataDirName = "journal-vault"
)

func cryptoDefaults() Crypto {
	return Crypto{
		KDF:              models.KDFPBKDF2,
		PBKDF2Iterations: defaultPBKDF2Iterations,
		Argon2Time:       defaultArgon2Time,
		Argon2Memory:     defaultArgon2Memory,
		Argon2Threads:    defaultArgon2Threads,
		SessionTimeout:   defaultSessionTimeout,
	}
}

// clientDefaults keeps the local database and backups in the user's config
// directory (e.g. ~/.config/journal-vault).
func clientDefaults() *StructuredConfig {
	dir := clientDataDir()
	return &StructuredConfig{
		App:    App{JournalID: defaultJournalID},
		Crypto: cryptoDefaults(),
		Storage: Storage{
			Backend: BackendLocal,
			DB: DB{
				DSN:     filepath.Join(dir, "journal.db"),
				Dialect: DialectSQLite,
			},
			Files: Files{
				BackupDir:     dir,
				MaxBundleSize: defaultMaxBundleSize,
			},
		},
		Adapter: Adapter{
			HTTPAddress:    defaultHTTPAddress,
			RequestTimeout: defaultRequestTimeout,
		},
	}
}

func serverDefaults() *StructuredConfig {
	return &StructuredConfig{
		Storage: Storage{
			DB: DB{Dialect: DialectPostgres},
		},
		Server: Server{
			HTTPAddress:     defaultHTTPAddress,
			RequestTimeout:  defaultRequestTimeout,
			MaxEnvelopeSize: defaultMaxEnvelopeSize,
		},
	}
}

func clientDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return dataDirName
	}
	return filepath.Join(base, dataDirName)
}
