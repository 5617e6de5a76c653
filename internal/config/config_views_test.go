package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-journal-vault/internal/crypto"
	"github.com/MKhiriev/go-journal-vault/models"
)

// ── GetClientConfig ───────────────────────────────────────────────────────────

func TestGetClientConfig_Defaults(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := GetClientConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "personal", cfg.App.JournalID)
	assert.Equal(t, BackendLocal, cfg.Storage.Backend)
	assert.Equal(t, DialectSQLite, cfg.Storage.DB.Dialect)
	assert.Equal(t, "journal.db", filepath.Base(cfg.Storage.DB.DSN))
	assert.Equal(t, filepath.Dir(cfg.Storage.DB.DSN), cfg.Storage.Files.BackupDir)
	assert.Equal(t, 15*time.Minute, cfg.Crypto.SessionTimeout)
	assert.Equal(t, models.KDFParams{
		Name:       models.KDFPBKDF2,
		Hash:       models.HashSHA256,
		Iterations: 600_000,
	}, cfg.Crypto.KDFParams())
}

func TestGetClientConfig_OverridesWinOverEnv(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("APP_JOURNAL_ID", "from-env")
	t.Setenv("CRYPTO_SESSION_TIMEOUT", "1m")

	cfg, err := GetClientConfig(&StructuredConfig{
		App:     App{JournalID: "from-flag"},
		Storage: Storage{DB: DB{DSN: filepath.Join(t.TempDir(), "j.db")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.App.JournalID)
	assert.Equal(t, time.Minute, cfg.Crypto.SessionTimeout)
}

func TestGetClientConfig_JSONFromEnv(t *testing.T) {
	clearEnvVars(t)
	path := writeTempJSONConfig(t, map[string]any{
		"crypto": map[string]any{"kdf": "Argon2id", "argon2_time": 2},
	})
	t.Setenv("CONFIG", path)

	cfg, err := GetClientConfig(&StructuredConfig{
		Storage: Storage{DB: DB{DSN: filepath.Join(t.TempDir(), "j.db")}},
	})
	require.NoError(t, err)

	assert.Equal(t, models.KDFParams{
		Name:       models.KDFArgon2id,
		Iterations: 2,
		Memory:     64 * 1024,
		Threads:    4,
	}, cfg.Crypto.KDFParams())
}

func TestClientConfig_Validate(t *testing.T) {
	valid := func() *StructuredConfig {
		cfg := clientDefaults()
		cfg.Storage.DB.DSN = "/tmp/journal.db"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(cfg *StructuredConfig)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(*StructuredConfig) {}},
		{
			name:    "empty journal id",
			mutate:  func(cfg *StructuredConfig) { cfg.App.JournalID = "" },
			wantErr: ErrInvalidAppConfigs,
		},
		{
			name:    "in-memory database",
			mutate:  func(cfg *StructuredConfig) { cfg.Storage.DB.DSN = ":memory:" },
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name:    "postgres on the client",
			mutate:  func(cfg *StructuredConfig) { cfg.Storage.DB.Dialect = DialectPostgres },
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name: "remote backend without address",
			mutate: func(cfg *StructuredConfig) {
				cfg.Storage.Backend = BackendRemote
				cfg.Adapter.HTTPAddress = ""
			},
			wantErr: ErrInvalidAdapterConfigs,
		},
		{
			name:    "iterations below minimum",
			mutate:  func(cfg *StructuredConfig) { cfg.Crypto.PBKDF2Iterations = 1000 },
			wantErr: crypto.ErrInvalidKDFParams,
		},
		{
			name:    "unknown kdf",
			mutate:  func(cfg *StructuredConfig) { cfg.Crypto.KDF = "scrypt" },
			wantErr: ErrInvalidCryptoConfigs,
		},
		{
			name:    "negative session timeout",
			mutate:  func(cfg *StructuredConfig) { cfg.Crypto.SessionTimeout = -time.Second },
			wantErr: ErrInvalidCryptoConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			_, err := newClientConfig(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ── GetServerConfig ───────────────────────────────────────────────────────────

func TestGetServerConfig(t *testing.T) {
	clearEnvVars(t)
	resetCommandLine(t, "-d", "postgres://localhost/vault")
	t.Setenv("SERVER_ADDRESS", "0.0.0.0:9999")

	cfg, err := GetServerConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/vault", cfg.Storage.DB.DSN)
	assert.Equal(t, DialectPostgres, cfg.Storage.DB.Dialect)
	assert.Equal(t, "0.0.0.0:9999", cfg.Server.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxEnvelopeSize)
}

func TestGetServerConfig_MissingDSN(t *testing.T) {
	clearEnvVars(t)
	resetCommandLine(t)

	_, err := GetServerConfig()
	assert.ErrorIs(t, err, ErrInvalidStorageConfigs)
}
