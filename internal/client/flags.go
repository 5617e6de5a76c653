package client

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-journal-vault/internal/config"
)

// rootFlags are the persistent flags of every command. They win over the
// environment and the JSON config file.
type rootFlags struct {
	configPath       string
	journalID        string
	dataDir          string
	dbPath           string
	backend          string
	serverAddress    string
	kdf              string
	pbkdf2Iterations uint32
	sessionTimeout   time.Duration
}

func (f *rootFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&f.configPath, "config", "c", "", "JSON config file")
	flags.StringVarP(&f.journalID, "journal", "j", "", "journal id")
	flags.StringVar(&f.dataDir, "data-dir", "", "directory for the local database, backups and the log")
	flags.StringVar(&f.dbPath, "db", "", "local SQLite database file")
	flags.StringVar(&f.backend, "backend", "", "where entries are kept: local or remote")
	flags.StringVar(&f.serverAddress, "server", "", "envelope server address for the remote backend")
	flags.StringVar(&f.kdf, "kdf", "", "key derivation for new journals: PBKDF2 or Argon2id")
	flags.Uint32Var(&f.pbkdf2Iterations, "pbkdf2-iterations", 0, "PBKDF2 iterations for new journals")
	flags.DurationVar(&f.sessionTimeout, "session-timeout", 0, "lock an idle session after this long")
}

func (f *rootFlags) overrides() *config.StructuredConfig {
	cfg := &config.StructuredConfig{
		App: config.App{JournalID: f.journalID},
		Crypto: config.Crypto{
			KDF:              f.kdf,
			PBKDF2Iterations: f.pbkdf2Iterations,
			SessionTimeout:   f.sessionTimeout,
		},
		Storage: config.Storage{
			Backend: f.backend,
			DB:      config.DB{DSN: f.dbPath},
		},
		Adapter:      config.Adapter{HTTPAddress: f.serverAddress},
		JSONFilePath: f.configPath,
	}

	if f.dataDir != "" {
		cfg.Storage.Files.BackupDir = f.dataDir
		if cfg.Storage.DB.DSN == "" {
			cfg.Storage.DB.DSN = filepath.Join(f.dataDir, "journal.db")
		}
	}
	return cfg
}
