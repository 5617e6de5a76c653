package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk layout of the JSON configuration file.
type StructuredJSONConfig struct {
	App struct {
		Version   string `json:"version"`
		JournalID string `json:"journal_id"`
	} `json:"app,omitempty"`

	Crypto struct {
		KDF              string   `json:"kdf"`
		PBKDF2Iterations uint32   `json:"pbkdf2_iterations"`
		Argon2Time       uint32   `json:"argon2_time"`
		Argon2Memory     uint32   `json:"argon2_memory"`
		Argon2Threads    uint8    `json:"argon2_threads"`
		SessionTimeout   Duration `json:"session_timeout"`
	} `json:"crypto,omitempty"`

	Storage struct {
		Backend string `json:"backend"`

		DB struct {
			DSN     string `json:"dsn"`
			Dialect string `json:"dialect"`
		} `json:"db,omitempty"`

		Files struct {
			BackupDir     string `json:"backup_dir"`
			MaxBundleSize int64  `json:"max_bundle_size"`
		} `json:"files,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress     string   `json:"http_address"`
		RequestTimeout  Duration `json:"request_timeout"`
		MaxEnvelopeSize int64    `json:"max_envelope_size"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Version:   jsonCfg.App.Version,
			JournalID: jsonCfg.App.JournalID,
		},
		Crypto: Crypto{
			KDF:              jsonCfg.Crypto.KDF,
			PBKDF2Iterations: jsonCfg.Crypto.PBKDF2Iterations,
			Argon2Time:       jsonCfg.Crypto.Argon2Time,
			Argon2Memory:     jsonCfg.Crypto.Argon2Memory,
			Argon2Threads:    jsonCfg.Crypto.Argon2Threads,
			SessionTimeout:   time.Duration(jsonCfg.Crypto.SessionTimeout),
		},
		Storage: Storage{
			Backend: jsonCfg.Storage.Backend,
			DB: DB{
				DSN:     jsonCfg.Storage.DB.DSN,
				Dialect: jsonCfg.Storage.DB.Dialect,
			},
			Files: Files{
				BackupDir:     jsonCfg.Storage.Files.BackupDir,
				MaxBundleSize: jsonCfg.Storage.Files.MaxBundleSize,
			},
		},
		Server: Server{
			HTTPAddress:     jsonCfg.Server.HTTPAddress,
			RequestTimeout:  time.Duration(jsonCfg.Server.RequestTimeout),
			MaxEnvelopeSize: jsonCfg.Server.MaxEnvelopeSize,
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
