package service

import (
	"github.com/MKhiriev/go-journal-vault/internal/config"
	"github.com/MKhiriev/go-journal-vault/internal/crypto"
	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/internal/recovery"
	"github.com/MKhiriev/go-journal-vault/internal/store"
)

// Services is the envelope server's service layer.
type Services struct {
	EnvelopeService EnvelopeService
	AppInfoService  AppInfoService
}

func NewServices(storages *store.ServerStorages, cfg config.ServerConfig, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}
	return &Services{
		EnvelopeService: NewEnvelopeService(storages.Envelopes, cfg.Server, logger),
		AppInfoService:  appInfo,
	}, nil
}

// ClientServices is the CLI's service layer for one journal.
type ClientServices struct {
	Crypto  JournalCryptoService
	Journal JournalService
	Watcher SessionWatcher
}

// NewClientServices wires the crypto session of cfg.App.JournalID to
// envelopes, the local SQL repository or the remote adapter.
func NewClientServices(cfg config.ClientConfig, envelopes store.EnvelopeRepository, storages *store.ClientStorages, logger *logger.Logger) *ClientServices {
	deriver := crypto.NewKeyDeriver()
	engine := crypto.NewEngine()
	keyChain := crypto.NewKeyChain()
	params := cfg.Crypto.KDFParams()

	cryptoSvc := NewJournalCryptoService(
		deriver,
		engine,
		keyChain,
		recovery.NewManager(deriver, engine, keyChain, params),
		params,
		logger,
	)

	return &ClientServices{
		Crypto:  cryptoSvc,
		Journal: NewJournalService(cfg.App.JournalID, cryptoSvc, envelopes, storages.Profiles, storages.Bundles, logger),
		Watcher: NewSessionWatcher(cryptoSvc),
	}
}
