package main

import (
	"os"

	"github.com/awnumar/memguard"

	"github.com/MKhiriev/go-journal-vault/internal/client"
	"github.com/MKhiriev/go-journal-vault/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	// wipe key buffers on SIGINT/SIGTERM and on normal exit
	memguard.CatchInterrupt()
	defer memguard.Purge()

	app := client.NewApp(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))

	if err := app.Run(os.Args[1:]); err != nil {
		memguard.SafeExit(1)
	}
}
