package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/MKhiriev/go-journal-vault/internal/adapter"
	"github.com/MKhiriev/go-journal-vault/internal/app"
	"github.com/MKhiriev/go-journal-vault/internal/config"
	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/internal/service"
	"github.com/MKhiriev/go-journal-vault/internal/store"
	"github.com/MKhiriev/go-journal-vault/models"
)

const loggerRole = "journal-client"

// App is the journal CLI. Services are opened lazily by the commands that
// need them, after flags have been parsed.
type App struct {
	build models.AppBuildInfo

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	prompt Prompter

	// interactive enables the spinner; it is set when errOut is a terminal.
	interactive bool

	flags rootFlags

	logger   *logger.Logger
	cfg      *config.ClientConfig
	storages *store.ClientStorages
	server   adapter.ServerAdapter
	services *service.ClientServices
}

// Option configures an [App].
type Option func(a *App)

// WithIO replaces the standard streams.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.in, a.out, a.errOut = in, out, errOut
	}
}

// WithPrompter replaces the terminal prompter.
func WithPrompter(p Prompter) Option {
	return func(a *App) { a.prompt = p }
}

// WithLogger replaces the client log file.
func WithLogger(l *logger.Logger) Option {
	return func(a *App) { a.logger = l }
}

// NewApp builds the CLI.
func NewApp(build models.AppBuildInfo, opts ...Option) *App {
	a := &App{
		build:  build,
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.prompt == nil {
		a.prompt = newTerminalPrompter(a.in, a.errOut)
	}
	if f, ok := a.errOut.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		a.interactive = true
	}
	return a
}

// Run executes the command line args (without the program name). The
// session is locked and storage closed before Run returns.
func (a *App) Run(args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(context.Background())
	a.close()

	if err != nil {
		a.report(err)
	}
	return err
}

// report prints the user-facing message for err. Details go to the log only.
func (a *App) report(err error) {
	if a.logger != nil {
		a.logger.Err(err).Str("func", "*App.report").Msg("command failed")
	}

	var cmdErr *commandError
	if !errors.As(err, &cmdErr) {
		// cobra's own argument and flag errors
		fmt.Fprintln(a.errOut, "error:", err.Error())
		return
	}

	color.New(color.FgRed).Fprintln(a.errOut, "error: "+app.MessageFor(err))
	if errors.Is(err, service.ErrRecoveryNotEnrolled) {
		fmt.Fprintln(a.errOut, service.MsgUnrecoverableWithoutRecovery)
	}
}

// commandError marks a failure of a command body, as opposed to a usage
// error reported by cobra. Its text may contain details meant for the log.
type commandError struct{ err error }

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

// runE adapts a command body: it opens the services first and marks the
// returned error as a [commandError].
func (a *App) runE(needServices bool, fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if needServices {
			if err := a.open(cmd.Context()); err != nil {
				return &commandError{err: err}
			}
		}
		if err := fn(cmd, args); err != nil {
			return &commandError{err: err}
		}
		return nil
	}
}

// open loads the configuration and wires storage and services once.
func (a *App) open(ctx context.Context) error {
	if a.services != nil {
		return nil
	}

	cfg, err := config.GetClientConfig(a.flags.overrides())
	if err != nil {
		return fmt.Errorf("load client config: %w", err)
	}
	a.cfg = cfg

	if a.logger == nil {
		a.logger = logger.NewClientLogger(loggerRole, cfg.Storage.Files.BackupDir)
	}

	storages, err := store.NewClientStorages(a.logger.WithContext(ctx), cfg.Storage, a.logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.storages = storages

	envelopes := storages.Envelopes
	if cfg.Storage.Backend == config.BackendRemote {
		server, err := adapter.NewHTTPServerAdapter(cfg.Adapter, a.logger)
		if err != nil {
			return fmt.Errorf("create server adapter: %w", err)
		}
		a.server = server
		envelopes = server
	}

	a.services = service.NewClientServices(*cfg, envelopes, storages, a.logger)
	a.logger.Debug().
		Str("journal_id", cfg.App.JournalID).
		Str("backend", cfg.Storage.Backend).
		Msg("client services created")
	return nil
}

func (a *App) close() {
	if a.services != nil {
		a.services.Watcher.Stop()
		a.services.Crypto.Lock()
	}
	if a.storages != nil {
		if err := a.storages.Close(); err != nil && a.logger != nil {
			a.logger.Err(err).Str("func", "*App.close").Msg("close storage")
		}
	}
}

// unlock loads the profile and unlocks it with a prompted secret.
func (a *App) unlock(ctx context.Context) error {
	if _, err := a.services.Journal.LoadProfile(ctx); err != nil {
		return err
	}
	secret, err := a.prompt.Secret("Secret: ")
	if err != nil {
		return err
	}

	stop := a.spin("Unlocking journal")
	err = a.services.Crypto.Unlock(ctx, secret)
	stop()
	return err
}

// newSecret asks for a secret twice.
func (a *App) newSecret(prompt string) (string, error) {
	first, err := a.prompt.Secret(prompt)
	if err != nil {
		return "", err
	}
	second, err := a.prompt.Secret("Repeat: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", app.ErrSecretsDoNotMatch
	}
	return first, nil
}

// spin shows a spinner on errOut while a slow derivation runs.
func (a *App) spin(msg string) func() {
	if !a.interactive {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(a.errOut))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}

// backupPath names a timestamped bundle in the backup directory.
func (a *App) backupPath(prefix string) string {
	name := fmt.Sprintf("%s-%s-%s.json", prefix, a.cfg.App.JournalID, time.Now().UTC().Format("20060102T150405Z"))
	return filepath.Join(a.cfg.Storage.Files.BackupDir, name)
}

func (a *App) printPhrase(phrase string) {
	fmt.Fprintln(a.out, "Recovery phrase. It is shown only this once; write it down and keep it offline:")
	color.New(color.FgYellow, color.Bold).Fprintln(a.out, "  "+phrase)
}

func (a *App) warn(msg string) {
	color.New(color.FgYellow).Fprintln(a.errOut, msg)
}
