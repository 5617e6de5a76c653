package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-journal-vault/internal/app"
)

const sessionHelp = `commands:
  write <text>   encrypt and store an entry
  read <id>      decrypt an entry
  list           list entries
  delete <id>    delete an entry
  lock           lock the session now
  unlock         unlock with the secret
  status         show the session state
  exit           lock and quit`

// sessionCommand keeps one session unlocked across several operations. The
// session watcher locks it after the configured idle time.
func (a *App) sessionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Work with an unlocked journal until idle timeout or exit",
		Args:  cobra.NoArgs,
		RunE: a.runE(true, func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.unlock(ctx); err != nil {
				return err
			}

			timeout := a.cfg.Crypto.SessionTimeout
			a.services.Watcher.Start(ctx, timeout)
			defer a.services.Watcher.Stop()

			if timeout > 0 {
				fmt.Fprintf(a.out, "Unlocked. The session locks after %s without activity. Type help for commands.\n", timeout)
			}
			return a.sessionLoop(ctx)
		}),
	}
}

func (a *App) sessionLoop(ctx context.Context) error {
	for {
		line, err := a.prompt.Line("journal> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)

		switch name {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprintln(a.out, sessionHelp)
		case "status":
			fmt.Fprintln(a.out, a.services.Crypto.State())
		case "lock":
			a.services.Crypto.Lock()
			fmt.Fprintln(a.out, "locked")
		case "unlock":
			a.sessionError(a.unlock(ctx))
		case "write":
			id, err := a.services.Journal.Write(ctx, arg)
			if a.sessionError(err) {
				fmt.Fprintln(a.out, id)
			}
		case "read":
			text, err := a.services.Journal.Read(ctx, arg)
			if a.sessionError(err) {
				fmt.Fprintln(a.out, text)
			}
		case "list":
			entries, err := a.services.Journal.List(ctx)
			if a.sessionError(err) {
				for _, e := range entries {
					fmt.Fprintf(a.out, "%s  %s\n", e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"))
				}
			}
		case "delete":
			if a.sessionError(a.services.Journal.Delete(ctx, arg)) {
				fmt.Fprintln(a.out, "deleted", arg)
			}
		default:
			fmt.Fprintf(a.out, "unknown command %q, type help\n", name)
		}
	}
}

// sessionError prints err and reports whether the operation succeeded.
func (a *App) sessionError(err error) bool {
	if err == nil {
		return true
	}
	a.logger.Err(err).Str("func", "*App.sessionLoop").Msg("session command failed")
	color.New(color.FgRed).Fprintln(a.errOut, "error: "+app.MessageFor(err))
	return false
}
