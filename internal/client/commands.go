package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-journal-vault/internal/config"
	"github.com/MKhiriev/go-journal-vault/internal/recovery"
	"github.com/MKhiriev/go-journal-vault/internal/service"
)

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "journal",
		Short:         "End-to-end encrypted personal journal",
		Long:          "Entries are encrypted on this device with a key derived from your secret.\nStorage only ever receives ciphertext.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	a.flags.register(root)

	root.AddCommand(
		a.initCommand(),
		a.writeCommand(),
		a.readCommand(),
		a.listCommand(),
		a.deleteCommand(),
		a.exportCommand(),
		a.importCommand(),
		a.recoverCommand(),
		a.setupRecoveryCommand(),
		a.passwdCommand(),
		a.suggestCommand(),
		a.sessionCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *App) initCommand() *cobra.Command {
	var withRecovery, suggest bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up the journal with a new secret",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&withRecovery, "recovery", false, "also create a recovery phrase")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "show a generated passphrase you may use")

	cmd.RunE = a.runE(true, func(cmd *cobra.Command, _ []string) error {
		if suggest {
			phrase, err := recovery.GeneratePassphraseSuggestion(recovery.DefaultSuggestionWords)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Suggested passphrase:", phrase)
		}

		secret, err := a.newSecret("New secret: ")
		if err != nil {
			return err
		}

		stop := a.spin("Deriving key")
		profile, err := a.services.Journal.Enroll(cmd.Context(), secret)
		stop()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Journal %q is ready (%s).\n", profile.JournalID, profile.KeyContext.KDF.Name)

		if !withRecovery {
			a.warn("No recovery phrase was created. If you forget the secret, the entries are lost for good.\nRun `journal setup-recovery` to create one.")
			return nil
		}
		return a.enrollRecovery(cmd)
	})
	return cmd
}

func (a *App) enrollRecovery(cmd *cobra.Command) error {
	enrollment, err := a.services.Journal.EnrollRecovery(cmd.Context())
	if err != nil {
		return err
	}
	a.printPhrase(enrollment.Phrase)
	return nil
}

func (a *App) setupRecoveryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup-recovery",
		Short: "Create a new recovery phrase, replacing any previous one",
		Args:  cobra.NoArgs,
		RunE: a.runE(true, func(cmd *cobra.Command, _ []string) error {
			if err := a.unlock(cmd.Context()); err != nil {
				return err
			}
			return a.enrollRecovery(cmd)
		}),
	}
}

func (a *App) writeCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "write [text...]",
		Short: "Encrypt and store a new entry",
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the entry from a file")

	cmd.RunE = a.runE(true, func(cmd *cobra.Command, args []string) error {
		if err := a.unlock(cmd.Context()); err != nil {
			return err
		}

		text := strings.Join(args, " ")
		switch {
		case file != "":
			b, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read entry file: %w", err)
			}
			text = string(b)
		case len(args) == 0:
			line, err := a.prompt.Line("Entry: ")
			if err != nil {
				return err
			}
			text = line
		}

		id, err := a.services.Journal.Write(cmd.Context(), text)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, id)
		return nil
	})
	return cmd
}

func (a *App) readCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Decrypt and print an entry",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(true, func(cmd *cobra.Command, args []string) error {
			if err := a.unlock(cmd.Context()); err != nil {
				return err
			}
			text, err := a.services.Journal.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, text)
			return nil
		}),
	}
}

func (a *App) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entries without decrypting them",
		Args:  cobra.NoArgs,
		RunE: a.runE(true, func(cmd *cobra.Command, _ []string) error {
			entries, err := a.services.Journal.List(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSIZE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Size)
			}
			return tw.Flush()
		}),
	}
}

func (a *App) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(true, func(cmd *cobra.Command, args []string) error {
			if err := a.services.Journal.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "deleted", args[0])
			return nil
		}),
	}
}

func (a *App) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every entry to an authenticated backup file",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "backup file to write")
	_ = cmd.MarkFlagRequired("output")

	cmd.RunE = a.runE(true, func(cmd *cobra.Command, _ []string) error {
		path, err := filepath.Abs(output)
		if err != nil {
			return err
		}
		if err = a.unlock(cmd.Context()); err != nil {
			return err
		}

		count, err := a.services.Journal.ExportToFile(cmd.Context(), path)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Exported %d entries to %s\n", count, path)
		return nil
	})
	return cmd
}

func (a *App) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import entries from a backup file",
		Long:  "Import entries from a backup file. On a device without this journal the\nkey profile is restored from the backup first.",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(true, func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			_, err = a.services.Journal.LoadProfile(ctx)
			if errors.Is(err, service.ErrNoProfile) {
				if _, err = a.services.Journal.RestoreProfileFromBundle(ctx, path); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Journal profile restored from the backup.")
			} else if err != nil {
				return err
			}

			if err = a.unlock(ctx); err != nil {
				return err
			}
			report, err := a.services.Journal.ImportFromFile(ctx, path)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Imported %d entries, %d already present.\n", report.Imported, report.Duplicates)
			for _, issue := range report.Skipped {
				a.warn(fmt.Sprintf("entry %d skipped: not a valid envelope", issue.Index))
			}
			return nil
		}),
	}
}

func (a *App) recoverCommand() *cobra.Command {
	var withRecovery bool

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Unlock with the recovery phrase and choose a new secret",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&withRecovery, "recovery", false, "create a new recovery phrase afterwards")

	cmd.RunE = a.runE(true, func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if _, err := a.services.Journal.LoadProfile(ctx); err != nil {
			return err
		}
		phrase, err := a.prompt.Secret("Recovery phrase: ")
		if err != nil {
			return err
		}

		stop := a.spin("Checking recovery phrase")
		err = a.services.Crypto.UnlockWithRecovery(ctx, phrase)
		stop()
		if err != nil {
			return err
		}

		return a.changeSecret(cmd, withRecovery)
	})
	return cmd
}

func (a *App) passwdCommand() *cobra.Command {
	var withRecovery bool

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the secret and re-encrypt every entry",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&withRecovery, "recovery", false, "create a new recovery phrase afterwards")

	cmd.RunE = a.runE(true, func(cmd *cobra.Command, _ []string) error {
		if err := a.unlock(cmd.Context()); err != nil {
			return err
		}
		return a.changeSecret(cmd, withRecovery)
	})
	return cmd
}

// changeSecret re-encrypts the journal under a new secret. The previous
// recovery phrase stops working.
func (a *App) changeSecret(cmd *cobra.Command, withRecovery bool) error {
	secret, err := a.newSecret("New secret: ")
	if err != nil {
		return err
	}

	backup := a.backupPath("before-passwd")
	stop := a.spin("Re-encrypting entries")
	err = a.services.Journal.ChangeSecret(cmd.Context(), secret, backup)
	stop()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Secret changed. A backup under the previous secret was written to", backup)
	if !withRecovery {
		a.warn("The previous recovery phrase no longer works. Run `journal setup-recovery` to create a new one.")
		return nil
	}
	return a.enrollRecovery(cmd)
}

func (a *App) suggestCommand() *cobra.Command {
	var words int

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Print a randomly generated passphrase",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().IntVarP(&words, "words", "w", recovery.DefaultSuggestionWords, "number of words")

	cmd.RunE = a.runE(false, func(_ *cobra.Command, _ []string) error {
		phrase, err := recovery.GeneratePassphraseSuggestion(words)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, phrase)
		return nil
	})
	return cmd
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client and, for the remote backend, the server version",
		Args:  cobra.NoArgs,
		RunE: a.runE(true, func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.out, "client %s (%s, %s)\n", a.build.BuildVersion(), a.build.BuildCommit(), a.build.BuildDate())
			if a.cfg.Storage.Backend != config.BackendRemote {
				return nil
			}
			v, err := a.server.ServerVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "server %s\n", v)
			return nil
		}),
	}
}
