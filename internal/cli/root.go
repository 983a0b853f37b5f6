// Package cli implements genbotctl, the operator command line for schema
// migrations, demo data and user accounts.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/simp-lee/genbot/internal/config"
)

// PasswordReader prompts on out and reads a password without echoing it.
type PasswordReader func(prompt string, out io.Writer) (string, error)

// TerminalPassword reads a password from the controlling terminal.
func TerminalPassword(prompt string, out io.Writer) (string, error) {
	fmt.Fprint(out, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

type rootOptions struct {
	configPath   string
	readPassword PasswordReader
}

// NewRootCommand builds the genbotctl command tree. A nil readPassword uses
// TerminalPassword.
func NewRootCommand(readPassword PasswordReader) *cobra.Command {
	if readPassword == nil {
		readPassword = TerminalPassword
	}
	opts := &rootOptions{readPassword: readPassword}

	root := &cobra.Command{
		Use:           "genbotctl",
		Short:         "Operate a genbot deployment",
		Long:          "genbotctl migrates the database schema, seeds demo data and manages user accounts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to configuration file")

	root.AddCommand(
		newMigrateCommand(opts),
		newSeedCommand(opts),
		newUsersCommand(opts),
	)
	return root
}

// Execute runs the command tree against the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand(nil).ExecuteContext(ctx)
}

// withDB loads the configuration, opens the database and runs fn. The
// logger and the connection are closed when fn returns.
func (o *rootOptions) withDB(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = log.Close() }()

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return fmt.Errorf("setup database: %w", err)
	}
	defer config.CloseDatabase(db)

	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, db)
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDB(cmd.Context(), func(_ context.Context, db *gorm.DB) error {
				if err := config.Migrate(db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
				return nil
			})
		},
	}
}
