package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newMigrateCmd creates the 'migrate' subcommand, which applies the schema.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Applies the database schema",
		Long:  `Applies the idempotent CREATE TABLE statements for shows, songs, and setlist entries.`,
		RunE:  runMigrateCommand,
	}
}

func runMigrateCommand(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	application, err := setup(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrate: %w", err)
	}
	application.Logger.Info("schema applied")
	return nil
}
