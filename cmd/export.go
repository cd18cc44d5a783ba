package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liveatlas/setlist-crawler/internal/export"
)

// newExportCmd creates the 'export' subcommand, which snapshots the stored
// record into compact JSON documents.
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Writes JSON snapshot documents of the stored record",
		Long: `Reads the show, song, and setlist tables and writes compact JSON
documents (shows, songs, performances, metadata) into the configured
output directory.`,
		RunE: runExportCommand,
	}
}

func runExportCommand(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	application, err := setup(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	exporter := export.New(application.Store, application.Config.Export.OutputDir, application.Logger)
	if err := exporter.Run(ctx); err != nil {
		return fmt.Errorf("run export: %w", err)
	}
	return nil
}
