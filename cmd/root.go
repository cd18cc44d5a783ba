// Package cmd defines the CLI commands for the setlist-crawler executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/liveatlas/setlist-crawler/internal/app"
	"github.com/liveatlas/setlist-crawler/internal/config"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setlist-crawler",
		Short: "Scrapes a performance-history site into a relational setlist record",
		Long: `setlist-crawler keeps a relational record of live performances and
their setlists. It scrapes the source site's performance-history pages,
normalizes dates, resolves song identities through a write-through cache,
and performs idempotent batch upserts into Postgres. The stored record can
be snapshotted to compact JSON documents for downstream consumption.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}

// setup loads config and builds the application container for a subcommand.
func setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(ctx, cfg)
}

// signalContext derives a context canceled on SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
