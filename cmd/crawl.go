package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/liveatlas/setlist-crawler/internal/api"
	"github.com/liveatlas/setlist-crawler/internal/crawl"
	"github.com/liveatlas/setlist-crawler/internal/scrape"
	"github.com/liveatlas/setlist-crawler/internal/store"
)

// newCrawlCmd creates the 'crawl' subcommand, which runs one full pass over
// the performance index.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Runs one crawl over the performance-history index",
		Long: `Fetches the performance-history index, then visits each show's
detail page in order, extracting its setlist and upserting shows, songs,
and associations. A fixed delay paces requests against the source site.`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	application, err := setup(ctx)
	if err != nil {
		return err
	}
	defer application.Close()
	cfg := application.Config
	logger := application.Logger

	fetcher, err := scrape.NewCollyFetcher(scrape.FetcherConfig{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.Crawler.Timeout(),
	}, logger)
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}
	client := scrape.NewClient(fetcher, cfg.Crawler.IndexURL, logger)

	cache, err := store.NewSongCache(ctx, application.Store)
	if err != nil {
		return err
	}
	logger.Info("song cache primed", zap.Int("songs", cache.Len()))

	if cfg.Server.Enabled {
		server := api.NewServer(cfg.Server.Port, logger)
		go func() {
			if err := server.Run(ctx); err != nil {
				logger.Warn("debug server stopped", zap.Error(err))
			}
		}()
	}

	engine := crawl.New(client, application.Store, cache, crawl.Config{
		Delay: cfg.Crawler.Delay(),
	}, logger)

	if err := engine.Run(ctx); err != nil {
		return fmt.Errorf("run crawl: %w", err)
	}
	return nil
}
