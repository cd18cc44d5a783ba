package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/liveatlas/setlist-crawler/internal/metrics"
)

// ErrBadStatus marks a fetch that completed with a non-success status code.
var ErrBadStatus = errors.New("bad response status")

// FetcherConfig controls collector behavior.
type FetcherConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// CollyFetcher implements Fetcher using the Colly collector.
type CollyFetcher struct {
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based Fetcher.
func NewCollyFetcher(cfg FetcherConfig, logger *zap.Logger) (*CollyFetcher, error) {
	opts := []colly.CollectorOption{}
	if cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(cfg.UserAgent))
	}
	base := colly.NewCollector(opts...)
	base.AllowURLRevisit = true
	base.IgnoreRobotsTxt = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	base.SetRequestTimeout(timeout)

	return &CollyFetcher{
		baseCollector: base,
		logger:        logger,
	}, nil
}

// Fetch retrieves a page via the configured Colly collector. A transport
// failure or non-success status is returned as an error.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	collector := f.baseCollector.Clone()

	var (
		page     Page
		fetchErr error
		gotPage  bool
	)

	collector.OnResponse(func(r *colly.Response) {
		page = Page{
			URL:        rawURL,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte{}, r.Body...),
		}
		gotPage = true
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("fetch %s: status %d: %w", rawURL, r.StatusCode, ErrBadStatus)
			return
		}
		if err == nil {
			err = errors.New("unknown colly error")
		}
		fetchErr = fmt.Errorf("fetch %s: %w", rawURL, err)
	})

	// In sync mode Visit surfaces the same failure OnError saw; prefer the
	// classified error when both are present.
	if err := collector.Visit(rawURL); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if fetchErr != nil {
		metrics.PagesFetched.WithLabelValues("error").Inc()
		return Page{}, fetchErr
	}
	if !gotPage {
		metrics.PagesFetched.WithLabelValues("error").Inc()
		return Page{}, fmt.Errorf("fetch %s: no response received", rawURL)
	}

	f.logger.Debug("page fetched",
		zap.String("url", rawURL),
		zap.Int("status", page.StatusCode),
		zap.Int("bytes", len(page.Body)),
	)
	metrics.PagesFetched.WithLabelValues("ok").Inc()
	return page, nil
}
