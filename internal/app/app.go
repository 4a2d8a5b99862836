// Package app initializes and holds the long-lived scraping services, acting
// as a dependency injection container for the CLI commands.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/mission-scraper/internal/clock/system"
	"github.com/JakeFAU/mission-scraper/internal/config"
	"github.com/JakeFAU/mission-scraper/internal/enricher"
	"github.com/JakeFAU/mission-scraper/internal/id/uuid"
	"github.com/JakeFAU/mission-scraper/internal/infobox"
	"github.com/JakeFAU/mission-scraper/internal/metrics"
	"github.com/JakeFAU/mission-scraper/internal/mission"
	"github.com/JakeFAU/mission-scraper/internal/policy/ratelimit"
	"github.com/JakeFAU/mission-scraper/internal/wiki"
)

// App holds the services shared by a single CLI invocation.
type App struct {
	cfg       config.Config
	runID     string
	logger    *zap.Logger
	metrics   *metrics.Recorder
	resolver  *wiki.Resolver
	extractor *infobox.Extractor
	clock     *system.Clock
}

// New wires the fetcher, resolver and extractor from cfg. The returned App's
// logger carries a run_id field.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID, err := uuid.New().NewID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	logger = logger.With(zap.String("run_id", runID))

	recorder := metrics.New()
	limiter := ratelimit.New(ratelimit.Config{DefaultRPS: cfg.HTTP.MaxRPS, DefaultBurst: 1}, recorder)
	fetcher := wiki.NewFetcher(wiki.FetcherConfig{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.Timeout(),
	}, limiter, recorder)

	matcher := mission.NewMatcher()
	searcher := wiki.NewSearcher(wiki.SearchConfig{
		APIURL:    cfg.Wiki.APIURL,
		Limit:     cfg.Search.Limit,
		Blocklist: cfg.Search.Blocklist,
	}, fetcher, matcher)
	resolver := wiki.NewResolver(wiki.ResolverConfig{
		BaseURL:      cfg.Wiki.BaseURL,
		MinBodyBytes: cfg.HTTP.MinBodyBytes,
	}, fetcher, matcher, searcher, logger)

	extractor := infobox.New(infobox.Config{
		MaxRows:          cfg.Infobox.MaxRows,
		FacilityKeywords: cfg.Infobox.FacilityKeywords,
	})

	logger.Debug("Application services initialized",
		zap.String("base_url", cfg.Wiki.BaseURL),
		zap.String("api_url", cfg.Wiki.APIURL),
		zap.Float64("max_rps", cfg.HTTP.MaxRPS))

	return &App{
		cfg:       cfg,
		runID:     runID,
		logger:    logger,
		metrics:   recorder,
		resolver:  resolver,
		extractor: extractor,
		clock:     system.New(),
	}, nil
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// RunID identifies this invocation in logs.
func (a *App) RunID() string {
	return a.runID
}

// Logger returns the run-scoped logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Metrics returns the run's metrics recorder.
func (a *App) Metrics() *metrics.Recorder {
	return a.metrics
}

// Resolver returns the mission-to-article resolver.
func (a *App) Resolver() enricher.Resolver {
	return a.resolver
}

// Extractor returns the infobox extractor.
func (a *App) Extractor() enricher.Extractor {
	return a.extractor
}

// Enricher builds the row driver persisting through saver.
func (a *App) Enricher(saver enricher.Saver) *enricher.Enricher {
	return enricher.New(enricher.Config{
		Force: a.cfg.Run.Force,
		Delay: a.cfg.Sleep(),
		Only:  a.cfg.Run.Only,
	}, a.resolver, a.extractor, saver, a.clock, a.metrics, a.logger)
}

// Close flushes the metrics textfile when one is configured and syncs the logger.
func (a *App) Close() error {
	var err error
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err = a.metrics.WriteTextfile(path); err == nil {
			a.logger.Debug("Metrics written", zap.String("path", path))
		}
	}
	_ = a.logger.Sync()
	return err
}
