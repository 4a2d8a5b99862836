// Package enricher walks the mission table row by row, scrapes each mission
// that still lacks facts and saves the table after every updated row.
package enricher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/mission-scraper/internal/infobox"
	"github.com/JakeFAU/mission-scraper/internal/metrics"
	"github.com/JakeFAU/mission-scraper/internal/mission"
	"github.com/JakeFAU/mission-scraper/internal/table"
	"github.com/JakeFAU/mission-scraper/internal/wiki"
)

// Resolver maps a mission name to an article.
type Resolver interface {
	Resolve(ctx context.Context, mission string) (wiki.Resolution, error)
}

// Extractor pulls infobox fields out of article markup.
type Extractor interface {
	Extract(markup string) (infobox.Fields, error)
}

// Saver persists the whole table.
type Saver interface {
	Save(t *table.Table) error
	Path() string
}

// Sleeper blocks between rows.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RowObserver records row outcomes.
type RowObserver interface {
	ObserveRow(outcome string)
}

// Config controls row selection and pacing.
type Config struct {
	// Force re-scrapes rows whose target fields are already populated.
	Force bool
	// Delay is slept after every attempted row.
	Delay time.Duration
	// Only restricts the run to rows whose mission cell equals one of these names.
	Only []string
}

// Summary reports what a run did.
type Summary struct {
	Total           int
	Selected        int
	Attempted       int
	Updated         int
	SkippedComplete int
	SkippedBlank    int
	NotFound        int
	Failed          int
	Output          string
	Interrupted     bool
}

// Enricher is the row driver. It is not safe for concurrent use.
type Enricher struct {
	cfg       Config
	resolver  Resolver
	extractor Extractor
	saver     Saver
	sleeper   Sleeper
	observer  RowObserver
	logger    *zap.Logger
}

// New wires an Enricher. observer and logger may be nil.
func New(
	cfg Config,
	resolver Resolver,
	extractor Extractor,
	saver Saver,
	sleeper Sleeper,
	observer RowObserver,
	logger *zap.Logger,
) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		cfg:       cfg,
		resolver:  resolver,
		extractor: extractor,
		saver:     saver,
		sleeper:   sleeper,
		observer:  observer,
		logger:    logger,
	}
}

// Run processes the selected rows of t in order. Per-row failures are logged
// and skipped; only the final save can fail the run. Context cancellation
// stops the loop early but the final save still happens.
func (e *Enricher) Run(ctx context.Context, t *table.Table) (Summary, error) {
	t.EnsureColumns(mission.RequiredColumns()...)

	rows := e.selectRows(t)
	summary := Summary{Total: t.Len(), Selected: len(rows), Output: e.saver.Path()}

	for _, i := range rows {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}
		name := strings.TrimSpace(t.Get(i, mission.ColumnMission))
		if name == "" {
			summary.SkippedBlank++
			e.observe(metrics.RowSkippedBlank)
			continue
		}
		if !mission.NeedsUpdate(t.Row(i), e.cfg.Force) {
			summary.SkippedComplete++
			e.observe(metrics.RowSkippedComplete)
			continue
		}

		summary.Attempted++
		e.logger.Info(fmt.Sprintf("[%d/%d] %s", i+1, t.Len(), name),
			zap.Int("row", i+1),
			zap.String("mission", name))
		e.processRow(ctx, t, i, name, &summary)

		if err := e.sleeper.Sleep(ctx, e.cfg.Delay); err != nil {
			summary.Interrupted = true
			break
		}
	}

	if summary.Interrupted {
		e.logger.Warn("Run interrupted; saving progress", zap.Int("updated", summary.Updated))
	}
	if err := e.saver.Save(t); err != nil {
		return summary, fmt.Errorf("final save: %w", err)
	}
	e.logger.Info(fmt.Sprintf("Done. Updated rows: %d. Wrote: %s", summary.Updated, summary.Output),
		zap.Int("updated", summary.Updated),
		zap.Int("not_found", summary.NotFound),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func (e *Enricher) processRow(ctx context.Context, t *table.Table, i int, name string, summary *Summary) {
	record, err := e.scrape(ctx, name)
	switch {
	case errors.Is(err, wiki.ErrNotFound):
		summary.NotFound++
		e.observe(metrics.RowNotFound)
		e.logger.Warn("  !! no mission page resolved", zap.String("mission", name))
		return
	case err != nil:
		summary.Failed++
		e.observe(metrics.RowFailed)
		e.logger.Error("  !! error", zap.String("mission", name), zap.Error(err))
		return
	}

	for column, value := range record.Columns() {
		t.Set(i, column, value)
	}
	summary.Updated++
	e.observe(metrics.RowUpdated)

	if err := e.saver.Save(t); err != nil {
		// The row stays merged in memory and goes out with the final save.
		e.logger.Error("  !! error", zap.String("mission", name), zap.Error(fmt.Errorf("save: %w", err)))
		return
	}
	e.logger.Info(fmt.Sprintf("  -> updated row %d and saved to %s", i+1, e.saver.Path()))
}

func (e *Enricher) scrape(ctx context.Context, name string) (mission.Record, error) {
	res, err := e.resolver.Resolve(ctx, name)
	if err != nil {
		return mission.Record{}, err
	}
	fields, err := e.extractor.Extract(res.Markup)
	if err != nil {
		return mission.Record{}, fmt.Errorf("extract %s: %w", res.URL, err)
	}
	return mission.Record{
		LaunchSite:  fields.LaunchSite,
		Destination: fields.Destination,
		LaunchDate:  fields.LaunchDate,
		Duration:    fields.Duration,
		LandingSite: fields.LandingSite,
		Rocket:      fields.Rocket,
		SourceURL:   res.URL,
	}, nil
}

// selectRows returns every row index, or only those whose mission cell is in
// the allow-list when one is configured.
func (e *Enricher) selectRows(t *table.Table) []int {
	allow := make(map[string]struct{}, len(e.cfg.Only))
	for _, name := range e.cfg.Only {
		if name = strings.TrimSpace(name); name != "" {
			allow[name] = struct{}{}
		}
	}

	rows := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if len(allow) > 0 {
			if _, ok := allow[t.Get(i, mission.ColumnMission)]; !ok {
				continue
			}
		}
		rows = append(rows, i)
	}
	return rows
}

func (e *Enricher) observe(outcome string) {
	if e.observer != nil {
		e.observer.ObserveRow(outcome)
	}
}
