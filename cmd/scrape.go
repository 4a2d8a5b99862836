package cmd

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/mission-scraper/internal/enricher"
	"github.com/JakeFAU/mission-scraper/internal/table"
)

// newScrapeCmd creates the 'scrape' subcommand, which enriches a mission table in place.
func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Enrich the mission table from Wikipedia",
		Long: `Walks every row of the mission table, skipping rows whose six facts are
already filled in (unless --force), resolves each remaining mission to its
Wikipedia article and writes the infobox facts back. The output file is
rewritten after every updated row, so an interrupted run keeps its progress.`,
		Args: cobra.NoArgs,
		RunE: runScrapeCommand,
	}

	flags := cmd.Flags()
	flags.String("csv", "", "mission table to read (.csv or .xlsx)")
	flags.String("out", "", "where to write the enriched table (default: overwrite --csv)")
	flags.Bool("force", false, "re-scrape rows that are already complete")
	flags.Float64("sleep", 1.0, "seconds to wait after each attempted row")
	flags.String("only", "", "comma separated mission names to process")
	flags.String("metrics-file", "", "write Prometheus metrics in textfile format to this path")
	return cmd
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := startApp(cfg)
	if err != nil {
		return err
	}
	logger := a.Logger()
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("Failed to close application", zap.Error(cerr))
		}
	}()

	out := cfg.OutputPath()
	lock, err := table.Acquire(out)
	if err != nil {
		return fmt.Errorf("lock %s: %w", out, err)
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			logger.Warn("Failed to release lock", zap.String("path", out), zap.Error(rerr))
		}
	}()

	tbl, err := table.Load(cfg.Input)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Input, err)
	}
	logger.Info("Scrape starting",
		zap.String("input", cfg.Input),
		zap.String("output", out),
		zap.Int("rows", tbl.Len()),
		zap.Bool("force", cfg.Run.Force),
		zap.Strings("only", cfg.Run.Only),
		zap.Duration("sleep", cfg.Sleep()))

	summary, err := a.Enricher(table.NewFile(out)).Run(cmd.Context(), tbl)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
	return nil
}

func renderSummary(s enricher.Summary) string {
	rows := [][]string{
		{"Rows", strconv.Itoa(s.Total)},
		{"Selected", strconv.Itoa(s.Selected)},
		{"Attempted", strconv.Itoa(s.Attempted)},
		{"Updated", strconv.Itoa(s.Updated)},
		{"Not found", strconv.Itoa(s.NotFound)},
		{"Failed", strconv.Itoa(s.Failed)},
		{"Skipped (complete)", strconv.Itoa(s.SkippedComplete)},
		{"Skipped (blank)", strconv.Itoa(s.SkippedBlank)},
	}
	if s.Interrupted {
		rows = append(rows, []string{"Interrupted", "yes"})
	}
	rows = append(rows, []string{"Output", s.Output})
	return renderTable([]string{"Summary", "Value"}, rows, []text.Align{text.AlignLeft, text.AlignRight})
}
