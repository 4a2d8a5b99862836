package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/mission-scraper/internal/mission"
	"github.com/JakeFAU/mission-scraper/internal/wiki"
)

// newResolveCmd creates the 'resolve' subcommand, a dry run of the lookup for
// individual missions that prints what a scrape would write.
func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve MISSION [MISSION...]",
		Short: "Look up missions without touching any table",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runResolveCommand,
	}
}

func runResolveCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
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

	for _, name := range args {
		res, err := a.Resolver().Resolve(cmd.Context(), name)
		if errors.Is(err, wiki.ErrNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{mission.ColumnMission, name},
				[][]string{{"Result", wiki.ErrNotFound.Error()}},
				nil))
			continue
		}
		if err != nil {
			return fmt.Errorf("resolve %q: %w", name, err)
		}

		fields, err := a.Extractor().Extract(res.Markup)
		if err != nil {
			return fmt.Errorf("extract %q: %w", name, err)
		}
		rows := [][]string{
			{"Article", res.Title},
			{mission.ColumnLaunchSite, fields.LaunchSite},
			{mission.ColumnDestination, fields.Destination},
			{mission.ColumnLaunchDate, fields.LaunchDate},
			{mission.ColumnDuration, fields.Duration},
			{mission.ColumnLandingSite, fields.LandingSite},
			{mission.ColumnRocket, fields.Rocket},
			{mission.ColumnSourceURL, res.URL},
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{mission.ColumnMission, name}, rows, nil))
	}
	return nil
}
