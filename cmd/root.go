// Package cmd defines and implements the CLI commands for the mission-scraper executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/mission-scraper/internal/app"
	"github.com/JakeFAU/mission-scraper/internal/config"
	"github.com/JakeFAU/mission-scraper/internal/logging"
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mission-scraper",
		Short: "Fills a spaceflight mission spreadsheet from Wikipedia infoboxes.",
		Long: `mission-scraper reads a table of crewed spaceflight missions, finds the
Wikipedia article for each mission and copies launch site, destination,
launch date, duration, landing site and rocket from the article's infobox
back into the table. Progress is saved after every updated row.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "optional config file (yaml, toml or json)")
	cmd.PersistentFlags().Bool("log-dev", false, "human-friendly console logs (default when stderr is a terminal)")

	cmd.AddCommand(newScrapeCmd(), newResolveCmd())
	return cmd
}

// Execute is the main entry point. SIGINT and SIGTERM cancel the command's
// context so a running scrape stops after the current row and saves.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	logger, lerr := logging.New(logging.DevelopmentDefault())
	if lerr != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Fatal("Command execution failed", zap.Error(err))
}

// loadConfig reads the --config file, the environment and cmd's flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("read --config: %w", err)
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// startApp builds the logger and the service container for cfg.
func startApp(cfg config.Config) (*app.App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application services: %w", err)
	}
	return a, nil
}
