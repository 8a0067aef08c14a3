package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mealsteals/dealworker/config"
	"mealsteals/dealworker/logger"
)

var rootCmd = &cobra.Command{
	Use:   "dealworker",
	Short: "Finds pubs, scrapes their specials pages and keeps their deals current",
	Long: `dealworker discovers venues through Google Places, crawls each venue's
website for specials pages, extracts structured deals with a language model
and reconciles them against the deals already stored in Postgres.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(workerCmd, scrapeCmd, discoverCmd, serveCmd)
}

// Execute runs the command named on the command line
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func loadConfig() *config.Config {
	cfg := config.LoadConfig()
	logger.Default.Info().
		Str("environment", cfg.Environment).
		Str("renderer", cfg.Renderer).
		Str("publisher", cfg.Publisher).
		Msg("Configuration loaded")
	return cfg
}
