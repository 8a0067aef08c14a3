package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mealsteals/dealworker/logger"
	"mealsteals/dealworker/services/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume scrape jobs and schedule periodic rescrapes",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Default
		cfg := loadConfig()

		ctx, cancel := signalContext()
		defer cancel()

		services, err := initializeServices(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer services.Cleanup()

		p, err := services.newPipeline(ctx)
		if err != nil {
			return err
		}

		host, _ := os.Hostname()
		consumer := fmt.Sprintf("%s-%d", host, os.Getpid())
		q, err := services.newQueue(ctx, consumer)
		if err != nil {
			return err
		}

		w := worker.NewWorker(ctx, q, p, services.Restaurants, services.Publisher, services.Cache, cfg.CrawlInterval)

		log.Info().
			Str("consumer", consumer).
			Str("stream", cfg.QueueStream).
			Dur("crawl_interval", cfg.CrawlInterval).
			Msg("Starting deal worker")
		w.Start()

		log.Info().Msg("Shutting down gracefully...")
		return nil
	},
}
