package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mealsteals/dealworker/internal/api"
	"mealsteals/dealworker/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the venue and deal API",
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

		q, err := services.newQueue(ctx, "api")
		if err != nil {
			return err
		}

		var searcher api.Searcher
		if svc, err := services.newVenueService(); err != nil {
			log.Warn().Err(err).Msg("Venue search disabled")
		} else {
			searcher = svc
		}

		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewServer(services.Restaurants, services.Deals, searcher, q, cfg.SearchRadiusMeters).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case <-ctx.Done():
			log.Info().Msg("Shutting down gracefully...")
		case err := <-errCh:
			return err
		}

		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	},
}
