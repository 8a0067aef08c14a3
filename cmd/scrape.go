package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	scrapeRestaurant string
	scrapeURL        string
	scrapeDryRun     bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape one restaurant now and print the reconciled deals",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		ctx, cancel := signalContext()
		defer cancel()

		var services *Services
		if scrapeDryRun {
			if scrapeURL == "" {
				return fmt.Errorf("--url is required with --dry-run")
			}
			services = inMemoryServices(cfg)
		} else {
			s, err := initializeServices(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			defer s.Cleanup()
			services = s
		}

		p, err := services.newPipeline(ctx)
		if err != nil {
			return err
		}
		res, err := p.RunScrape(ctx, scrapeRestaurant, scrapeURL)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeRestaurant, "restaurant", "", "restaurant id")
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "website to crawl (default: the stored venue website)")
	scrapeCmd.Flags().BoolVar(&scrapeDryRun, "dry-run", false, "reconcile against an empty in-memory store and write nothing")
	scrapeCmd.MarkFlagRequired("restaurant")
}
