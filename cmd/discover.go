package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mealsteals/dealworker/internal/venue"
)

var (
	discoverAddress  string
	discoverRadius   int
	discoverSuburb   string
	discoverPostcode string
	discoverLimit    int
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find pubs around an address and store them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		ctx, cancel := signalContext()
		defer cancel()

		services, err := initializeServices(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer services.Cleanup()

		svc, err := services.newVenueService()
		if err != nil {
			return err
		}

		radius := discoverRadius
		if radius <= 0 {
			radius = cfg.SearchRadiusMeters
		}
		res, err := svc.Search(ctx, discoverAddress, radius, venue.SearchFilter{
			Suburb:   discoverSuburb,
			Postcode: discoverPostcode,
			Limit:    discoverLimit,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverAddress, "address", "", "address to search around")
	discoverCmd.Flags().IntVar(&discoverRadius, "radius", 0, "search radius in meters (default SEARCH_RADIUS_METERS)")
	discoverCmd.Flags().StringVar(&discoverSuburb, "suburb", "", "keep venues whose suburb contains this")
	discoverCmd.Flags().StringVar(&discoverPostcode, "postcode", "", "keep venues with this postcode")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 0, "maximum venues to print")
	discoverCmd.MarkFlagRequired("address")
}
