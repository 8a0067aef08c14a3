package venue

import (
	"context"
	"fmt"
	"slices"

	"googlemaps.github.io/maps"

	"mealsteals/dealworker/logger"
	"mealsteals/dealworker/pkg/errors"
)

const venueQuery = "pub restaurants"

var detailFields = []maps.PlaceDetailsFieldMask{
	maps.PlaceDetailsFieldMaskPlaceID,
	maps.PlaceDetailsFieldMaskName,
	maps.PlaceDetailsFieldMaskWebsite,
	maps.PlaceDetailsFieldMaskOpeningHours,
	maps.PlaceDetailsFieldMaskFormattedAddress,
	maps.PlaceDetailsFieldMaskGeometry,
	maps.PlaceDetailsFieldMaskTypes,
}

// GooglePlaces finds pubs through the Google Maps Places API
type GooglePlaces struct {
	client *maps.Client
}

var _ PlacesFinder = (*GooglePlaces)(nil)

// NewGooglePlaces creates a client for apiKey
func NewGooglePlaces(apiKey string) (*GooglePlaces, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.NewConfiguration("create places client", err)
	}
	return &GooglePlaces{client: c}, nil
}

// FindVenues geocodes address, searches for pubs within radius and returns
// the bars that publish a website
func (g *GooglePlaces) FindVenues(ctx context.Context, address string, radiusMeters int) ([]Place, error) {
	log := logger.ForComponent("places")

	geo, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, errors.NewNavigation("", "geocode "+address, err)
	}
	if len(geo) == 0 {
		return nil, errors.NewNotFound("", fmt.Sprintf("address %q not found", address))
	}
	center := geo[0].Geometry.Location

	resp, err := g.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    venueQuery,
		Location: &center,
		Radius:   uint(radiusMeters),
	})
	if err != nil {
		return nil, errors.NewNavigation("", "text search", err)
	}

	var places []Place
	for _, r := range resp.Results {
		if !isPub(r.Types) {
			continue
		}
		details, err := g.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
			PlaceID: r.PlaceID,
			Fields:  detailFields,
		})
		if err != nil {
			log.Warn().Err(err).Str("place_id", r.PlaceID).Msg("Place details failed")
			continue
		}
		if details.Website == "" {
			continue
		}
		places = append(places, placeFromDetails(details))
	}

	log.Info().Str("address", address).Int("found", len(resp.Results)).Int("kept", len(places)).
		Msg("Places search completed")
	return places, nil
}

func isPub(types []string) bool {
	return slices.Contains(types, "bar") && !slices.Contains(types, "night_club")
}

func placeFromDetails(d maps.PlaceDetailsResult) Place {
	p := Place{
		ExternalID:    d.PlaceID,
		Name:          d.Name,
		URL:           d.Website,
		Types:         d.Types,
		StreetAddress: d.FormattedAddress,
		Latitude:      d.Geometry.Location.Lat,
		Longitude:     d.Geometry.Location.Lng,
	}
	if d.OpeningHours != nil {
		p.OpenHours = d.OpeningHours.WeekdayText
	}
	return p
}
