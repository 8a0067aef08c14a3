package venue

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"mealsteals/dealworker/logger"
	"mealsteals/dealworker/pkg/errors"
)

const defaultSearchLimit = 100

// SearchFilter narrows the venues returned by Search
type SearchFilter struct {
	Suburb   string
	Postcode string
	// IsOpenNow, when set, keeps only venues whose open state equals it
	IsOpenNow *bool
	Limit     int
}

// SearchResult lists the matching venues and how many rows the search wrote
type SearchResult struct {
	Restaurants []Restaurant `json:"restaurants"`
	Created     int          `json:"restaurants_created"`
	Updated     int          `json:"restaurants_updated"`
}

// Service upserts venues found by the places service
type Service struct {
	Store     Store
	Places    PlacesFinder
	Timezones TimezoneResolver
	Now       func() time.Time
	NewID     func() string
}

// NewService wires a service with the wall clock and random ids
func NewService(store Store, places PlacesFinder, tz TimezoneResolver) *Service {
	return &Service{
		Store:     store,
		Places:    places,
		Timezones: tz,
		Now:       time.Now,
		NewID:     uuid.NewString,
	}
}

// UpsertFromPlace creates or refreshes the venue with the place's external id.
// The timezone is only computed when the venue is first created.
func (s *Service) UpsertFromPlace(ctx context.Context, p Place) (Restaurant, bool, error) {
	addr := ParseStreetAddress(p.StreetAddress)
	now := s.Now().UTC()

	existing, err := s.Store.GetByExternalID(ctx, p.ExternalID)
	switch {
	case err == nil:
		r := *existing
		r.apply(p, addr)
		r.UpdatedAt = &now
		if err := s.Store.Save(ctx, r); err != nil {
			return Restaurant{}, false, err
		}
		return r, false, nil
	case !stderrors.Is(err, errors.ErrNotFound):
		return Restaurant{}, false, err
	}

	r := Restaurant{ID: s.NewID(), ExternalID: p.ExternalID, CreatedAt: now}
	r.apply(p, addr)
	if s.Timezones != nil {
		r.Timezone = s.Timezones.TimezoneAt(p.Latitude, p.Longitude)
	}
	if err := s.Store.Save(ctx, r); err != nil {
		return Restaurant{}, false, err
	}
	return r, true, nil
}

func (r *Restaurant) apply(p Place, addr Address) {
	r.Name = p.Name
	r.URL = p.URL
	r.VenueType = p.Types
	r.OpenHours = p.OpenHours
	r.StreetAddress = p.StreetAddress
	r.Latitude = p.Latitude
	r.Longitude = p.Longitude
	r.Suburb = addr.Suburb
	r.State = addr.State
	r.Postcode = addr.Postcode
	r.Country = addr.Country
}

// Search finds venues around address, upserts each of them and returns the
// ones passing filter in the order the places service reported them.
// A venue that fails to upsert is skipped.
func (s *Service) Search(ctx context.Context, address string, radiusMeters int, filter SearchFilter) (*SearchResult, error) {
	if address == "" {
		return nil, errors.NewValidation("", "address is required")
	}
	log := logger.ForComponent("venue")

	places, err := s.Places.FindVenues(ctx, address, radiusMeters)
	if err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	listFilter := ListFilter{Suburb: filter.Suburb, Postcode: filter.Postcode}
	now := s.Now()

	result := &SearchResult{Restaurants: []Restaurant{}}
	for _, p := range places {
		r, created, err := s.UpsertFromPlace(ctx, p)
		if err != nil {
			log.Error().Err(err).Str("external_id", p.ExternalID).Str("name", p.Name).
				Msg("Failed to upsert venue")
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}

		if len(result.Restaurants) >= limit || !listFilter.matches(r) {
			continue
		}
		if filter.IsOpenNow != nil && IsOpenAt(r.OpenHours, r.Timezone, now) != *filter.IsOpenNow {
			continue
		}
		result.Restaurants = append(result.Restaurants, r)
	}

	log.Info().Str("address", address).Int("created", result.Created).Int("updated", result.Updated).
		Int("returned", len(result.Restaurants)).Msg("Venue search completed")
	return result, nil
}
