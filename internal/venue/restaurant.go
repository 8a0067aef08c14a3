// Package venue owns restaurants: their discovery through a places service,
// address and timezone enrichment, and open-hours evaluation.
package venue

import (
	"context"
	"time"
)

// Restaurant is a stored venue
type Restaurant struct {
	ID            string     `json:"id"`
	ExternalID    string     `json:"external_id"`
	URL           string     `json:"url,omitempty"`
	Name          string     `json:"name"`
	VenueType     []string   `json:"venue_type"`
	OpenHours     []string   `json:"open_hours"`
	StreetAddress string     `json:"street_address,omitempty"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	Suburb        string     `json:"suburb,omitempty"`
	State         string     `json:"state,omitempty"`
	Postcode      string     `json:"postcode,omitempty"`
	Country       string     `json:"country,omitempty"`
	Timezone      string     `json:"timezone,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	IsDeleted     bool       `json:"is_deleted"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// IsOpenNow evaluates the stored hours in the venue's own timezone
func (r Restaurant) IsOpenNow() bool {
	return IsOpenNow(r.OpenHours, r.Timezone)
}

// Place is a venue as reported by the places service
type Place struct {
	ExternalID    string
	Name          string
	URL           string
	Types         []string
	OpenHours     []string
	StreetAddress string
	Latitude      float64
	Longitude     float64
}

// PlacesFinder finds candidate venues around an address
type PlacesFinder interface {
	FindVenues(ctx context.Context, address string, radiusMeters int) ([]Place, error)
}

// TimezoneResolver maps coordinates to an IANA zone name, "" when unknown
type TimezoneResolver interface {
	TimezoneAt(latitude, longitude float64) string
}

// ListFilter narrows stored restaurants
type ListFilter struct {
	// Suburb is a case-insensitive substring match
	Suburb string
	// Postcode must match exactly
	Postcode string
	// WithURL keeps only venues that have a website
	WithURL bool
	Limit   int
}

// Store persists restaurants
type Store interface {
	GetByID(ctx context.Context, id string) (*Restaurant, error)
	GetByExternalID(ctx context.Context, externalID string) (*Restaurant, error)
	// Save inserts or replaces the row with r.ID
	Save(ctx context.Context, r Restaurant) error
	List(ctx context.Context, filter ListFilter) ([]Restaurant, error)
}
