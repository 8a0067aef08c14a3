package venue

import (
	"fmt"

	"github.com/ringsaturn/tzf"
)

// TZFinder resolves timezones from the bundled tzf boundary data
type TZFinder struct {
	finder tzf.F
}

var _ TimezoneResolver = (*TZFinder)(nil)

// NewTZFinder loads the default timezone boundaries
func NewTZFinder() (*TZFinder, error) {
	f, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("load timezone boundaries: %w", err)
	}
	return &TZFinder{finder: f}, nil
}

// TimezoneAt returns the IANA zone containing the point
func (t *TZFinder) TimezoneAt(latitude, longitude float64) string {
	if latitude == 0 && longitude == 0 {
		return ""
	}
	return t.finder.GetTimezoneName(longitude, latitude)
}
