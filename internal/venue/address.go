package venue

import (
	"regexp"
	"strings"
)

// Address holds the components parsed out of a formatted street address
type Address struct {
	Suburb   string
	State    string
	Postcode string
	Country  string
}

var (
	auStates = []string{"NSW", "VIC", "QLD", "SA", "WA", "TAS", "NT", "ACT"}
	auCities = []string{
		"SYDNEY", "MELBOURNE", "BRISBANE", "PERTH", "ADELAIDE", "CANBERRA", "DARWIN",
		"HOBART", "GOLD COAST", "NEWCASTLE", "WOLLONGONG", "GEELONG", "TOWNSVILLE", "CAIRNS",
	}

	auStatePostcode = regexp.MustCompile(`\b(NSW|VIC|QLD|SA|WA|TAS|NT|ACT)\s+\d{4}\b`)
	auLocation      = regexp.MustCompile(`^(.+?)\s+([A-Z]{2,3})\s+(\d{4})$`)
	auStateOnly     = regexp.MustCompile(`^([A-Z]{2,3})\s+(\d{4})$`)
	allDigits       = regexp.MustCompile(`^\d+$`)
)

// IsAustralianAddress reports whether addr looks like an Australian address
func IsAustralianAddress(addr string) bool {
	upper := strings.ToUpper(addr)
	if strings.Contains(upper, "AUSTRALIA") || auStatePostcode.MatchString(upper) {
		return true
	}
	for _, city := range auCities {
		if strings.Contains(upper, city) {
			return true
		}
	}
	return false
}

// ParseStreetAddress splits a Google-formatted Australian address such as
// "29 Stanley St, South Brisbane QLD 4101, Australia". Other addresses
// yield an empty Address.
func ParseStreetAddress(addr string) Address {
	var out Address
	if !IsAustralianAddress(addr) {
		return out
	}

	parts := strings.Split(addr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch {
	case len(parts) < 2:
		return out
	case len(parts) == 2:
		out.parseLocation(parts[1])
		if out.Country == "" && isAUState(out.State) {
			out.Country = "Australia"
		}
	case len(parts) == 3:
		out.parseLocation(parts[1])
		out.Country = parts[2]
	default:
		out.Suburb = parts[1]
		if m := auStateOnly.FindStringSubmatch(parts[2]); m != nil {
			out.State, out.Postcode = m[1], m[2]
		} else if fields := strings.Fields(parts[2]); len(fields) >= 2 && allDigits.MatchString(fields[len(fields)-1]) {
			out.State = strings.Join(fields[:len(fields)-1], " ")
			out.Postcode = fields[len(fields)-1]
		} else {
			out.State = parts[2]
		}
		out.Country = parts[3]
	}
	return out
}

// parseLocation reads "<suburb> <STATE> <postcode>", falling back to the
// whole string as suburb
func (a *Address) parseLocation(location string) {
	if m := auLocation.FindStringSubmatch(location); m != nil {
		a.Suburb = strings.TrimSpace(m[1])
		a.State = m[2]
		a.Postcode = m[3]
		return
	}
	a.Suburb = location
}

func isAUState(s string) bool {
	for _, st := range auStates {
		if st == s {
			return true
		}
	}
	return false
}
