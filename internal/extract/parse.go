package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"mealsteals/dealworker/internal/days"
	"mealsteals/dealworker/internal/deals"
)

// rawDeal is one object as the model returned it. Fields stay untyped
// because the model is free to send strings, numbers, lists or null.
type rawDeal struct {
	Dish      interface{} `json:"dish"`
	Price     interface{} `json:"price"`
	DayOfWeek interface{} `json:"day_of_week"`
	Notes     interface{} `json:"notes"`
}

func (r rawDeal) complete() bool {
	return r.Dish != nil && r.Price != nil && r.DayOfWeek != nil
}

// parseOutput accepts a single object or a list of objects. Prose or code
// fences around the JSON are tolerated; anything else is malformed.
func parseOutput(text string) ([]rawDeal, bool) {
	if out, ok := decodeDeals(text); ok {
		return out, true
	}
	if inner, ok := jsonSpan(text); ok {
		return decodeDeals(inner)
	}
	return nil, false
}

func decodeDeals(text string) ([]rawDeal, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}

	switch t := v.(type) {
	case map[string]interface{}:
		return []rawDeal{fromMap(t)}, true
	case []interface{}:
		out := make([]rawDeal, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, fromMap(m))
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func fromMap(m map[string]interface{}) rawDeal {
	return rawDeal{
		Dish:      m["dish"],
		Price:     m["price"],
		DayOfWeek: m["day_of_week"],
		Notes:     m["notes"],
	}
}

func jsonSpan(text string) (string, bool) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", false
	}
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	end := bytes.LastIndexByte([]byte(text), closer)
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// toCandidate normalizes one model object
func toCandidate(r rawDeal) deals.Candidate {
	return deals.Candidate{
		Dish:  stringField(r.Dish),
		Price: ParsePrice(r.Price),
		Days:  days.Normalize(r.DayOfWeek),
		Notes: stringField(r.Notes),
	}
}

func stringField(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

var nullPrices = map[string]bool{"": true, "null": true, "none": true, "n/a": true}

// ParsePrice turns "$1,234.5", 12 or "n/a" into a 2dp decimal or null
func ParsePrice(v interface{}) decimal.NullDecimal {
	var s string
	switch t := v.(type) {
	case nil:
		return decimal.NullDecimal{}
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = fmt.Sprintf("%v", t)
	default:
		return decimal.NullDecimal{}
	}

	s = strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	if nullPrices[strings.ToLower(s)] {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.RoundBank(2))
}
