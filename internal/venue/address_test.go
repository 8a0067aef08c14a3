package venue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStreetAddress(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want Address
	}{
		{
			name: "two parts infers country from state",
			addr: "29 Stanley St Plaza, South Brisbane QLD 4101",
			want: Address{Suburb: "South Brisbane", State: "QLD", Postcode: "4101", Country: "Australia"},
		},
		{
			name: "three parts",
			addr: "123 Eagle St, Brisbane City QLD 4000, Australia",
			want: Address{Suburb: "Brisbane City", State: "QLD", Postcode: "4000", Country: "Australia"},
		},
		{
			name: "three parts without pattern falls back to suburb",
			addr: "1 George St, Sydney, Australia",
			want: Address{Suburb: "Sydney", Country: "Australia"},
		},
		{
			name: "four parts",
			addr: "1 Main Rd, Fitzroy, VIC 3065, Australia",
			want: Address{Suburb: "Fitzroy", State: "VIC", Postcode: "3065", Country: "Australia"},
		},
		{
			name: "four parts with long state",
			addr: "1 Main Rd, Fitzroy, Victoria 3065, Australia",
			want: Address{Suburb: "Fitzroy", State: "Victoria", Postcode: "3065", Country: "Australia"},
		},
		{
			name: "not australian",
			addr: "1600 Amphitheatre Pkwy, Mountain View, CA 94043, USA",
			want: Address{},
		},
		{
			name: "single part",
			addr: "Melbourne",
			want: Address{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStreetAddress(tt.addr))
		})
	}
}

func TestIsAustralianAddress(t *testing.T) {
	assert.True(t, IsAustralianAddress("somewhere, australia"))
	assert.True(t, IsAustralianAddress("1 Smith St, Collingwood VIC 3066"))
	assert.True(t, IsAustralianAddress("Hobart"))
	assert.False(t, IsAustralianAddress("10 Downing St, London"))
}
