package crawler

import "strings"

// Link text that suggests a navigation entry into a specials section
var dealPageKeywords = []string{
	"special", "specials",
	"deal", "deals",
	"promotion", "promotions",
	"offer", "offers",
	"happy hour",
	"weekly", "daily",
	"discount",
	"featured",
	"what",
	"restaurant",
}

// Stronger signal required once inside a plausible specials section
var dealSpecificKeywords = []string{
	"special", "specials",
	"deal", "deals",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"daily",
	"wings", "parm", "steak", "pizza", "roast",
}

var dealSpecificBlacklist = []string{"steakhouse"}

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "webp": true, "tiff": true, "svg": true,
}

var skippedHrefs = []string{"facebook.com", "instagram.com", "twitter.com", "mailto"}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func isSkippedHref(href string) bool {
	return href == "" || containsAny(href, skippedHrefs)
}
