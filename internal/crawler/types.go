package crawler

import "context"

// LinkType says whether a candidate points at a page or at an image file
type LinkType string

const (
	LinkTypeText  LinkType = "text"
	LinkTypeImage LinkType = "image"
)

// Link is an anchor as seen on a rendered page
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Image is an <img> with its rendered size in CSS pixels
type Image struct {
	Src    string  `json:"src"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Viewport is the rendered window size in CSS pixels
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Candidate is a page or image that may describe a deal. Only lives for one crawl.
type Candidate struct {
	URL       string   `json:"url"`
	LinkType  LinkType `json:"link_type"`
	LinkText  string   `json:"link_text"`
	ImageLink string   `json:"image_link,omitempty"`
}

// PageRenderer is a single stateful browsing session. It is not safe for
// concurrent use; one worker owns one renderer.
type PageRenderer interface {
	// Goto loads url and makes it the current page
	Goto(ctx context.Context, url string) error

	// CurrentURL is the URL of the current page after redirects
	CurrentURL() string

	// CurrentHTML returns the serialized DOM of the current page
	CurrentHTML(ctx context.Context) (string, error)

	// EnumerateLinks lists anchors with an href, optionally including hidden ones
	EnumerateLinks(ctx context.Context, includeHidden bool) ([]Link, error)

	// Images lists the page's images with the viewport they were laid out in
	Images(ctx context.Context) ([]Image, Viewport, error)

	// Close releases the session
	Close() error
}
