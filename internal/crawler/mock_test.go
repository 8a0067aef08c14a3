package crawler

import (
	"context"
	"fmt"
)

// fakePage is one page served by fakeRenderer
type fakePage struct {
	html   string
	links  []Link
	hidden []Link
	images []Image
	fail   bool
}

// fakeRenderer serves canned pages keyed by URL
type fakeRenderer struct {
	pages   map[string]fakePage
	current string
	visited []string
}

var _ PageRenderer = (*fakeRenderer)(nil)

func (f *fakeRenderer) Goto(ctx context.Context, url string) error {
	f.visited = append(f.visited, url)
	p, ok := f.pages[url]
	if !ok || p.fail {
		return fmt.Errorf("navigation to %s timed out", url)
	}
	f.current = url
	return nil
}

func (f *fakeRenderer) CurrentURL() string { return f.current }

func (f *fakeRenderer) CurrentHTML(ctx context.Context) (string, error) {
	return f.pages[f.current].html, nil
}

func (f *fakeRenderer) EnumerateLinks(ctx context.Context, includeHidden bool) ([]Link, error) {
	p := f.pages[f.current]
	links := append([]Link{}, p.links...)
	if includeHidden {
		links = append(links, p.hidden...)
	}
	return links, nil
}

func (f *fakeRenderer) Images(ctx context.Context) ([]Image, Viewport, error) {
	return f.pages[f.current].images, Viewport{Width: 1280, Height: 800}, nil
}

func (f *fakeRenderer) Close() error { return nil }
