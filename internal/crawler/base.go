package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mealsteals/dealworker/helpers"
	"mealsteals/dealworker/services/cache"
)

// DefaultViewport is the layout size assumed when no browser computes one
var DefaultViewport = Viewport{Width: 1280, Height: 800}

// HTTPRenderer renders pages without a browser: plain GET plus goquery.
// Hosts that rate limit us are blocked in the cache for BlockTime.
type HTTPRenderer struct {
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	Viewport  Viewport

	current string
	doc     *goquery.Document
}

var _ PageRenderer = (*HTTPRenderer)(nil)

// NewHTTPRenderer creates a static renderer
func NewHTTPRenderer(cacheSvc cache.CacheService, blockTime time.Duration) *HTTPRenderer {
	return &HTTPRenderer{CacheSvc: cacheSvc, BlockTime: blockTime, Viewport: DefaultViewport}
}

func blockKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return "ratelimit:" + strings.ToLower(u.Host)
}

// fetchWithCache fetches a URL unless its host is currently blocked
func (r *HTTPRenderer) fetchWithCache(ctx context.Context, target string) (*helpers.Page, error) {
	key := blockKey(target)
	if r.CacheSvc != nil && key != "" {
		if _, err := r.CacheSvc.Get(key); err == nil {
			return nil, fmt.Errorf("%s: not requesting for %d seconds", key, r.BlockTime/time.Second)
		}
	}

	page, err := helpers.FetchPage(ctx, target)
	if err != nil {
		if r.CacheSvc != nil && key != "" && errors.Is(err, helpers.ErrRateLimited) {
			r.CacheSvc.Set(key, []byte(strconv.Itoa(int(r.BlockTime/time.Second))), r.BlockTime)
		}
		return nil, err
	}
	return page, nil
}

func (r *HTTPRenderer) Goto(ctx context.Context, target string) error {
	page, err := r.fetchWithCache(ctx, target)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(page.Body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", target, err)
	}
	// relative links resolve against where redirects landed
	r.current = page.URL
	r.doc = doc
	return nil
}

func (r *HTTPRenderer) CurrentURL() string { return r.current }

func (r *HTTPRenderer) CurrentHTML(ctx context.Context) (string, error) {
	if r.doc == nil {
		return "", fmt.Errorf("no page loaded")
	}
	return goquery.OuterHtml(r.doc.Selection)
}

func (r *HTTPRenderer) EnumerateLinks(ctx context.Context, includeHidden bool) ([]Link, error) {
	if r.doc == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	var links []Link
	r.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if !includeHidden && isHidden(s) {
			return
		}
		href, _ := s.Attr("href")
		links = append(links, Link{Href: href, Text: s.Text()})
	})
	return links, nil
}

// Images reads sizes from width/height attributes; images without them
// have no known size and never qualify as the largest image.
func (r *HTTPRenderer) Images(ctx context.Context) ([]Image, Viewport, error) {
	if r.doc == nil {
		return nil, r.Viewport, fmt.Errorf("no page loaded")
	}
	var images []Image
	r.doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		images = append(images, Image{
			Src:    helpers.ResolveURL(r.current, src),
			Width:  dimension(s, "width"),
			Height: dimension(s, "height"),
		})
	})
	return images, r.Viewport, nil
}

func (r *HTTPRenderer) Close() error {
	r.doc = nil
	return nil
}

func dimension(s *goquery.Selection, attr string) float64 {
	v, ok := s.Attr(attr)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil {
		return 0
	}
	return f
}

func isHidden(s *goquery.Selection) bool {
	for sel := s; sel.Length() > 0; sel = sel.Parent() {
		if _, ok := sel.Attr("hidden"); ok {
			return true
		}
		if v, _ := sel.Attr("aria-hidden"); v == "true" {
			return true
		}
		style, _ := sel.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}
