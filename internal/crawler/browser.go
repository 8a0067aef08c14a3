package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"mealsteals/dealworker/logger"
)

// BrowserConfig configures the headless Chrome session
type BrowserConfig struct {
	// RemoteURL is the DevTools WebSocket of an external Chrome. Empty launches one.
	RemoteURL string

	// NavigationTimeout bounds every Goto. Default: 30s.
	NavigationTimeout time.Duration
}

// BrowserRenderer drives one stealth Chrome tab through go-rod
type BrowserRenderer struct {
	cfg     BrowserConfig
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
	current string
	log     *logger.Logger
}

var _ PageRenderer = (*BrowserRenderer)(nil)

// NewBrowserRenderer launches or connects to Chrome and opens a stealth tab
func NewBrowserRenderer(cfg BrowserConfig) (*BrowserRenderer, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	r := &BrowserRenderer{cfg: cfg, log: logger.ForComponent("browser")}

	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled").
			Set("disable-gpu")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		r.lnch = l
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		r.Close()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	r.browser = b

	page, err := stealth.Page(b)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	r.page = page

	r.log.Info().Str("url", wsURL).Msg("Browser session ready")
	return r, nil
}

func (r *BrowserRenderer) Goto(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, r.cfg.NavigationTimeout)
	defer cancel()

	if err := r.page.Context(navCtx).Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := r.page.Context(navCtx).WaitLoad(); err != nil {
		return fmt.Errorf("browser: wait load %s: %w", url, err)
	}

	r.current = url
	if info, err := r.page.Info(); err == nil && info.URL != "" {
		r.current = info.URL
	}
	return nil
}

func (r *BrowserRenderer) CurrentURL() string { return r.current }

func (r *BrowserRenderer) CurrentHTML(ctx context.Context) (string, error) {
	res, err := r.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("browser: get DOM: %w", err)
	}
	return res.Value.Str(), nil
}

const linksScript = `(includeHidden) => JSON.stringify(
	Array.from(document.querySelectorAll('a[href]'))
		.filter(a => includeHidden || a.getClientRects().length > 0)
		.map(a => ({ href: a.getAttribute('href') || '', text: a.textContent || '' }))
)`

func (r *BrowserRenderer) EnumerateLinks(ctx context.Context, includeHidden bool) ([]Link, error) {
	res, err := r.page.Context(ctx).Eval(linksScript, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("browser: enumerate links: %w", err)
	}
	var links []Link
	if err := json.Unmarshal([]byte(res.Value.Str()), &links); err != nil {
		return nil, fmt.Errorf("browser: decode links: %w", err)
	}
	return links, nil
}

const imagesScript = `() => JSON.stringify({
	viewport: { width: window.innerWidth, height: window.innerHeight },
	images: Array.from(document.querySelectorAll('img'))
		.map(img => ({ src: img.src || '', width: img.width, height: img.height }))
})`

func (r *BrowserRenderer) Images(ctx context.Context) ([]Image, Viewport, error) {
	res, err := r.page.Context(ctx).Eval(imagesScript)
	if err != nil {
		return nil, Viewport{}, fmt.Errorf("browser: list images: %w", err)
	}
	var out struct {
		Viewport Viewport `json:"viewport"`
		Images   []Image  `json:"images"`
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), &out); err != nil {
		return nil, Viewport{}, fmt.Errorf("browser: decode images: %w", err)
	}
	return out.Images, out.Viewport, nil
}

// Close shuts the tab and Chrome
func (r *BrowserRenderer) Close() error {
	if r.page != nil {
		r.page.Close()
		r.page = nil
	}
	if r.browser != nil {
		r.browser.Close()
		r.browser = nil
	}
	if r.lnch != nil {
		r.lnch.Cleanup()
		r.lnch = nil
	}
	return nil
}
