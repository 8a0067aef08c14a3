package crawler

import (
	"context"
	"strings"

	"mealsteals/dealworker/helpers"
	"mealsteals/dealworker/logger"
	"mealsteals/dealworker/pkg/errors"
)

// Discoverer finds pages on a venue's site that are likely to list deals
type Discoverer struct {
	renderer PageRenderer
	log      *logger.Logger
}

// NewDiscoverer creates a discoverer driving the given session
func NewDiscoverer(renderer PageRenderer, log *logger.Logger) *Discoverer {
	if log == nil {
		log = logger.Nop()
	}
	return &Discoverer{renderer: renderer, log: log}
}

// Discover runs the two-pass link funnel from entryURL. Failing to load the
// entry page is fatal for the venue; failures on section pages are skipped.
func (d *Discoverer) Discover(ctx context.Context, entryURL string) ([]Candidate, error) {
	if err := d.renderer.Goto(ctx, entryURL); err != nil {
		return nil, errors.NewNavigation(entryURL, "entry page unreachable", err)
	}

	links, err := d.renderer.EnumerateLinks(ctx, false)
	if err != nil {
		return nil, errors.NewParsing(entryURL, "cannot enumerate entry page links", err)
	}

	sections := firstPass(d.renderer.CurrentURL(), links)
	d.log.Debug().Strs("sections", sections).Msg("First pass links")

	var candidates []Candidate
	seen := make(map[string]int)
	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := d.renderer.Goto(ctx, section); err != nil {
			d.log.Warn().Err(err).Str("url", section).Msg("Skipping unreachable section page")
			continue
		}
		links, err := d.renderer.EnumerateLinks(ctx, true)
		if err != nil {
			d.log.Warn().Err(err).Str("url", section).Msg("Skipping section page with unreadable links")
			continue
		}
		for _, c := range secondPass(d.renderer.CurrentURL(), links) {
			// later sightings replace earlier ones, keeping first position
			if i, ok := seen[c.URL]; ok {
				candidates[i] = c
				continue
			}
			seen[c.URL] = len(candidates)
			candidates = append(candidates, c)
		}
	}

	d.log.Debug().Int("candidates", len(candidates)).Msg("Second pass links")
	return candidates, nil
}

func firstPass(base string, links []Link) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range links {
		if isSkippedHref(l.Href) {
			continue
		}
		text := strings.ToLower(strings.TrimSpace(l.Text))
		if !containsAny(text, dealPageKeywords) {
			continue
		}
		u := helpers.ResolveURL(base, l.Href)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func secondPass(base string, links []Link) []Candidate {
	var out []Candidate
	for _, l := range links {
		if isSkippedHref(l.Href) {
			continue
		}
		c, ok := classify(base, l)
		if ok {
			out = append(out, c)
		}
	}
	return out
}

func classify(base string, l Link) (Candidate, bool) {
	text := strings.ToLower(strings.TrimSpace(l.Text))
	if containsAny(text, dealSpecificBlacklist) {
		return Candidate{}, false
	}

	u := helpers.ResolveURL(base, l.Href)
	if u == "" {
		return Candidate{}, false
	}

	linkType := LinkTypeText
	if imageExtensions[helpers.PathExtension(l.Href)] {
		linkType = LinkTypeImage
	}

	switch {
	case containsAny(text, dealSpecificKeywords):
		c := Candidate{URL: u, LinkType: linkType, LinkText: text}
		if linkType == LinkTypeImage {
			c.ImageLink = u
		}
		return c, true
	case linkType == LinkTypeImage && containsAny(strings.ToLower(l.Href), dealSpecificKeywords):
		return Candidate{URL: u, LinkType: linkType, LinkText: text, ImageLink: u}, true
	}
	return Candidate{}, false
}
