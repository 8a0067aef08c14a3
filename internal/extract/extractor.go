// Package extract turns a candidate deal page into structured deal
// candidates using a text model first and a vision model as fallback.
package extract

import (
	"context"
	"mime"
	"strings"

	"mealsteals/dealworker/helpers"
	"mealsteals/dealworker/internal/crawler"
	"mealsteals/dealworker/internal/deals"
	"mealsteals/dealworker/logger"
	"mealsteals/dealworker/pkg/errors"
)

// ImageFetcher downloads an image with its content type
type ImageFetcher func(ctx context.Context, url string) (*helpers.Response, error)

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

// Extraction is what one candidate page yielded
type Extraction struct {
	URL        string            `json:"url"`
	Text       string            `json:"text,omitempty"`
	ImageLink  string            `json:"image_link,omitempty"`
	Source     string            `json:"source"`
	Outcome    Outcome           `json:"outcome"`
	Candidates []deals.Candidate `json:"candidates"`
}

// Extractor shares the venue's renderer session; not safe for concurrent use
type Extractor struct {
	renderer   crawler.PageRenderer
	text       TextModel
	vision     VisionModel
	fetchImage ImageFetcher
	log        *logger.Logger
}

// NewExtractor wires the extraction capabilities together
func NewExtractor(renderer crawler.PageRenderer, text TextModel, vision VisionModel, fetchImage ImageFetcher, log *logger.Logger) *Extractor {
	if fetchImage == nil {
		fetchImage = helpers.FetchBytes
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{renderer: renderer, text: text, vision: vision, fetchImage: fetchImage, log: log}
}

// Extract reads one candidate. Only an unreachable page is an error; every
// model failure degrades to a candidate with null fields.
func (e *Extractor) Extract(ctx context.Context, c crawler.Candidate) (*Extraction, error) {
	ext := &Extraction{URL: c.URL}

	if c.LinkType == crawler.LinkTypeImage && c.ImageLink != "" {
		ext.ImageLink = c.ImageLink
		ext.Source = "vision"
		res := e.fromImage(ctx, c.ImageLink)
		ext.Outcome = res.Outcome
		ext.Candidates = candidatesOf(res)
		return ext, nil
	}

	if err := e.renderer.Goto(ctx, c.URL); err != nil {
		return nil, errors.NewNavigation(c.URL, "deal page unreachable", err)
	}
	html, err := e.renderer.CurrentHTML(ctx)
	if err != nil {
		return nil, errors.NewParsing(c.URL, "cannot read page", err)
	}

	ext.Text = crawler.NormalizeText(html)
	ext.Source = "text"
	res := e.fromText(ctx, ext.Text)

	if !res.complete() {
		e.log.Debug().Str("url", c.URL).Str("outcome", string(res.Outcome)).Msg("Missing deal info, looking for a large image")
		if src, ok := e.largestImage(ctx); ok {
			ext.ImageLink = src
			if vres := e.fromImage(ctx, src); vres.usable() {
				res = vres
				ext.Source = "vision"
			}
		}
	}

	ext.Outcome = res.Outcome
	ext.Candidates = candidatesOf(res)
	return ext, nil
}

func (e *Extractor) fromText(ctx context.Context, text string) Result {
	if text == "" {
		return Result{Outcome: OutcomeMalformed}
	}
	raw, err := e.text.Complete(ctx, textSystemPrompt, buildTextPrompt(text))
	if err != nil {
		e.log.Warn().Err(err).Msg("Text model unreachable")
		return Result{Outcome: OutcomeUnreachable, Err: errors.NewModel("", "text model", err)}
	}
	return parseResult(raw, e.log)
}

func (e *Extractor) fromImage(ctx context.Context, src string) Result {
	img, err := e.fetchImage(ctx, src)
	if err != nil {
		e.log.Warn().Err(err).Str("image", src).Msg("Cannot download image")
		return Result{Outcome: OutcomeSkipped, Err: err}
	}

	mediaType, _, err := mime.ParseMediaType(img.ContentType)
	if err != nil || !allowedImageTypes[strings.ToLower(mediaType)] {
		e.log.Debug().Str("image", src).Str("content_type", img.ContentType).Msg("Unsupported image type")
		return Result{Outcome: OutcomeSkipped}
	}

	raw, err := e.vision.CompleteImage(ctx, visionSystemPrompt, img.Body, strings.ToLower(mediaType), visionUserPrompt)
	if err != nil {
		e.log.Warn().Err(err).Msg("Vision model unreachable")
		return Result{Outcome: OutcomeUnreachable, Err: errors.NewModel("", "vision model", err)}
	}
	return parseResult(raw, e.log)
}

func (e *Extractor) largestImage(ctx context.Context) (string, bool) {
	images, vp, err := e.renderer.Images(ctx)
	if err != nil {
		e.log.Debug().Err(err).Msg("Cannot list images")
		return "", false
	}
	src, ok := crawler.LargestImage(images, vp)
	if !ok || !helpers.IsHTTPURL(src) {
		return "", false
	}
	return src, true
}

func parseResult(raw string, log *logger.Logger) Result {
	parsed, ok := parseOutput(raw)
	if !ok {
		log.Warn().Msg("Deal detail extraction failed")
		return Result{Outcome: OutcomeMalformed}
	}
	return Result{Outcome: OutcomeOK, Deals: parsed}
}

// candidatesOf always yields at least one candidate; without usable model
// output that is the all-null candidate.
func candidatesOf(r Result) []deals.Candidate {
	if r.Outcome != OutcomeOK || len(r.Deals) == 0 {
		return []deals.Candidate{toCandidate(rawDeal{})}
	}
	out := make([]deals.Candidate, 0, len(r.Deals))
	for _, d := range r.Deals {
		out = append(out, toCandidate(d))
	}
	return out
}
