package crawler

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var chromeElements = "script, style, svg, header, nav, footer, noscript, template"

var consentSelectors = "#cookieConsent, #gdprConsent, .cookie-banner, .consent-banner"

var consentMarkers = []string{"cookie", "consent", "gdpr"}

// NormalizeText reduces raw HTML to the visible text handed to the
// extraction model. Malformed markup yields whatever text could be read.
func NormalizeText(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	return normalizeDocument(doc)
}

func normalizeDocument(doc *goquery.Document) string {
	doc.Find(chromeElements).Remove()
	doc.Find(consentSelectors).Remove()
	doc.Find("div").FilterFunction(isConsentBanner).Remove()

	var parts []string
	for _, n := range doc.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func isConsentBanner(_ int, s *goquery.Selection) bool {
	for _, attr := range []string{"class", "id", "aria-label"} {
		v, ok := s.Attr(attr)
		if !ok {
			continue
		}
		if containsAny(strings.ToLower(v), consentMarkers) {
			return true
		}
	}
	return false
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); utf8.RuneCountInString(t) > 1 {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
