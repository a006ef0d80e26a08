package summary

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nurefexc/rss-bridge-ntfy/internal/ports"
)

const maxSummaryRunes = 250

// HTMLSummarizer strips markup from entry content and picks a lead image.
type HTMLSummarizer struct{}

var _ ports.Summarizer = (*HTMLSummarizer)(nil)

// NewHTMLSummarizer builds the default summarizer.
func NewHTMLSummarizer() *HTMLSummarizer {
	return &HTMLSummarizer{}
}

// Summarize extracts a short plain-text description from the entry HTML.
// The lead image is the first feed-provided media ref; the first <img> in
// the markup is only consulted when the feed carried none.
func (s *HTMLSummarizer) Summarize(html string, mediaRefs []string) (string, string) {
	imageURL := firstNonEmpty(mediaRefs)

	if strings.TrimSpace(html) == "" {
		return "", imageURL
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return truncate(collapseWhitespace(html)), imageURL
	}

	if imageURL == "" {
		if src, ok := doc.Find("img").First().Attr("src"); ok {
			imageURL = src
		}
	}

	return truncate(collapseWhitespace(doc.Text())), imageURL
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxSummaryRunes {
		return text
	}
	return string(runes[:maxSummaryRunes]) + "..."
}
