package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxFullTextBody = 2 * 1024 * 1024

// FullTextFetcher retrieves the full text of a truncated post by
// fetching its permalink page over plain HTTP and reading the page
// metadata. Best-effort: the permalink page may itself be gated, in
// which case the caller keeps the preview text.
type FullTextFetcher struct {
	client    *http.Client
	userAgent string
}

// NewFullTextFetcher creates a fetcher with a 15 second timeout. An
// empty userAgent selects one of the rotating desktop agents.
func NewFullTextFetcher(userAgent string) *FullTextFetcher {
	if userAgent == "" {
		userAgent = userAgents[0]
	}
	return &FullTextFetcher{
		client:    &http.Client{Timeout: 15 * time.Second},
		userAgent: userAgent,
	}
}

// Fetch downloads the permalink page and returns the post text from its
// OpenGraph description, falling back to the plain meta description.
func (f *FullTextFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxFullTextBody))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	for _, sel := range []string{`meta[property="og:description"]`, `meta[name="description"]`} {
		if content, ok := doc.Find(sel).Attr("content"); ok {
			if text := strings.TrimSpace(content); text != "" {
				return text, nil
			}
		}
	}
	return "", fmt.Errorf("no post text in page metadata")
}
