package scrape

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"fb_bot/internal/identity"
	"fb_bot/internal/model"
	"fb_bot/internal/normalize"
)

// Article is one rendered post element. The playwright adapter in
// scrape.go implements it against a live locator; tests implement it
// directly.
type Article interface {
	// Text returns the element's visible inner text.
	Text() (string, error)

	// FirstHref returns the href of the first link matching selector,
	// or "" when there is none.
	FirstHref(selector string) (string, error)

	// Images returns the CDN images inside the element in document
	// order, with rendered dimensions when the layout engine reports
	// them (zero otherwise).
	Images() ([]Image, error)
}

// Image is one candidate post image.
type Image struct {
	URL    string
	Width  float64
	Height float64
}

// Images measured smaller than this on either axis are icons or avatars,
// not post content.
const minImageSize = 100

// permalinkSelectors are the link shapes that identify a post's own URL,
// in priority order.
var permalinkSelectors = []string{
	`a[href*="/posts/"]`,
	`a[href*="/photos/"]`,
	`a[href*="story_fbid"]`,
	`a[href*="/videos/"]`,
	`a[href*="/permalink/"]`,
}

// Limits are the extraction thresholds from configuration.
type Limits struct {
	MinPostText    int
	MinCleanedText int
	MaxImages      int
}

// Extractor turns rendered article elements into canonical posts.
type Extractor struct {
	limits   Limits
	norm     *normalize.Normalizer
	fulltext *FullTextFetcher
	log      *slog.Logger
}

// NewExtractor creates an Extractor. fulltext may be nil to disable the
// follow-up fetch for truncated posts.
func NewExtractor(limits Limits, norm *normalize.Normalizer, fulltext *FullTextFetcher, log *slog.Logger) *Extractor {
	return &Extractor{limits: limits, norm: norm, fulltext: fulltext, log: log}
}

// Extract produces zero or one post from an article element. origin is
// the scheme+host of the feed page, used to resolve relative permalinks.
//
// Only the two minimum-length checks discard the post outright; any
// other failing sub-step (stale handle, missing attribute, failed
// follow-up fetch) degrades the record instead of aborting it.
func (e *Extractor) Extract(ctx context.Context, a Article, pageName, origin string) *model.Post {
	raw, err := a.Text()
	if err != nil {
		e.log.Debug("read article text", "error", err)
		return nil
	}
	raw = strings.TrimSpace(raw)
	if utf8.RuneCountInString(raw) < e.limits.MinPostText {
		return nil
	}

	link := e.findPermalink(a, origin)

	text := e.norm.Clean(raw, pageName)
	if link != "" && e.fulltext != nil && e.norm.Truncated(raw) {
		if full := e.fetchFullText(ctx, link, pageName); utf8.RuneCountInString(full) > utf8.RuneCountInString(text) {
			text = full
		}
	}
	if utf8.RuneCountInString(text) < e.limits.MinCleanedText {
		return nil
	}

	return &model.Post{
		ID:       identity.PostID(link, text),
		Text:     text,
		Link:     link,
		Images:   e.collectImages(a),
		PageName: pageName,
	}
}

// findPermalink tries each link shape in priority order and returns the
// first canonical on-platform permalink, or "".
func (e *Extractor) findPermalink(a Article, origin string) string {
	for _, sel := range permalinkSelectors {
		href, err := a.FirstHref(sel)
		if err != nil || href == "" {
			continue
		}
		resolved, ok := resolveLink(href, origin)
		if !ok {
			continue
		}
		return identity.CanonicalizeURL(resolved)
	}
	return ""
}

func (e *Extractor) fetchFullText(ctx context.Context, link, pageName string) string {
	full, err := e.fulltext.Fetch(ctx, link)
	if err != nil {
		e.log.Debug("fetch full post text", "link", link, "error", err)
		return ""
	}
	return e.norm.Clean(full, pageName)
}

func (e *Extractor) collectImages(a Article) []string {
	imgs, err := a.Images()
	if err != nil {
		e.log.Debug("read article images", "error", err)
		return nil
	}

	var out []string
	for _, img := range imgs {
		if img.URL == "" {
			continue
		}
		// A zero dimension means the size signal was unavailable;
		// only a positive measurement below the threshold rejects.
		if (img.Width > 0 && img.Width < minImageSize) ||
			(img.Height > 0 && img.Height < minImageSize) {
			continue
		}
		out = append(out, img.URL)
		if len(out) == e.limits.MaxImages {
			break
		}
	}
	return out
}

// resolveLink makes href absolute against origin and accepts it only
// when the resolved host belongs to the platform domain, rejecting ad
// redirects and other off-domain links.
func resolveLink(href, origin string) (string, bool) {
	if !strings.HasPrefix(href, "http") {
		href = strings.TrimRight(origin, "/") + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host != "facebook.com" && !strings.HasSuffix(host, ".facebook.com") {
		return "", false
	}
	return href, true
}
