// Package scrape renders a public page in a headless browser and
// extracts its posts.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"fb_bot/internal/model"
	"fb_bot/internal/normalize"
)

const (
	navigationTimeoutMs = 60_000
	clickTimeoutMs      = 3_000
)

// Politeness delay ranges in milliseconds. Randomized so request timing
// does not expose a fixed cadence.
var (
	popupDelay   = delayRange{800, 2000}
	scrollDelay  = delayRange{2000, 4000}
	articleDelay = delayRange{300, 800}
)

type delayRange struct{ min, max int }

func (r delayRange) millis() float64 {
	return float64(r.min + rand.Intn(r.max-r.min))
}

// userAgents is rotated per scrape so consecutive visits do not all
// carry the identical fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36",
}

const (
	cookieButtonSelector = `button:has-text("Allow all cookies"), button:has-text("Decline optional cookies"), ` +
		`button:has-text("Permitir todos os cookies"), button:has-text("Recusar cookies opcionais"), ` +
		`button:has-text("Aceitar"), [data-cookiebanner="accept_button"]`
	loginDialogCloseSelector = `div[role="dialog"] button[aria-label="Close"], div[role="dialog"] button[aria-label="Fechar"]`
	articleSelector          = `div[role="article"]`
)

// browserLocales maps the configured bot language to a browser locale.
var browserLocales = map[string]string{
	"en": "en-US",
	"pt": "pt-PT",
}

// Result is the outcome of scraping one page.
type Result struct {
	PageName     string
	Posts        []model.Post
	Blocked      bool
	ElementCount int
}

// Options configure the Scraper.
type Options struct {
	MaxPosts int
	Language string
	Debug    bool
	DebugDir string
}

// Scraper renders pages with a shared headless-browser driver. A fresh
// browser is launched per scrape so no session state accumulates between
// visits.
type Scraper struct {
	pw        *playwright.Playwright
	opts      Options
	extractor *Extractor
	log       *slog.Logger
}

// NewScraper installs the browser driver if needed and starts it.
func NewScraper(extractor *Extractor, opts Options, log *slog.Logger) (*Scraper, error) {
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	if opts.DebugDir == "" {
		opts.DebugDir = "./data/debug"
	}
	return &Scraper{pw: pw, opts: opts, extractor: extractor, log: log}, nil
}

// Close stops the browser driver.
func (s *Scraper) Close() error {
	return s.pw.Stop()
}

// ScrapePage renders pageURL and extracts up to MaxPosts posts from it.
// A login-wall redirect is reported as Blocked, not as an error.
func (s *Scraper) ScrapePage(ctx context.Context, pageURL string) (Result, error) {
	browser, err := s.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     []string{"--no-sandbox", "--disable-setuid-sandbox"},
	})
	if err != nil {
		return Result{}, fmt.Errorf("launch browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	locale := browserLocales[s.opts.Language]
	if locale == "" {
		locale = browserLocales[normalize.FallbackLanguage]
	}
	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgents[rand.Intn(len(userAgents))]),
		Locale:    playwright.String(locale),
		Viewport:  &playwright.Size{Width: 1280, Height: 900},
	})
	if err != nil {
		return Result{}, fmt.Errorf("create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		return Result{}, fmt.Errorf("open page: %w", err)
	}

	s.log.Debug("navigating", "url", pageURL)
	if _, err := page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(navigationTimeoutMs),
	}); err != nil {
		return Result{}, fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	s.dismiss(page, cookieButtonSelector)
	s.dismiss(page, loginDialogCloseSelector)

	title, err := page.Title()
	if err != nil {
		title = ""
	}
	if normalize.IsLoginWall(title) {
		s.log.Warn("redirected to login page", "url", pageURL, "title", title)
		s.dumpDebug(page, "login-redirect")
		return Result{Blocked: true}, nil
	}
	s.dumpDebug(page, "page")

	// Nudge the viewport so lazy-loaded posts render.
	if _, err := page.Evaluate("window.scrollBy(0, 1000)"); err != nil {
		s.log.Debug("scroll page", "error", err)
	}
	page.WaitForTimeout(scrollDelay.millis())

	pageName := s.readPageName(page)

	articles := page.Locator(articleSelector)
	count, err := articles.Count()
	if err != nil {
		return Result{}, fmt.Errorf("count articles: %w", err)
	}
	if count == 0 {
		s.log.Warn("no post elements found", "url", pageURL, "title", title)
		return Result{PageName: pageName}, nil
	}

	origin := originOf(pageURL)
	maxPosts := min(count, s.opts.MaxPosts)

	var posts []model.Post
	for i := 0; i < maxPosts; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		el := articles.Nth(i)
		if err := el.ScrollIntoViewIfNeeded(); err != nil {
			s.log.Debug("scroll to article", "index", i, "error", err)
		}
		if post := s.extractor.Extract(ctx, &playwrightArticle{el: el}, pageName, origin); post != nil {
			posts = append(posts, *post)
		}
		page.WaitForTimeout(articleDelay.millis())
	}

	return Result{PageName: pageName, Posts: posts, ElementCount: count}, nil
}

// dismiss best-effort clicks an overlay button. Consent banners and
// login dialogs are not always shown, so failure means nothing.
func (s *Scraper) dismiss(page playwright.Page, selector string) {
	err := page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(clickTimeoutMs),
	})
	if err == nil {
		page.WaitForTimeout(popupDelay.millis())
	}
}

func (s *Scraper) readPageName(page playwright.Page) string {
	h1 := page.Locator("h1")
	count, err := h1.Count()
	if err != nil || count == 0 {
		return ""
	}
	name, err := h1.First().InnerText()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(name)
}

// dumpDebug writes the rendered HTML to the debug directory when debug
// mode is on.
func (s *Scraper) dumpDebug(page playwright.Page, label string) {
	if !s.opts.Debug {
		return
	}
	content, err := page.Content()
	if err != nil {
		s.log.Debug("read page content", "error", err)
		return
	}
	if err := os.MkdirAll(s.opts.DebugDir, 0o750); err != nil {
		s.log.Debug("create debug directory", "error", err)
		return
	}
	file := filepath.Join(s.opts.DebugDir, fmt.Sprintf("%s-%d.html", label, time.Now().UnixMilli()))
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		s.log.Debug("write debug dump", "file", file, "error", err)
		return
	}
	s.log.Debug("saved debug dump", "file", file)
}

func originOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "https://www.facebook.com"
	}
	return u.Scheme + "://" + u.Host
}

// playwrightArticle adapts a live element locator to the Article
// interface used by the extractor.
type playwrightArticle struct {
	el playwright.Locator
}

const imageSelector = `img[src*="fbcdn"]`

// maxImageScan bounds the per-article image round-trips; the extractor
// filters and caps the final list.
const maxImageScan = 12

func (a *playwrightArticle) Text() (string, error) {
	return a.el.InnerText()
}

func (a *playwrightArticle) FirstHref(selector string) (string, error) {
	links := a.el.Locator(selector)
	count, err := links.Count()
	if err != nil || count == 0 {
		return "", err
	}
	return links.First().GetAttribute("href")
}

func (a *playwrightArticle) Images() ([]Image, error) {
	imgs := a.el.Locator(imageSelector)
	count, err := imgs.Count()
	if err != nil {
		return nil, err
	}

	var out []Image
	for i := 0; i < count && i < maxImageScan; i++ {
		img := imgs.Nth(i)
		src, err := img.GetAttribute("src")
		if err != nil || src == "" {
			continue
		}
		entry := Image{URL: src}
		if box, err := img.BoundingBox(); err == nil && box != nil {
			entry.Width = box.Width
			entry.Height = box.Height
		}
		out = append(out, entry)
	}
	return out, nil
}
