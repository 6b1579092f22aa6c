// Package scheduler runs the periodic check cycle: scrape each page,
// filter out already-delivered posts, deliver the rest in chronological
// order, and sleep until the next check.
package scheduler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"fb_bot/internal/config"
	"fb_bot/internal/model"
	"fb_bot/internal/scrape"
)

const (
	// blockWarningCooldown rate-limits the "source may be blocked"
	// alert to at most one per window.
	blockWarningCooldown = time.Hour

	// postDelay spaces consecutive deliveries to stay clear of the
	// sink's rate limits.
	postDelay = time.Second
)

// Scraper renders a page and extracts its posts.
type Scraper interface {
	ScrapePage(ctx context.Context, pageURL string) (scrape.Result, error)
}

// Sender delivers posts and alerts downstream.
type Sender interface {
	SendPost(ctx context.Context, p model.Post) error
	SendAlert(ctx context.Context, text string) error
}

// DedupStore remembers which posts were already delivered.
type DedupStore interface {
	WasSent(id string) bool
	MarkSent(id string)
}

// Archive records delivered posts durably. May be nil to disable.
type Archive interface {
	Record(ctx context.Context, p model.Post) error
}

// Scheduler owns the check loop. It is the single worker: cycles never
// overlap and pages within a cycle are processed sequentially, which is
// a deliberate politeness constraint.
type Scheduler struct {
	cfg     *config.Config
	scraper Scraper
	sender  Sender
	store   DedupStore
	archive Archive
	log     *slog.Logger

	now              func() time.Time
	postDelay        time.Duration
	lastBlockWarning time.Time
}

// New creates a Scheduler. archive may be nil.
func New(cfg *config.Config, scraper Scraper, sender Sender, store DedupStore, archive Archive, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		scraper:   scraper,
		sender:    sender,
		store:     store,
		archive:   archive,
		log:       log,
		now:       time.Now,
		postDelay: postDelay,
	}
}

// SetClock overrides the wall clock (useful for testing).
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// SetPostDelay overrides the default 1-second inter-delivery delay.
func (s *Scheduler) SetPostDelay(d time.Duration) {
	s.postDelay = d
}

// Run starts the check loop, blocking until ctx is cancelled. The first
// check happens immediately; afterwards the loop alternates between
// quiet-hours sleeps (which do not add jitter on wake) and jittered
// interval sleeps.
func (s *Scheduler) Run(ctx context.Context) {
	s.checkAll(ctx)

	for ctx.Err() == nil {
		if d := UntilActive(s.now(), s.cfg.Timezone, s.cfg.NightSleepStart, s.cfg.NightSleepEnd); d > 0 {
			s.log.Info("night time, deferring checks",
				"sleep", d.Round(time.Minute), "wake_hour", s.cfg.NightSleepEnd)
			if !sleepCtx(ctx, d) {
				return
			}
			s.checkAll(ctx)
			continue
		}

		d := NextInterval(s.cfg.CheckIntervalMinutes, s.cfg.CheckJitter)
		s.log.Info("next check scheduled", "wait", d.Round(time.Second))
		if !sleepCtx(ctx, d) {
			return
		}
		s.checkAll(ctx)
	}
}

// checkAll runs one cycle over every configured page. Per-page failures
// are logged and never abort the remaining pages.
func (s *Scheduler) checkAll(ctx context.Context) {
	totalNew := 0
	for _, pageURL := range s.cfg.Pages {
		if ctx.Err() != nil {
			return
		}
		sent, err := s.checkPage(ctx, pageURL)
		if err != nil {
			s.log.Error("check page", "page", pageLabel(pageURL), "error", err)
			continue
		}
		totalNew += sent
	}
	if totalNew > 0 {
		s.log.Info("cycle complete", "new_posts", totalNew)
	}
}

func (s *Scheduler) checkPage(ctx context.Context, pageURL string) (int, error) {
	label := pageLabel(pageURL)

	res, err := s.scraper.ScrapePage(ctx, pageURL)
	if err != nil {
		return 0, err
	}

	if res.Blocked {
		s.log.Warn("page blocked, redirected to login", "page", label)
		s.warnBlocked(ctx)
		return 0, nil
	}

	// The feed lists newest first; deliver oldest first so multiple
	// new posts arrive downstream in narrative order.
	sent := 0
	for i := len(res.Posts) - 1; i >= 0; i-- {
		post := res.Posts[i]
		if s.store.WasSent(post.ID) {
			continue
		}
		if err := s.sender.SendPost(ctx, post); err != nil {
			// Left unmarked: eligible for retry next cycle.
			s.log.Error("deliver post", "page", label, "post_id", post.ID, "error", err)
			continue
		}
		// Mark before the inter-delivery delay so a shutdown during
		// the delay never replays a delivered post.
		s.store.MarkSent(post.ID)
		s.recordDelivery(ctx, post)
		sent++

		if !sleepCtx(ctx, s.postDelay) {
			break
		}
	}

	s.log.Info("checked page", "page", label,
		"elements", res.ElementCount, "posts", len(res.Posts), "new", sent)
	return sent, nil
}

func (s *Scheduler) recordDelivery(ctx context.Context, post model.Post) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Record(ctx, post); err != nil {
		s.log.Error("archive post", "post_id", post.ID, "error", err)
	}
}

// warnBlocked sends the blocked-source alert, at most once per cooldown
// window.
func (s *Scheduler) warnBlocked(ctx context.Context) {
	now := s.now()
	if !s.lastBlockWarning.IsZero() && now.Sub(s.lastBlockWarning) < blockWarningCooldown {
		return
	}
	s.lastBlockWarning = now
	err := s.sender.SendAlert(ctx,
		"Facebook is redirecting to login. Scraping may be blocked from this IP.")
	if err != nil {
		s.log.Error("send block warning", "error", err)
	}
}

// sleepCtx sleeps for d, returning false when ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// pageLabel shortens a page URL to its path for logging.
func pageLabel(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Path == "" {
		return pageURL
	}
	if label := strings.Trim(u.Path, "/"); label != "" {
		return label
	}
	return pageURL
}
