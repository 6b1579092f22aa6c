package scheduler

import (
	"math/rand"
	"time"
)

// wakeSpread is the random offset added to the quiet-hours wake instant
// so many deployments do not all resume at the exact top of the hour.
const wakeSpread = 30 * time.Minute

// NextInterval returns a jittered delay around baseMinutes: uniformly
// sampled from base*(1-jitter) to base*(1+jitter) minutes. The result is
// never negative.
func NextInterval(baseMinutes int, jitter float64) time.Duration {
	base := float64(baseMinutes)
	minutes := base + (rand.Float64()*2-1)*jitter*base
	if minutes < 0 {
		minutes = 0
	}
	return time.Duration(minutes * float64(time.Minute))
}

// UntilActive returns how long to sleep before checks may resume. Quiet
// hours are disabled when start == end, returning 0. The window wraps
// midnight when start > end (22–6 means 22:00 through 05:59). Inside the
// window the delay targets end:00 local time plus a random 0–30 minute
// offset, rolled to the next day when that instant already passed.
// Outside the window it returns 0.
func UntilActive(now time.Time, loc *time.Location, start, end int) time.Duration {
	if start == end {
		return 0
	}

	local := now.In(loc)
	hour := local.Hour()

	var sleeping bool
	if start < end {
		sleeping = hour >= start && hour < end
	} else {
		sleeping = hour >= start || hour < end
	}
	if !sleeping {
		return 0
	}

	offset := time.Duration(rand.Int63n(int64(wakeSpread)))
	wake := time.Date(local.Year(), local.Month(), local.Day(), end, 0, 0, 0, loc).Add(offset)
	if !wake.After(local) {
		wake = wake.AddDate(0, 0, 1)
	}
	return wake.Sub(local)
}
