package scheduler

import (
	"testing"
	"time"
)

func TestNextIntervalBounds(t *testing.T) {
	const (
		base   = 30
		jitter = 0.3
	)
	lo := time.Duration(float64(base) * (1 - jitter) * float64(time.Minute))
	hi := time.Duration(float64(base) * (1 + jitter) * float64(time.Minute))

	for i := 0; i < 1000; i++ {
		d := NextInterval(base, jitter)
		if d < lo || d > hi {
			t.Fatalf("NextInterval(%d, %g) = %v, want within [%v, %v]", base, jitter, d, lo, hi)
		}
	}
}

func TestNextIntervalNeverNegative(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if d := NextInterval(1, 1.0); d < 0 {
			t.Fatalf("NextInterval returned negative duration %v", d)
		}
	}
}

func TestNextIntervalNoJitter(t *testing.T) {
	if d := NextInterval(10, 0); d != 10*time.Minute {
		t.Errorf("NextInterval(10, 0) = %v, want 10m", d)
	}
}

func TestUntilActiveDisabled(t *testing.T) {
	now := time.Date(2025, 6, 1, 3, 30, 0, 0, time.UTC)
	if d := UntilActive(now, time.UTC, 5, 5); d != 0 {
		t.Errorf("UntilActive with equal hours = %v, want 0", d)
	}
}

func TestUntilActiveOutsideWindow(t *testing.T) {
	tests := []struct {
		name  string
		hour  int
		start int
		end   int
	}{
		{"before simple window", 8, 10, 14},
		{"after simple window", 15, 10, 14},
		{"daytime with wrapped window", 12, 22, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2025, 6, 1, tt.hour, 15, 0, 0, time.UTC)
			if d := UntilActive(now, time.UTC, tt.start, tt.end); d != 0 {
				t.Errorf("UntilActive = %v, want 0", d)
			}
		})
	}
}

func TestUntilActiveInsideWrappedWindow(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)

	for i := 0; i < 200; i++ {
		now := time.Date(2025, 6, 1, 23, 10, 0, 0, loc)
		d := UntilActive(now, loc, 22, 6)
		if d <= 0 {
			t.Fatalf("UntilActive = %v, want positive delay", d)
		}

		// The wake instant lands between 06:00 and 06:30 local time.
		wake := now.Add(d).In(loc)
		if wake.Hour() != 6 || wake.Minute() >= 30 {
			t.Fatalf("wake time %v outside 06:00-06:30", wake)
		}
		if wake.Day() != 2 {
			t.Fatalf("wake day %d, want rollover to the next day", wake.Day())
		}
	}
}

func TestUntilActiveEarlyMorningInsideWrappedWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	d := UntilActive(now, time.UTC, 22, 6)
	if d <= 0 {
		t.Fatal("expected positive delay inside the wrapped window")
	}

	wake := now.Add(d)
	if wake.Day() != 1 || wake.Hour() != 6 {
		t.Fatalf("wake time %v, want 06:00-06:30 the same day", wake)
	}
}

func TestUntilActiveSimpleWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	d := UntilActive(now, time.UTC, 10, 14)
	if d <= 0 {
		t.Fatal("expected positive delay inside the window")
	}
	wake := now.Add(d)
	if wake.Hour() != 14 || wake.Minute() >= 30 {
		t.Fatalf("wake time %v outside 14:00-14:30", wake)
	}
}
