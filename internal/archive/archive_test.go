package archive

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"fb_bot/internal/model"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	a := newTestArchive(t)

	posts := []model.Post{
		{ID: "aaa", Text: "first post", Link: "https://www.facebook.com/p/posts/1", PageName: "Page"},
		{ID: "bbb", Text: "second post", PageName: "Page"},
		{ID: "ccc", Text: "third post", Link: "https://www.facebook.com/p/posts/3", PageName: "Other"},
	}
	for _, p := range posts {
		if err := a.Record(ctx, p); err != nil {
			t.Fatalf("record %s: %v", p.ID, err)
		}
	}

	got, err := a.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}

	want := []DeliveredPost{
		{PostID: "ccc", PageName: "Other", Text: "third post", Link: "https://www.facebook.com/p/posts/3"},
		{PostID: "bbb", PageName: "Page", Text: "second post"},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(DeliveredPost{}, "SentAt")); diff != "" {
		t.Errorf("Recent() mismatch (-want +got):\n%s", diff)
	}

	n, err := a.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}

func TestRecordDuplicateIsNoop(t *testing.T) {
	ctx := context.Background()
	a := newTestArchive(t)

	p := model.Post{ID: "dup", Text: "same post", PageName: "Page"}
	if err := a.Record(ctx, p); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := a.Record(ctx, p); err != nil {
		t.Fatalf("duplicate record: %v", err)
	}

	n, err := a.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d after duplicate record, want 1", n)
	}
}

func TestRecentOnEmptyArchive(t *testing.T) {
	a := newTestArchive(t)

	got, err := a.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent() on empty archive returned %d rows", len(got))
	}
}
