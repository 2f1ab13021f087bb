package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/labelphrase/pkg/labelphrase/internalerr"
	"github.com/cognicore/labelphrase/pkg/labelphrase/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRun(id string, created time.Time) store.Run {
	return store.Run{
		ID:        id,
		CreatedAt: created,
		Strategy:  "scored-exclusive",
		Params:    store.Params{N: 4, TopK: 10, TopN: 3, MaxWords: 2, GlobalN: 3},
		Labels: []store.LabelResult{
			{
				Label:  "shipping",
				Filter: `"your package" OR "tracking number"`,
				Phrases: []store.Phrase{
					{Text: "your package has shipped", Count: 5, Score: 1.5},
					{Text: "tracking number for your", Count: 4, Score: 0.75},
				},
			},
			{Label: "newsletters"},
			{
				Label:  "receipts",
				Filter: `"payment received"`,
				Phrases: []store.Phrase{
					{Text: "payment received thank you", Count: 2, Score: 2},
				},
			},
		},
	}
}

func TestSQLiteSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	created := time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)
	run := sampleRun("01HXRUN000000000000000000A", created)
	if err := st.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, created)
	}
	if got.Strategy != run.Strategy || got.Params != run.Params {
		t.Errorf("run header mismatch: %+v", got)
	}
	if len(got.Labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(got.Labels))
	}
	for i, want := range []string{"shipping", "newsletters", "receipts"} {
		if got.Labels[i].Label != want {
			t.Errorf("label %d = %s, want %s", i, got.Labels[i].Label, want)
		}
	}
	shipping := got.Labels[0]
	if shipping.Filter != run.Labels[0].Filter {
		t.Errorf("filter = %q", shipping.Filter)
	}
	if len(shipping.Phrases) != 2 || shipping.Phrases[0].Text != "your package has shipped" || shipping.Phrases[1].Score != 0.75 {
		t.Errorf("phrases = %+v", shipping.Phrases)
	}
	if len(got.Labels[1].Phrases) != 0 {
		t.Errorf("empty label gained phrases: %+v", got.Labels[1].Phrases)
	}
}

func TestSQLiteSaveRunReplaces(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	run := sampleRun("run-replace", time.Now())
	if err := st.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	run.Labels = run.Labels[:1]
	run.Labels[0].Phrases = run.Labels[0].Phrases[:1]
	if err := st.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun again: %v", err)
	}

	got, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(got.Labels) != 1 || len(got.Labels[0].Phrases) != 1 {
		t.Errorf("stale rows survived the replace: %+v", got.Labels)
	}
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	st := openTestStore(t)

	_, err := st.GetRun(context.Background(), "missing")
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteListRuns(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Saved out of order on purpose.
	for _, tc := range []struct {
		id     string
		offset time.Duration
	}{
		{"middle", time.Hour},
		{"oldest", 0},
		{"newest", 48 * time.Hour},
	} {
		if err := st.SaveRun(ctx, sampleRun(tc.id, base.Add(tc.offset))); err != nil {
			t.Fatalf("SaveRun %s: %v", tc.id, err)
		}
	}

	runs, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, want := range []string{"newest", "middle", "oldest"} {
		if runs[i].ID != want {
			t.Errorf("runs[%d] = %s, want %s", i, runs[i].ID, want)
		}
	}
	if len(runs[0].Labels) != 3 {
		t.Errorf("listed runs should carry labels, got %d", len(runs[0].Labels))
	}

	limited, err := st.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns limit: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "newest" {
		t.Errorf("limit 1 returned %d runs", len(limited))
	}
}

func TestSQLiteReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	st, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := st.SaveRun(ctx, sampleRun("persisted", time.Now())); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	if _, err := st.GetRun(ctx, "persisted"); err != nil {
		t.Errorf("run lost after reopen: %v", err)
	}
}
