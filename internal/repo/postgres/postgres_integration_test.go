//go:build integration

package postgres

// go test -tags=integration ./internal/repo/postgres -run Integration -count=1

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/weatheralert/internal/domain"
)

func TestIntegration_StateAndHistory(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL empty")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	if err := store.Upsert(ctx, domain.AlertState{Condition: domain.Cold, LastNotifiedAt: now, LastTemperature: 3}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// stale write must not move the clock back
	if err := store.Upsert(ctx, domain.AlertState{Condition: domain.Cold, LastNotifiedAt: now.Add(-time.Hour), LastTemperature: 1}); err != nil {
		t.Fatalf("upsert stale: %v", err)
	}
	st, err := store.Get(ctx, domain.Cold)
	if err != nil || st == nil || !st.LastNotifiedAt.Equal(now) {
		t.Fatalf("unexpected state: %+v err=%v", st, err)
	}

	id := fmt.Sprintf("%019d", now.UnixNano())
	e := domain.HistoryEntry{ID: id, Condition: domain.Cold, Temperature: 3, NotifiedAt: now, FormattedTime: "x"}
	for i := 0; i < 2; i++ {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	rows, err := store.ListSince(ctx, now.Add(-time.Second))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	n := 0
	for _, r := range rows {
		if r.ID == id {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("want exactly one row for %s, got %d", id, n)
	}
}
