package alert

import (
	"fmt"
	"sort"
	"time"

	"github.com/hamed0406/weatheralert/internal/domain"
	"github.com/hamed0406/weatheralert/internal/repo"
)

const (
	DefaultHistoryWindow = 7 * 24 * time.Hour
	// DisplayLayout formats HistoryEntry.FormattedTime.
	DisplayLayout = "2006-01-02 15:04:05"
)

// SkippedRecord names a stored row that a query could not use.
type SkippedRecord struct {
	ID     string
	Reason error
}

// HistoryResult is a window of history, newest first.
type HistoryResult struct {
	Entries []domain.HistoryEntry
	Skipped []SkippedRecord
}

// BuildHistory parses records, keeps those notified at or after start (no
// upper bound, so entries from a writer with a fast clock still show) and
// orders them by NotifiedAt descending, then ID descending. Storage order
// is irrelevant. loc is used to fill a missing FormattedTime.
func BuildHistory(records []repo.HistoryRecord, start time.Time, loc *time.Location) HistoryResult {
	if loc == nil {
		loc = time.UTC
	}
	res := HistoryResult{Entries: make([]domain.HistoryEntry, 0, len(records))}
	for _, r := range records {
		e, err := parseRecord(r, loc)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedRecord{ID: r.ID, Reason: err})
			continue
		}
		if e.NotifiedAt.Before(start) {
			continue
		}
		res.Entries = append(res.Entries, e)
	}
	sort.SliceStable(res.Entries, func(i, j int) bool {
		a, b := res.Entries[i], res.Entries[j]
		if !a.NotifiedAt.Equal(b.NotifiedAt) {
			return a.NotifiedAt.After(b.NotifiedAt)
		}
		return compareIDs(a.ID, b.ID) > 0
	})
	return res
}

func parseRecord(r repo.HistoryRecord, loc *time.Location) (domain.HistoryEntry, error) {
	at, err := time.Parse(repo.TimeLayout, r.NotifiedAt)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("%w: timestamp %q: %v", ErrMalformedRecord, r.NotifiedAt, err)
	}
	c, err := domain.ParseConditionType(r.Type)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	e := domain.HistoryEntry{
		ID:            r.ID,
		Condition:     c,
		Temperature:   r.Temperature,
		NotifiedAt:    at.UTC(),
		FormattedTime: r.FormattedTime,
	}
	if e.FormattedTime == "" {
		e.FormattedTime = e.NotifiedAt.In(loc).Format(DisplayLayout)
	}
	return e, nil
}
