package repo

import (
	"context"
	"time"

	"github.com/hamed0406/weatheralert/internal/domain"
)

// Ports (interfaces): swap in any DB adapter.

// AlertStateStore keeps the last-notified bookkeeping per condition type.
type AlertStateStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, c domain.ConditionType) (*domain.AlertState, error)
	// Upsert stores s unless the stored LastNotifiedAt is newer; an older
	// write is dropped silently so LastNotifiedAt never moves backwards.
	Upsert(ctx context.Context, s domain.AlertState) error
}

// HistoryLog is the append-only log of sent notifications.
type HistoryLog interface {
	// Append inserts e. Appending an ID that already exists is a no-op.
	Append(ctx context.Context, e domain.HistoryEntry) error
	// ListSince returns records with notified_at >= since. Implementations
	// may return more rows than asked for and make no ordering promise.
	ListSince(ctx context.Context, since time.Time) ([]HistoryRecord, error)
}

// HistoryRecord is a history row as it comes out of storage. Type and
// NotifiedAt are left unparsed; the alert package validates them.
type HistoryRecord struct {
	ID            string
	Type          string
	Temperature   float64
	NotifiedAt    string // RFC 3339
	FormattedTime string
}

// TimeLayout is the on-disk format of HistoryRecord.NotifiedAt.
const TimeLayout = time.RFC3339Nano

// RecordOf converts an entry into its storage form.
func RecordOf(e domain.HistoryEntry) HistoryRecord {
	return HistoryRecord{
		ID:            e.ID,
		Type:          string(e.Condition),
		Temperature:   e.Temperature,
		NotifiedAt:    e.NotifiedAt.UTC().Format(TimeLayout),
		FormattedTime: e.FormattedTime,
	}
}
