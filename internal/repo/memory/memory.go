package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/weatheralert/internal/domain"
	"github.com/hamed0406/weatheralert/internal/repo"
)

var _ repo.AlertStateStore = (*Store)(nil)
var _ repo.HistoryLog = (*Store)(nil)

type Store struct {
	mu      sync.RWMutex
	states  map[domain.ConditionType]domain.AlertState
	history []repo.HistoryRecord
	ids     map[string]struct{}
}

func New() *Store {
	return &Store{
		states:  make(map[domain.ConditionType]domain.AlertState),
		history: make([]repo.HistoryRecord, 0, 128),
		ids:     make(map[string]struct{}),
	}
}

// ---- AlertStateStore ----

func (m *Store) Get(ctx context.Context, c domain.ConditionType) (*domain.AlertState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[c]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Store) Upsert(ctx context.Context, s domain.AlertState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.states[s.Condition]; ok && cur.LastNotifiedAt.After(s.LastNotifiedAt) {
		return nil
	}
	s.LastNotifiedAt = s.LastNotifiedAt.UTC()
	m.states[s.Condition] = s
	return nil
}

// ---- HistoryLog ----

func (m *Store) Append(ctx context.Context, e domain.HistoryEntry) error {
	return m.appendRecord(repo.RecordOf(e))
}

func (m *Store) appendRecord(r repo.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.ids[r.ID]; dup {
		return nil
	}
	m.ids[r.ID] = struct{}{}
	m.history = append(m.history, r)
	return nil
}

// ListSince returns every stored record; filtering happens in the caller so
// rows with unparseable timestamps still reach it and get reported.
func (m *Store) ListSince(ctx context.Context, since time.Time) ([]repo.HistoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]repo.HistoryRecord, len(m.history))
	copy(out, m.history)
	return out, nil
}
