package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"go.uber.org/zap"

	"github.com/hamed0406/weatheralert/internal/domain"
	"github.com/hamed0406/weatheralert/internal/repo"
)

var _ repo.AlertStateStore = (*Store)(nil)
var _ repo.HistoryLog = (*Store)(nil)

// Schema creates the tables used by Store. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS alert_state (
  condition_type   TEXT PRIMARY KEY,
  last_notified_at TIMESTAMPTZ NOT NULL,
  last_temperature DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS alert_history (
  id             TEXT PRIMARY KEY,
  condition_type TEXT NOT NULL,
  temperature    DOUBLE PRECISION NOT NULL,
  notified_at    TIMESTAMPTZ NOT NULL,
  formatted_time TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alert_history_notified_at ON alert_history (notified_at DESC);
`

type Store struct {
	db  *sql.DB
	log *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return NewWithDB(db, log), nil
}

// NewWithDB wraps an already opened handle.
func NewWithDB(db *sql.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ---- AlertStateStore ----

func (s *Store) Get(ctx context.Context, c domain.ConditionType) (*domain.AlertState, error) {
	const q = `SELECT last_notified_at, last_temperature FROM alert_state WHERE condition_type=$1`
	st := domain.AlertState{Condition: c}
	err := s.db.QueryRowContext(ctx, q, string(c)).Scan(&st.LastNotifiedAt, &st.LastTemperature)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert state: %w", err)
	}
	st.LastNotifiedAt = st.LastNotifiedAt.UTC()
	return &st, nil
}

func (s *Store) Upsert(ctx context.Context, st domain.AlertState) error {
	const q = `
		INSERT INTO alert_state (condition_type, last_notified_at, last_temperature)
		VALUES ($1,$2,$3)
		ON CONFLICT (condition_type)
		DO UPDATE SET last_notified_at=EXCLUDED.last_notified_at, last_temperature=EXCLUDED.last_temperature
		WHERE alert_state.last_notified_at <= EXCLUDED.last_notified_at
	`
	res, err := s.db.ExecContext(ctx, q, string(st.Condition), st.LastNotifiedAt.UTC(), st.LastTemperature)
	if err != nil {
		return fmt.Errorf("upsert alert state: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.log.Info("alert_state_stale_write_dropped",
			zap.String("type", string(st.Condition)),
			zap.Time("notified_at", st.LastNotifiedAt),
		)
	}
	return nil
}

// ---- HistoryLog ----

func (s *Store) Append(ctx context.Context, e domain.HistoryEntry) error {
	const q = `
		INSERT INTO alert_history (id, condition_type, temperature, notified_at, formatted_time)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, q, e.ID, string(e.Condition), e.Temperature, e.NotifiedAt.UTC(), e.FormattedTime)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *Store) ListSince(ctx context.Context, since time.Time) ([]repo.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, condition_type, temperature, notified_at, formatted_time
		   FROM alert_history
		  WHERE notified_at >= $1`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []repo.HistoryRecord
	for rows.Next() {
		var (
			r          repo.HistoryRecord
			notifiedAt time.Time
		)
		if err := rows.Scan(&r.ID, &r.Type, &r.Temperature, &notifiedAt, &r.FormattedTime); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		r.NotifiedAt = notifiedAt.UTC().Format(repo.TimeLayout)
		out = append(out, r)
	}
	return out, rows.Err()
}
