// Package redis stores alert state and history in Redis hashes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/hamed0406/weatheralert/internal/domain"
	"github.com/hamed0406/weatheralert/internal/repo"
)

var _ repo.AlertStateStore = (*Store)(nil)
var _ repo.HistoryLog = (*Store)(nil)

// DefaultPrefix namespaces every key the store touches.
const DefaultPrefix = "weatheralert:"

// upsertScript writes the state hash unless it already holds a newer instant.
// notified_ns is a fixed-width decimal so string comparison orders it.
var upsertScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'notified_ns')
if cur and cur > ARGV[1] then
  return 0
end
redis.call('HSET', KEYS[1], 'notified_ns', ARGV[1], 'notified_at', ARGV[2], 'temperature', ARGV[3])
return 1
`)

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Store struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

func New(ctx context.Context, opts Options, log *zap.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctxPing).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return NewWithClient(client, opts.Prefix, log), nil
}

func NewWithClient(client *redis.Client, prefix string, log *zap.Logger) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{client: client, prefix: prefix, log: log}
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) stateKey(c domain.ConditionType) string { return s.prefix + "state:" + string(c) }
func (s *Store) historyKey() string                     { return s.prefix + "history" }

// ---- AlertStateStore ----

func (s *Store) Get(ctx context.Context, c domain.ConditionType) (*domain.AlertState, error) {
	fields, err := s.client.HGetAll(ctx, s.stateKey(c)).Result()
	if err != nil {
		return nil, fmt.Errorf("get alert state: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	at, err := time.Parse(repo.TimeLayout, fields["notified_at"])
	if err != nil {
		return nil, fmt.Errorf("decode alert state %s: %w", c, err)
	}
	temp, err := strconv.ParseFloat(fields["temperature"], 64)
	if err != nil {
		return nil, fmt.Errorf("decode alert state %s: %w", c, err)
	}
	return &domain.AlertState{Condition: c, LastNotifiedAt: at.UTC(), LastTemperature: temp}, nil
}

func (s *Store) Upsert(ctx context.Context, st domain.AlertState) error {
	at := st.LastNotifiedAt.UTC()
	applied, err := upsertScript.Run(ctx, s.client, []string{s.stateKey(st.Condition)},
		fmt.Sprintf("%019d", at.UnixNano()),
		at.Format(repo.TimeLayout),
		strconv.FormatFloat(st.LastTemperature, 'f', -1, 64),
	).Int()
	if err != nil {
		return fmt.Errorf("upsert alert state: %w", err)
	}
	if applied == 0 {
		s.log.Info("alert_state_stale_write_dropped",
			zap.String("type", string(st.Condition)),
			zap.Time("notified_at", at),
		)
	}
	return nil
}

// ---- HistoryLog ----

type historyJSON struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Temperature   float64 `json:"temperature"`
	NotifiedAt    string  `json:"timestamp"`
	FormattedTime string  `json:"formattedTime"`
}

func (s *Store) Append(ctx context.Context, e domain.HistoryEntry) error {
	r := repo.RecordOf(e)
	b, err := json.Marshal(historyJSON(r))
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	// HSETNX keeps the first write for an id; a retried append is a no-op.
	if err := s.client.HSetNX(ctx, s.historyKey(), r.ID, b).Err(); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// ListSince scans the whole history hash. Undecodable values come back as
// records with an empty timestamp so the caller can report them.
func (s *Store) ListSince(ctx context.Context, since time.Time) ([]repo.HistoryRecord, error) {
	all, err := s.client.HGetAll(ctx, s.historyKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("list history: %w", err)
	}
	out := make([]repo.HistoryRecord, 0, len(all))
	for id, raw := range all {
		var h historyJSON
		if err := json.Unmarshal([]byte(raw), &h); err != nil {
			s.log.Warn("history_record_undecodable", zap.String("id", id), zap.Error(err))
			out = append(out, repo.HistoryRecord{ID: id})
			continue
		}
		if h.ID == "" {
			h.ID = id
		}
		out = append(out, repo.HistoryRecord(h))
	}
	return out, nil
}
