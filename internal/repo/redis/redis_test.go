package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/weatheralert/internal/domain"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewWithClient(client, "test:", zap.NewNop())
}

func TestStore_GetMissingIsNilNil(t *testing.T) {
	_, store := setupTestRedis(t)

	st, err := store.Get(context.Background(), domain.Cold)
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestStore_UpsertThenGet(t *testing.T) {
	_, store := setupTestRedis(t)
	ctx := context.Background()
	at := time.Date(2025, 5, 1, 9, 30, 0, 123, time.UTC)

	require.NoError(t, store.Upsert(ctx, domain.AlertState{Condition: domain.Heat, LastNotifiedAt: at, LastTemperature: 26.5}))

	st, err := store.Get(ctx, domain.Heat)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.True(t, st.LastNotifiedAt.Equal(at))
	assert.Equal(t, 26.5, st.LastTemperature)
}

func TestStore_UpsertRefusesOlderInstant(t *testing.T) {
	_, store := setupTestRedis(t)
	ctx := context.Background()
	newer := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Upsert(ctx, domain.AlertState{Condition: domain.Cold, LastNotifiedAt: newer, LastTemperature: 2}))
	require.NoError(t, store.Upsert(ctx, domain.AlertState{Condition: domain.Cold, LastNotifiedAt: newer.Add(-time.Minute), LastTemperature: 8}))

	st, err := store.Get(ctx, domain.Cold)
	require.NoError(t, err)
	assert.True(t, st.LastNotifiedAt.Equal(newer))
	assert.Equal(t, 2.0, st.LastTemperature)
}

func TestStore_GetCorruptStateIsError(t *testing.T) {
	mr, store := setupTestRedis(t)
	mr.HSet("test:state:cold", "notified_at", "yesterday", "temperature", "3")

	st, err := store.Get(context.Background(), domain.Cold)
	require.Error(t, err)
	assert.Nil(t, st)
}

func TestStore_AppendIsInsertIfAbsent(t *testing.T) {
	_, store := setupTestRedis(t)
	ctx := context.Background()
	e := domain.HistoryEntry{
		ID:            "1746091800000000000",
		Condition:     domain.Cold,
		Temperature:   4,
		NotifiedAt:    time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC),
		FormattedTime: "2025-05-01 09:30:00",
	}
	require.NoError(t, store.Append(ctx, e))
	e.Temperature = 40
	require.NoError(t, store.Append(ctx, e))

	rows, err := store.ListSince(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 4.0, rows[0].Temperature)
	assert.Equal(t, "cold", rows[0].Type)
	assert.Equal(t, "2025-05-01T09:30:00Z", rows[0].NotifiedAt)
}

func TestStore_ListSinceSurfacesUndecodableValues(t *testing.T) {
	mr, store := setupTestRedis(t)
	mr.HSet("test:history", "bad-1", "{not json")

	rows, err := store.ListSince(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "bad-1", rows[0].ID)
	assert.Empty(t, rows[0].NotifiedAt)
}
