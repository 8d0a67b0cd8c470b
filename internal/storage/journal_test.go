package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/core"
)

func openTestJournal(t *testing.T) (*Journal, *time.Time) {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	clock := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return clock }
	return j, &clock
}

func TestRecordAndGet(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()

	e, err := j.Record(ctx, core.ActionCreateCompany, 5, "ООО Альфа", core.CompanyDraft{Name: "ООО Альфа", INN: "7701"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, StatusPending, e.Status)
	assert.Equal(t, int64(5), e.EntityID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(e.Payload, &payload))
	assert.Equal(t, "7701", payload["inn"])

	got, err := j.Get(ctx, e.EventID)
	require.NoError(t, err)
	assert.Equal(t, e.EventID, got.EventID)
	assert.Equal(t, core.ActionCreateCompany, got.Action)
	assert.True(t, got.CreatedAt.Equal(time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)))

	_, err = j.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStatusTransitions(t *testing.T) {
	j, clock := openTestJournal(t)
	ctx := context.Background()

	e, err := j.Record(ctx, core.ActionCreatePayment, 9, "5 000 ₽", map[string]int{"project_id": 1})
	require.NoError(t, err)

	require.NoError(t, j.MarkPublished(ctx, e.EventID))
	got, _ := j.Get(ctx, e.EventID)
	assert.Equal(t, StatusPublished, got.Status)

	require.NoError(t, j.MarkFailed(ctx, e.EventID, errors.New("sheets quota")))
	got, _ = j.Get(ctx, e.EventID)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, "sheets quota", got.LastError)

	*clock = clock.Add(time.Minute)
	require.NoError(t, j.MarkSynced(ctx, e.EventID))
	got, _ = j.Get(ctx, e.EventID)
	assert.Equal(t, StatusSynced, got.Status)
	assert.Empty(t, got.LastError)

	require.NoError(t, j.MarkPublished(ctx, e.EventID))
	got, _ = j.Get(ctx, e.EventID)
	assert.Equal(t, StatusSynced, got.Status, "publish never downgrades a synced entry")

	assert.ErrorIs(t, j.MarkSynced(ctx, "missing"), ErrNotFound)
}

func TestListUnsyncedAndRecent(t *testing.T) {
	j, clock := openTestJournal(t)
	ctx := context.Background()

	first, err := j.Record(ctx, core.ActionCreateItem, 1, "a", nil)
	require.NoError(t, err)
	*clock = clock.Add(time.Minute)
	second, err := j.Record(ctx, core.ActionCreateItem, 2, "b", nil)
	require.NoError(t, err)
	*clock = clock.Add(time.Minute)
	third, err := j.Record(ctx, core.ActionCreateItem, 3, "c", nil)
	require.NoError(t, err)
	require.NoError(t, j.MarkSynced(ctx, third.EventID))

	*clock = clock.Add(30 * time.Second)
	idle, err := j.ListUnsynced(ctx, time.Minute, 0, 10)
	require.NoError(t, err)
	require.Len(t, idle, 2)
	assert.Equal(t, first.EventID, idle[0].EventID)
	assert.Equal(t, second.EventID, idle[1].EventID)

	limited, err := j.ListUnsynced(ctx, 0, 0, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	recent, err := j.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, third.EventID, recent[0].EventID)

	counts, err := j.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{StatusPending: 2, StatusSynced: 1}, counts)
}

func TestListUnsyncedSkipsExhausted(t *testing.T) {
	j, clock := openTestJournal(t)
	ctx := context.Background()

	stuck, err := j.Record(ctx, core.ActionCreateItem, 1, "a", nil)
	require.NoError(t, err)
	for range 3 {
		require.NoError(t, j.MarkFailed(ctx, stuck.EventID, errors.New("quota")))
	}
	fresh, err := j.Record(ctx, core.ActionCreateItem, 2, "b", nil)
	require.NoError(t, err)
	*clock = clock.Add(time.Minute)

	capped, err := j.ListUnsynced(ctx, 0, 3, 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.Equal(t, fresh.EventID, capped[0].EventID)

	all, err := j.ListUnsynced(ctx, 0, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOpenTwiceKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.Record(context.Background(), core.ActionCreateItem, 1, "a", nil)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	recent, err := j.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
