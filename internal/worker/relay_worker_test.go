package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/amqp"
	"projecthub/internal/core"
	"projecthub/internal/sheets/memory"
	"projecthub/internal/storage"
)

type failingLedger struct{ err error }

func (f failingLedger) AppendEntry(context.Context, storage.Entry) (string, error) {
	return "", f.err
}

func openJournal(t *testing.T) *storage.Journal {
	t.Helper()
	j, err := storage.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestHandleRecordCreated(t *testing.T) {
	ctx := context.Background()
	journal := openJournal(t)
	ledger := memory.New()
	w := NewRelayWorker(journal, ledger, nil)

	e, err := journal.Record(ctx, core.ActionCreateProject, 8, "Сайт", nil)
	require.NoError(t, err)

	msg := amqp.NewRecordCreatedMessage(e.EventID, e.Action, e.EntityID)
	require.NoError(t, w.HandleRecordCreated(ctx, msg))
	require.NoError(t, w.HandleRecordCreated(ctx, msg), "redelivery is harmless")

	assert.Len(t, ledger.Rows(), 1)
	got, err := journal.Get(ctx, e.EventID)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusSynced, got.Status)
}

func TestHandleUnknownEventDropsMessage(t *testing.T) {
	w := NewRelayWorker(openJournal(t), memory.New(), nil)
	err := w.HandleRecordCreated(context.Background(), amqp.NewRecordCreatedMessage("missing", core.ActionCreateItem, 1))
	assert.NoError(t, err)
}

func TestLedgerFailureIsCounted(t *testing.T) {
	ctx := context.Background()
	journal := openJournal(t)
	quota := errors.New("quota exceeded")
	w := NewRelayWorker(journal, failingLedger{err: quota}, nil)

	e, err := journal.Record(ctx, core.ActionCreatePayment, 3, "Доход", nil)
	require.NoError(t, err)

	err = w.SyncEntry(ctx, e)
	require.ErrorIs(t, err, quota)

	got, _ := journal.Get(ctx, e.EventID)
	assert.Equal(t, storage.StatusPending, got.Status)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, "quota exceeded", got.LastError)
}
