// Package worker moves journaled submissions onto the ledger.
package worker

import (
	"context"
	"errors"
	"fmt"

	"projecthub/internal/amqp"
	"projecthub/internal/log"
	"projecthub/internal/sheets"
	"projecthub/internal/storage"
)

// EntryStore is the journal as the relay sees it.
type EntryStore interface {
	Get(ctx context.Context, eventID string) (storage.Entry, error)
	MarkSynced(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, cause error) error
}

// RelayWorker appends journal entries to the ledger.
type RelayWorker struct {
	journal EntryStore
	ledger  sheets.LedgerWriter
	logger  *log.Logger
}

func NewRelayWorker(journal EntryStore, ledger sheets.LedgerWriter, logger *log.Logger) *RelayWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &RelayWorker{
		journal: journal,
		ledger:  ledger,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRecordCreated processes one record-created message. Messages for
// unknown events are dropped; ledger failures are returned so the message
// is requeued.
func (w *RelayWorker) HandleRecordCreated(ctx context.Context, msg *amqp.RecordCreatedMessage) error {
	entry, err := w.journal.Get(ctx, msg.EventID)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.WarnContext(ctx, "Message for unknown journal entry, dropping",
			log.FieldEventID, msg.EventID,
			log.FieldAction, string(msg.Action))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load journal entry: %w", err)
	}
	return w.SyncEntry(ctx, entry)
}

// SyncEntry appends e to the ledger unless it is already synced.
func (w *RelayWorker) SyncEntry(ctx context.Context, e storage.Entry) error {
	if e.Status == storage.StatusSynced {
		w.logger.DebugContext(ctx, "Entry already synced", log.FieldEventID, e.EventID)
		return nil
	}

	ref, err := w.ledger.AppendEntry(ctx, e)
	if err != nil {
		if markErr := w.journal.MarkFailed(ctx, e.EventID, err); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to record relay failure",
				log.FieldEventID, e.EventID,
				log.FieldError, markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.journal.MarkSynced(ctx, e.EventID); err != nil {
		// The row is on the ledger; a later retry would write it again.
		w.logger.WarnContext(ctx, "Failed to mark entry synced",
			log.FieldEventID, e.EventID,
			log.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Entry synced to ledger",
		log.FieldEventID, e.EventID,
		log.FieldAction, string(e.Action),
		log.FieldEntityID, e.EntityID,
		"ref", ref)
	return nil
}
