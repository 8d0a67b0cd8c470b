// Package sheets defines the ledger port the relay writes to.
package sheets

import (
	"context"

	"projecthub/internal/storage"
)

// LedgerWriter appends journaled submissions to an external ledger.
type LedgerWriter interface {
	// AppendEntry writes one row and returns a reference to it.
	AppendEntry(ctx context.Context, e storage.Entry) (rowRef string, err error)
}

// Header is the first row of a ledger sheet.
var Header = []any{"Дата", "Тип", "ID", "Описание", "Событие"}

// Row renders an entry in ledger column order.
func Row(e storage.Entry) []any {
	return []any{
		e.CreatedAt.Local().Format("02.01.2006 15:04"),
		e.Action.Label(),
		e.EntityID,
		e.Summary,
		e.EventID,
	}
}
