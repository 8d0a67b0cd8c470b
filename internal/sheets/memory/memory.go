// Package memory is a ledger kept in process memory, used when no
// spreadsheet is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"projecthub/internal/sheets"
	"projecthub/internal/storage"
)

type Ledger struct {
	mu   sync.Mutex
	rows [][]any
	seen map[string]int
}

func New() *Ledger {
	return &Ledger{seen: make(map[string]int)}
}

// AppendEntry stores the entry's row. An event already on the ledger is not
// written twice.
func (l *Ledger) AppendEntry(_ context.Context, e storage.Entry) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n, ok := l.seen[e.EventID]; ok {
		return fmt.Sprintf("mem:%d", n), nil
	}
	l.rows = append(l.rows, sheets.Row(e))
	n := len(l.rows)
	l.seen[e.EventID] = n
	return fmt.Sprintf("mem:%d", n), nil
}

// Rows returns a copy of the written rows.
func (l *Ledger) Rows() [][]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]any, len(l.rows))
	copy(out, l.rows)
	return out
}

var _ sheets.LedgerWriter = (*Ledger)(nil)
