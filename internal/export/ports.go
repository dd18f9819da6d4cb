// Package export defines the statement export port. Settled obligations are
// appended to an external statement; the Google Sheets client is the real
// implementation, the memory writer backs tests.
package export

import (
	"context"
	"fmt"
	"sync"

	"rentledger/internal/core"
)

// StatementWriter appends one settled obligation to the statement and
// returns an implementation-specific reference to the written row.
type StatementWriter interface {
	Append(ctx context.Context, o core.Obligation) (string, error)
}

// MemoryWriter collects appended obligations in memory.
type MemoryWriter struct {
	mu   sync.Mutex
	rows []core.Obligation

	// FailNext makes the next Append return an error, for testing the
	// error path.
	FailNext bool
}

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

func (w *MemoryWriter) Append(_ context.Context, o core.Obligation) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.FailNext {
		w.FailNext = false
		return "", fmt.Errorf("append statement: simulated failure")
	}
	w.rows = append(w.rows, o)
	return fmt.Sprintf("row-%d", len(w.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (w *MemoryWriter) Rows() []core.Obligation {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]core.Obligation, len(w.rows))
	copy(out, w.rows)
	return out
}
