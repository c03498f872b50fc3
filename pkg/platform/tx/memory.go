package tx

import (
	"context"
	"sync"
)

// MemoryRunner serializes units of work behind a coarse lock for tests and
// in-memory deployments. It cannot undo partial writes the way a database
// rollback does, so test scenarios that exercise failure paths must fail
// before their first write.
type MemoryRunner struct {
	mu sync.Mutex
}

func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{}
}

func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}
