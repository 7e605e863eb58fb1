package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	m "runic.dev/pkg/runic/internal/model"
)

// Engine executes one resolved program under a permission grant and returns
// the program's exit code. Implementations live in internal/adapter; the
// domain only sequences them.
type Engine interface {
	Exec(ctx context.Context, source ResolvedSource, grant *Grant) (int, error)
}

// Worker binds one resolved entry point and one grant for a single execution.
// A worker is consumed by its first Run and must never be reused.
type Worker struct {
	source ResolvedSource
	grant  *Grant
	engine Engine
	ran    atomic.Bool
}

// Run executes the program once and returns its exit code verbatim.
func (w *Worker) Run(ctx context.Context) (int, error) {
	if !w.ran.CompareAndSwap(false, true) {
		return 1, fmt.Errorf("%w: worker already consumed", ErrRuntime)
	}

	code, err := w.engine.Exec(ctx, w.source, w.grant)
	if err != nil {
		return code, fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	slog.Debug("worker finished", "specifier", w.source.Specifier, "exit_code", code)

	return code, nil
}

// RunForWatcher executes the program until it completes or the context is
// cancelled. It produces no exit code: in watch mode the supervisor governs
// restarts, not process exit.
func (w *Worker) RunForWatcher(ctx context.Context) error {
	_, err := w.Run(ctx)
	return err
}

// Grant exposes the grant bound to this worker. Watch-mode tests rely on it
// to verify that restarts never reuse a grant.
func (w *Worker) Grant() *Grant { return w.grant }

// WorkerFactory creates workers for entries that are already resolvable,
// either as files on disk or as previously injected virtual records.
type WorkerFactory struct {
	engine   Engine
	provider SourceProvider
}

// NewWorkerFactory constructs a WorkerFactory backed by the provided engine
// and source provider.
func NewWorkerFactory(engine Engine, provider SourceProvider) *WorkerFactory {
	return &WorkerFactory{engine: engine, provider: provider}
}

// CreateWorker resolves the entry through the source provider and binds it to
// the grant. The grant must be freshly built and not shared with any other
// worker. Trailing args are the program's own arguments.
func (f *WorkerFactory) CreateWorker(ctx context.Context, entry m.Specifier, grant *Grant, args ...string) (*Worker, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreation, err)
	}

	if grant == nil {
		return nil, fmt.Errorf("%w: nil permission grant", ErrCreation)
	}

	source, err := f.provider.Open(entry)
	if err != nil {
		return nil, err
	}

	source.Args = args

	return &Worker{source: source, grant: grant, engine: f.engine}, nil
}
