package domain

import (
	"context"
	"errors"
	"log/slog"

	"runic.dev/pkg/runic/internal/controller"
	m "runic.dev/pkg/runic/internal/model"
)

// ChangeEvent is one notification from the file-change feed.
type ChangeEvent struct {
	Path string
}

// PrintConfig controls console behavior between watch restarts.
type PrintConfig struct {
	JobLabel    string
	ClearScreen bool
}

// AttemptFactory builds one independent execution attempt per watch
// iteration. Reset clears all per-attempt state (tracked dependencies) and
// strictly precedes Build; no state crosses from one attempt to the next.
type AttemptFactory interface {
	Reset()
	Build(ctx context.Context) (*Worker, error)
}

// attemptFactory is the production factory: a fresh grant and a fresh worker
// per Build, nothing captured from the previous attempt.
type attemptFactory struct {
	entry   m.Specifier
	opts    m.PermissionOptions
	workers *WorkerFactory
	tracker *DepTracker
	args    []string
}

// NewAttemptFactory constructs the factory the supervisor drives. The tracker
// may be nil outside watch mode; trailing args are the program's own
// arguments, repeated on every restart.
func NewAttemptFactory(entry m.Specifier, opts m.PermissionOptions, workers *WorkerFactory, tracker *DepTracker, args ...string) AttemptFactory {
	return &attemptFactory{entry: entry, opts: opts, workers: workers, tracker: tracker, args: args}
}

func (f *attemptFactory) Reset() {
	if f.tracker != nil {
		f.tracker.Reset()
	}
}

func (f *attemptFactory) Build(ctx context.Context) (*Worker, error) {
	grant, err := BuildGrant(f.opts)
	if err != nil {
		return nil, err
	}

	return f.workers.CreateWorker(ctx, f.entry, grant, f.args...)
}

// Supervisor drives restart-on-change execution. It owns the change feed,
// rebuilds a fresh attempt per iteration and cancels the in-flight attempt
// when a change arrives. The loop is unbounded; it exits only when the feed
// closes, the context is cancelled, or rebuilding becomes impossible.
type Supervisor struct {
	changes <-chan ChangeEvent
	factory AttemptFactory
	config  PrintConfig
	display controller.Display
}

// NewSupervisor constructs a Supervisor.
func NewSupervisor(changes <-chan ChangeEvent, factory AttemptFactory, config PrintConfig, display controller.Display) *Supervisor {
	return &Supervisor{changes: changes, factory: factory, config: config, display: display}
}

// Run executes the watch loop. A closed change feed terminates it cleanly;
// resolution and configuration failures terminate it with an error, since
// there is no valid program left to re-run. Runtime and creation failures
// are reported and the loop waits for the next change.
func (s *Supervisor) Run(ctx context.Context) error {
	s.display.Status(s.config.JobLabel, "started")

	first := true

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if s.config.ClearScreen && !first {
			s.display.ClearScreen()
		}

		first = false

		s.factory.Reset()

		worker, err := s.factory.Build(ctx)
		if err != nil {
			if errors.Is(err, ErrResolution) || errors.Is(err, ErrConfig) {
				return err
			}

			s.display.Error(err)
			s.display.Status(s.config.JobLabel, "failed, waiting for changes...")

			if ok, err := s.awaitChange(ctx); !ok {
				return err
			}

			continue
		}

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)

		go func() {
			done <- worker.RunForWatcher(runCtx)
		}()

		select {
		case err := <-done:
			// Completed. Report non-fatal failures and block until the
			// next change; completion alone never triggers a re-run.
			cancel()

			if err != nil {
				s.display.Error(err)
				s.display.Status(s.config.JobLabel, "failed, waiting for changes...")
			} else {
				s.display.Status(s.config.JobLabel, "finished, waiting for changes...")
			}

			if ok, err := s.awaitChange(ctx); !ok {
				return err
			}

		case event, open := <-s.changes:
			// Cancellation is requested, not awaited: the abandoned attempt
			// shares no mutable state with the next one.
			cancel()

			if !open {
				slog.Debug("change feed closed, stopping watcher")
				return nil
			}

			s.display.Status(s.config.JobLabel, "restarting, file changed: "+event.Path)

		case <-ctx.Done():
			cancel()
			return ctx.Err()
		}
	}
}

// awaitChange blocks until the next change notification. It returns false
// when the loop should stop, with the error to surface (nil on a closed
// feed).
func (s *Supervisor) awaitChange(ctx context.Context) (bool, error) {
	select {
	case event, open := <-s.changes:
		if !open {
			slog.Debug("change feed closed, stopping watcher")
			return false, nil
		}

		s.display.Status(s.config.JobLabel, "restarting, file changed: "+event.Path)

		return true, nil

	case <-ctx.Done():
		return false, ctx.Err()
	}
}
