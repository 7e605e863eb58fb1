package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"runic.dev/pkg/runic/internal/domain"
)

// trackerSyncInterval is how often the notifier picks up dependency paths
// discovered by the running attempt.
const trackerSyncInterval = time.Second

// ChangeNotifier turns fsnotify events into the supervisor's change feed.
// Directories are watched rather than files so editors that save by rename
// still produce events; only paths of interest are forwarded.
type ChangeNotifier struct {
	watcher  *fsnotify.Watcher
	events   chan domain.ChangeEvent
	tracker  *domain.DepTracker
	interest map[string]struct{}
	watched  map[string]struct{}
}

// NewChangeNotifier constructs a notifier watching the given paths. The
// tracker, when non-nil, feeds additional paths in while attempts run.
func NewChangeNotifier(tracker *domain.DepTracker, paths ...string) (*ChangeNotifier, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	n := &ChangeNotifier{
		watcher:  watcher,
		events:   make(chan domain.ChangeEvent, 1),
		tracker:  tracker,
		interest: make(map[string]struct{}),
		watched:  make(map[string]struct{}),
	}

	for _, path := range paths {
		if err := n.follow(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return n, nil
}

// Events exposes the change feed consumed by the supervisor. The channel
// closes when Run returns.
func (n *ChangeNotifier) Events() <-chan domain.ChangeEvent {
	return n.events
}

// Run pumps filesystem events into the change feed until the context is
// cancelled or the notifier is closed. Successive events are coalesced: a
// burst of writes yields one pending change.
func (n *ChangeNotifier) Run(ctx context.Context) error {
	defer close(n.events)

	ticker := time.NewTicker(trackerSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, open := <-n.watcher.Events:
			if !open {
				return nil
			}

			if !n.interesting(event) {
				continue
			}

			slog.Debug("file change detected", "path", event.Name, "op", event.Op.String())

			select {
			case n.events <- domain.ChangeEvent{Path: event.Name}:
			default:
			}

		case err, open := <-n.watcher.Errors:
			if !open {
				return nil
			}

			slog.Error("file watcher error", "error", err)

		case <-ticker.C:
			n.syncTracked()
		}
	}
}

// Close stops the underlying watcher, which in turn ends Run.
func (n *ChangeNotifier) Close() error {
	return n.watcher.Close()
}

func (n *ChangeNotifier) follow(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	n.interest[abs] = struct{}{}

	dir := filepath.Dir(abs)
	if _, ok := n.watched[dir]; ok {
		return nil
	}

	if err := n.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	n.watched[dir] = struct{}{}

	return nil
}

func (n *ChangeNotifier) interesting(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	_, ok := n.interest[abs]

	return ok
}

// syncTracked folds dependency paths discovered by the running attempt into
// the watch set. Failures are logged and retried on the next tick.
func (n *ChangeNotifier) syncTracked() {
	if n.tracker == nil {
		return
	}

	for _, path := range n.tracker.Paths() {
		if _, ok := n.interest[path]; ok {
			continue
		}

		if err := n.follow(path); err != nil {
			slog.Debug("cannot follow tracked path", "path", path, "error", err)
		}
	}
}
