package datastore

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/prefstore/prefstore/observability"
)

// Exactly one handle may exist per store name in a process. Open is
// idempotent lookup-or-create: re-opening a bound name with the same
// directory returns the existing handle, while a different directory is a
// conflict.
var (
	registryMu sync.Mutex
	registry   = make(map[string]*DataStore)
)

// Option configures a DataStore at Open time.
type Option func(*DataStore)

// WithObserver routes the store's events to obs. The default discards them.
func WithObserver(obs observability.Observer) Option {
	return func(d *DataStore) {
		if obs != nil {
			d.obs = obs
		}
	}
}

// Open binds to the store identified by name under dir, creating it if
// absent. The snapshot file is loaded before Open returns, so a corrupt file
// surfaces here as ErrCorrupt. Options are ignored when an existing handle
// is returned.
func Open(dir, name string, opts ...Option) (*DataStore, error) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return nil, fmt.Errorf("invalid store name %q", name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := registry[name]; ok {
		if existing.dir != dir {
			return nil, fmt.Errorf("%w: %q is open under %s", ErrHandleConflict, name, existing.dir)
		}
		return existing, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	d := &DataStore{
		name: name,
		dir:  dir,
		path: snapshotPath(dir, name),
		obs:  observability.NoOpObserver{},
		reqs: make(chan any),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	entries, err := load(d.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	go d.run(&Snapshot{entries: entries})

	d.event(observability.LevelInfo, "store.open", map[string]any{
		"path":    d.path,
		"entries": len(entries),
	})

	registry[name] = d
	return d, nil
}

// unbind releases a name after Close so the store can be re-opened.
func unbind(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}
