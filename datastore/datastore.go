package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/prefstore/prefstore/observability"
	"github.com/prefstore/prefstore/value"
)

// DataStore is a named durable key-value store. All state is owned by a
// single goroutine started at Open; the exported methods communicate with it
// over channels, which serializes transactions into a total order.
type DataStore struct {
	name string
	dir  string
	path string
	obs  observability.Observer

	reqs chan any
	done chan struct{} // closed when the owning goroutine exits
}

type snapshotReq struct {
	reply chan *Snapshot
}

type updateReq struct {
	fn    func(*Txn) error
	reply chan updateReply
}

type updateReply struct {
	snap *Snapshot
	err  error
}

type watchReq struct {
	ctx   context.Context
	reply chan (<-chan *Snapshot)
}

type closeReq struct {
	reply chan struct{}
}

type watcher struct {
	ctx context.Context
	ch  chan *Snapshot
}

// Snapshot returns the current immutable view of the store. It blocks until
// the owning goroutine serves the request or ctx is done.
func (d *DataStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	req := snapshotReq{reply: make(chan *Snapshot, 1)}
	if err := d.send(ctx, req); err != nil {
		return nil, err
	}
	select {
	case snap := <-req.reply:
		return snap, nil
	case <-d.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Update runs fn against a transaction view of the current state. If fn
// returns nil, the result is persisted atomically and published as the new
// snapshot; if fn returns an error, the transaction is abandoned with no
// state change and the error is returned. Updates are serialized: each one
// observes every previously committed transaction.
func (d *DataStore) Update(ctx context.Context, fn func(*Txn) error) (*Snapshot, error) {
	req := updateReq{fn: fn, reply: make(chan updateReply, 1)}
	if err := d.send(ctx, req); err != nil {
		return nil, err
	}
	select {
	case rep := <-req.reply:
		return rep.snap, rep.err
	case <-d.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Watch returns a channel carrying the current snapshot followed by every
// subsequently committed one. The stream is conflated: a slow receiver
// observes the latest snapshot rather than every intermediate generation.
// The channel is closed when ctx is done or the store closes.
func (d *DataStore) Watch(ctx context.Context) (<-chan *Snapshot, error) {
	req := watchReq{ctx: ctx, reply: make(chan (<-chan *Snapshot), 1)}
	if err := d.send(ctx, req); err != nil {
		return nil, err
	}
	select {
	case ch := <-req.reply:
		return ch, nil
	case <-d.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the store and releases its name in the process registry.
// In-flight requests are served before the owning goroutine exits. Closing
// an already closed store returns ErrClosed.
func (d *DataStore) Close() error {
	req := closeReq{reply: make(chan struct{})}
	select {
	case d.reqs <- req:
	case <-d.done:
		return ErrClosed
	}
	<-req.reply
	unbind(d.name)
	return nil
}

// Name returns the store's process-unique name.
func (d *DataStore) Name() string { return d.name }

func (d *DataStore) send(ctx context.Context, req any) error {
	select {
	case d.reqs <- req:
		return nil
	case <-d.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run owns the store state. It is the only goroutine that touches current,
// the watcher list, or the snapshot file after Open returns.
func (d *DataStore) run(current *Snapshot) {
	defer close(d.done)

	var watchers []*watcher

	for req := range d.reqs {
		switch r := req.(type) {
		case snapshotReq:
			r.reply <- current
		case updateReq:
			snap, err := d.commit(current, r.fn)
			if err == nil {
				current = snap
				watchers = publish(watchers, current)
			}
			r.reply <- updateReply{snap: snap, err: err}
		case watchReq:
			w := &watcher{ctx: r.ctx, ch: make(chan *Snapshot, 1)}
			w.ch <- current
			watchers = append(watchers, w)
			r.reply <- w.ch
		case closeReq:
			for _, w := range watchers {
				close(w.ch)
			}
			d.event(observability.LevelInfo, "store.close", map[string]any{
				"generation": current.Generation(),
			})
			close(r.reply)
			return
		}
	}
}

// commit runs one transaction: copy, apply, persist, publish.
func (d *DataStore) commit(current *Snapshot, fn func(*Txn) error) (*Snapshot, error) {
	start := time.Now()
	txnID := uuid.Must(uuid.NewV7()).String()

	txn := newTxn(current)
	if err := fn(txn); err != nil {
		d.event(observability.LevelWarn, "txn.abort", map[string]any{
			"txn_id": txnID,
			"error":  err.Error(),
		})
		return nil, err
	}

	if err := d.persist(txn.entries); err != nil {
		d.event(observability.LevelError, "txn.abort", map[string]any{
			"txn_id": txnID,
			"error":  err.Error(),
		})
		return nil, err
	}

	snap := &Snapshot{
		entries:    txn.entries,
		generation: current.generation + 1,
		txnID:      txnID,
	}
	d.event(observability.LevelDebug, "txn.commit", map[string]any{
		"txn_id":      txnID,
		"generation":  snap.generation,
		"entries":     len(snap.entries),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return snap, nil
}

// persist writes the encoded state to a temp file and renames it over the
// snapshot file, so readers never observe a partial write.
func (d *DataStore) persist(entries map[slot]value.Value) error {
	data := encodeSnapshot(entries)

	tmp, err := os.CreateTemp(d.dir, ".prefs-*")
	if err != nil {
		return fmt.Errorf("persist %s: %w", d.name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("persist %s: %w", d.name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist %s: %w", d.name, err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist %s: %w", d.name, err)
	}
	return nil
}

// publish delivers snap to live watchers, dropping any whose context is
// done. Delivery is conflated through the one-slot buffer.
func publish(watchers []*watcher, snap *Snapshot) []*watcher {
	live := watchers[:0]
	for _, w := range watchers {
		if w.ctx.Err() != nil {
			close(w.ch)
			continue
		}
		select {
		case w.ch <- snap:
		default:
			// Replace the stale snapshot the receiver has not drained.
			select {
			case <-w.ch:
			default:
			}
			w.ch <- snap
		}
		live = append(live, w)
	}
	return live
}

func (d *DataStore) event(level observability.Level, typ observability.EventType, data map[string]any) {
	d.obs.OnEvent(context.Background(), observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Store:     d.name,
		Data:      data,
	})
}

// load reads the snapshot file, tolerating a missing file as an empty store.
func load(path string) (map[slot]value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[slot]value.Value), nil
		}
		return nil, err
	}
	return decodeSnapshot(data)
}

func snapshotPath(dir, name string) string {
	return filepath.Join(dir, name+".prefs.pb")
}
