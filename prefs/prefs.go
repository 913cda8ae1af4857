// Package prefs exposes synchronous typed get/put/clear operations over a
// datastore.DataStore. Every call blocks the caller until the underlying
// snapshot read or transactional commit completes; an optional per-operation
// timeout bounds that wait.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prefstore/prefstore/datastore"
	"github.com/prefstore/prefstore/observability"
	"github.com/prefstore/prefstore/value"
)

// Store is a synchronous typed facade over one named datastore handle.
// It holds no state of its own and is safe for concurrent use.
type Store struct {
	ds      *datastore.DataStore
	timeout time.Duration
}

// Option configures a Store at Open time.
type Option func(*Store, *[]datastore.Option)

// WithTimeout bounds the wait of every operation. Zero (the default) waits
// indefinitely; when set, an expired wait fails with ErrTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Store, _ *[]datastore.Option) {
		s.timeout = d
	}
}

// WithObserver routes the underlying store's events to obs.
func WithObserver(obs observability.Observer) Option {
	return func(_ *Store, dsOpts *[]datastore.Option) {
		*dsOpts = append(*dsOpts, datastore.WithObserver(obs))
	}
}

// Open binds to the preference store identified by name under dir, creating
// it if absent. Opening the same name twice returns a facade over the same
// handle; opening it under a different directory fails with
// datastore.ErrHandleConflict.
func Open(dir, name string, opts ...Option) (*Store, error) {
	s := &Store{}
	var dsOpts []datastore.Option
	for _, opt := range opts {
		opt(s, &dsOpts)
	}

	ds, err := datastore.Open(dir, name, dsOpts...)
	if err != nil {
		return nil, err
	}
	s.ds = ds
	return s, nil
}

// Put stores v under key in the slot matching v's dynamic type. The types
// int, int32 and int64 all land in the int64 slot; string, bool, float32 and
// float64 each have their own. Any other type fails with
// value.ErrUnsupportedType. Put blocks until the commit is durable.
func (s *Store) Put(key string, v any) error {
	val, err := value.FromAny(v)
	if err != nil {
		return err
	}
	return s.PutValue(key, val)
}

// PutValue stores an explicitly tagged value, making the unsupported-type
// failure path unreachable for callers that construct values directly.
func (s *Store) PutValue(key string, v value.Value) error {
	if v.IsZero() {
		return fmt.Errorf("%w: zero value", value.ErrUnsupportedType)
	}
	ctx, cancel := s.opCtx()
	defer cancel()

	_, err := s.ds.Update(ctx, func(t *datastore.Txn) error {
		t.Set(key, v)
		return nil
	})
	return s.wrapErr(err)
}

// Get returns the value stored under key in the slot selected by def's
// dynamic type, or def unchanged when the slot is empty. The supported
// types are those of Put; anything else fails with value.ErrUnsupportedType.
func (s *Store) Get(key string, def any) (any, error) {
	dv, err := value.FromAny(def)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	v, ok := snap.Lookup(key, dv.Kind())
	if !ok {
		return def, nil
	}

	// Narrow the stored int64 back to the default's declared width so the
	// result always carries def's dynamic type.
	switch def.(type) {
	case int:
		return int(v.Int64()), nil
	case int32:
		return int32(v.Int64()), nil
	default:
		return v.Any(), nil
	}
}

// GetInt reads the int64 slot and narrows the result to int.
func (s *Store) GetInt(key string, def int) (int, error) {
	v, err := s.GetInt64(key, int64(def))
	return int(v), err
}

// GetInt64 returns the int64 stored under key, or def when absent.
func (s *Store) GetInt64(key string, def int64) (int64, error) {
	snap, err := s.snapshot()
	if err != nil {
		return def, err
	}
	if v, ok := snap.Lookup(key, value.KindInt64); ok {
		return v.Int64(), nil
	}
	return def, nil
}

// GetString returns the string stored under key. The default is optional:
// with one supplied, an absent key returns it; with none, an absent key
// fails with ErrNoValue.
func (s *Store) GetString(key string, def ...string) (string, error) {
	snap, err := s.snapshot()
	if err != nil {
		return "", err
	}
	if v, ok := snap.Lookup(key, value.KindString); ok {
		return v.Str(), nil
	}
	if len(def) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoValue, key)
	}
	return def[0], nil
}

// GetBool returns the bool stored under key, or def when absent.
func (s *Store) GetBool(key string, def bool) (bool, error) {
	snap, err := s.snapshot()
	if err != nil {
		return def, err
	}
	if v, ok := snap.Lookup(key, value.KindBool); ok {
		return v.Bool(), nil
	}
	return def, nil
}

// GetFloat32 returns the float32 stored under key, or def when absent.
func (s *Store) GetFloat32(key string, def float32) (float32, error) {
	snap, err := s.snapshot()
	if err != nil {
		return def, err
	}
	if v, ok := snap.Lookup(key, value.KindFloat32); ok {
		return v.Float32(), nil
	}
	return def, nil
}

// GetFloat64 returns the float64 stored under key, or def when absent.
func (s *Store) GetFloat64(key string, def float64) (float64, error) {
	snap, err := s.snapshot()
	if err != nil {
		return def, err
	}
	if v, ok := snap.Lookup(key, value.KindFloat64); ok {
		return v.Float64(), nil
	}
	return def, nil
}

// Keys returns the sorted distinct key names currently stored.
func (s *Store) Keys() ([]string, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Keys(), nil
}

// Clear removes every entry in one transaction and blocks until the empty
// state is durable.
func (s *Store) Clear() error {
	ctx, cancel := s.opCtx()
	defer cancel()

	_, err := s.ds.Update(ctx, func(t *datastore.Txn) error {
		t.Clear()
		return nil
	})
	return s.wrapErr(err)
}

// Watch exposes the underlying snapshot stream, for callers that want to
// react to commits instead of polling.
func (s *Store) Watch(ctx context.Context) (<-chan *datastore.Snapshot, error) {
	return s.ds.Watch(ctx)
}

// Close releases the underlying store handle.
func (s *Store) Close() error {
	return s.ds.Close()
}

func (s *Store) snapshot() (*datastore.Snapshot, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	snap, err := s.ds.Snapshot(ctx)
	if err != nil {
		return nil, s.wrapErr(err)
	}
	return snap, nil
}

func (s *Store) opCtx() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Store) wrapErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrTimeout, s.timeout, err)
	}
	return err
}
