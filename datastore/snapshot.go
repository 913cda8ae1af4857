package datastore

import (
	"sort"

	"github.com/prefstore/prefstore/value"
)

// slot addresses one storage location. The same key under different kinds
// occupies distinct slots.
type slot struct {
	key  string
	kind value.Kind
}

// Snapshot is an immutable point-in-time view of all entries in a store.
// A Snapshot never changes after it is published; later commits produce new
// Snapshots.
type Snapshot struct {
	entries    map[slot]value.Value
	generation uint64
	txnID      string
}

// Lookup returns the value stored under (key, kind), if any.
func (s *Snapshot) Lookup(key string, kind value.Kind) (value.Value, bool) {
	v, ok := s.entries[slot{key: key, kind: kind}]
	return v, ok
}

// Len returns the number of entries across all slots.
func (s *Snapshot) Len() int { return len(s.entries) }

// Keys returns the sorted set of distinct key names. A key present under
// several kinds appears once.
func (s *Snapshot) Keys() []string {
	seen := make(map[string]bool, len(s.entries))
	for sl := range s.entries {
		seen[sl.key] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Generation is the commit counter for this store handle. It starts at zero
// for the state loaded from disk and increments once per committed
// transaction.
func (s *Snapshot) Generation() uint64 { return s.generation }

// TxnID identifies the transaction that produced this snapshot. It is empty
// for the snapshot loaded at open time.
func (s *Snapshot) TxnID() string { return s.txnID }

// Txn is the mutable view a transaction function edits. It starts as a copy
// of the current snapshot; changes become visible only if the function
// returns nil and the commit is persisted.
type Txn struct {
	entries map[slot]value.Value
}

func newTxn(base *Snapshot) *Txn {
	entries := make(map[slot]value.Value, len(base.entries))
	for sl, v := range base.entries {
		entries[sl] = v
	}
	return &Txn{entries: entries}
}

// Set stores v in the slot addressed by key and v's kind. The zero Value is
// ignored.
func (t *Txn) Set(key string, v value.Value) {
	if v.IsZero() {
		return
	}
	t.entries[slot{key: key, kind: v.Kind()}] = v
}

// Remove deletes the entry under (key, kind). Missing entries are ignored.
func (t *Txn) Remove(key string, kind value.Kind) {
	delete(t.entries, slot{key: key, kind: kind})
}

// Clear removes every entry.
func (t *Txn) Clear() {
	t.entries = make(map[slot]value.Value)
}

// Lookup returns the value currently in the transaction view under
// (key, kind), including uncommitted edits.
func (t *Txn) Lookup(key string, kind value.Kind) (value.Value, bool) {
	v, ok := t.entries[slot{key: key, kind: kind}]
	return v, ok
}
