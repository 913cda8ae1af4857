package datastore

import "errors"

// Sentinel errors for store operations.
var (
	// ErrHandleConflict is returned by Open when the name is already bound
	// to a store with an incompatible configuration in this process.
	ErrHandleConflict = errors.New("store name already bound")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")
	// ErrCorrupt is returned when the persisted snapshot cannot be decoded.
	ErrCorrupt = errors.New("corrupt snapshot file")
)
