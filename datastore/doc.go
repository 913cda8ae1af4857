// Package datastore implements a durable, transactional key-value store for
// typed preference values. Each store is identified by a process-unique name
// and persists to a single file. All state is owned by one goroutine per
// store; public operations send requests to it and wait for the reply, so
// transactional edits are serialized into a total order and reads observe
// consistent snapshots.
package datastore
