// Package store implements the persistent token ledger: a FIFO queue of
// issued (token, signed point) pairs, which the client keeps, plus a
// spent-token set, which the server uses to reject replayed redemptions.
//
// Ported from original_source/src/db.rs's DAL, generalized from a single
// RocksDB handle onto a small Backend interface so the same Store logic
// runs over an in-memory map (tests) or github.com/syndtr/goleveldb
// (production) — see DESIGN.md for why goleveldb was chosen to fill the
// RocksDB binding's role.
package store

import "errors"

// ErrKeyNotFound is returned by Backend.Get when no value is stored under
// the given key. Implementations translate their own not-found signal
// (a nil slice, a driver-specific error) into this sentinel.
var ErrKeyNotFound = errors.New("store: key not found")

// Backend is the minimal key-value contract the token ledger is built on.
type Backend interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Close() error
}
