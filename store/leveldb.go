package store

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBBackend is a Backend over an embedded goleveldb database, the
// production stand-in for db.rs's RocksDB handle.
type LevelDBBackend struct {
	db *leveldb.DB
}

// OpenLevelDBBackend opens (creating if absent) a goleveldb database at
// path.
func OpenLevelDBBackend(path string) (*LevelDBBackend, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBBackend{db: db}, nil
}

func (l *LevelDBBackend) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (l *LevelDBBackend) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDBBackend) Close() error {
	return l.db.Close()
}
