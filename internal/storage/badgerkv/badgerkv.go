// Package badgerkv persists the logical key-value store in BadgerDB.
package badgerkv

import (
	"errors"

	"github.com/dgraph-io/badger/v3"
	pkgerrors "github.com/pkg/errors"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/kv"
)

// Store is the BadgerDB-backed kv.Store.
type Store struct {
	db *badger.DB
}

// Open opens or creates the database at dir. Badger's own logger is
// silenced, errors still surface from the operations.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open badger at %s", dir)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, kv.ErrKeyNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "get %s", key)
	}
	return value, nil
}

func (s *Store) Set(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	return pkgerrors.Wrapf(err, "set %s", key)
}

func (s *Store) Has(key string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.Wrapf(err, "has %s", key)
	}
	return true, nil
}

func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	return pkgerrors.Wrapf(err, "delete %s", key)
}

func (s *Store) Close() error {
	return s.db.Close()
}
