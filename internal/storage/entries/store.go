// Package entries persists per-position entry snapshots used for PnL
// and APY derivation.
package entries

import (
	"encoding/json"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/kv"
)

// Store keeps one snapshot per position under position_entry_<id>.
type Store struct {
	kv kv.Store
}

// NewStore wraps the given key-value backend.
func NewStore(backend kv.Store) *Store {
	return &Store{kv: backend}
}

func entryKey(positionID string) string {
	return fmt.Sprintf("position_entry_%s", positionID)
}

// Save stores the entry snapshot for a position.
func (s *Store) Save(positionID string, snap domain.EntrySnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return pkgerrors.Wrap(err, "encode entry snapshot")
	}
	return pkgerrors.Wrapf(s.kv.Set(entryKey(positionID), raw), "save entry for %s", positionID)
}

// Get returns the snapshot for a position, if one was saved.
func (s *Store) Get(positionID string) (domain.EntrySnapshot, bool, error) {
	raw, err := s.kv.Get(entryKey(positionID))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return domain.EntrySnapshot{}, false, nil
	}
	if err != nil {
		return domain.EntrySnapshot{}, false, pkgerrors.Wrapf(err, "load entry for %s", positionID)
	}

	var snap domain.EntrySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.EntrySnapshot{}, false, pkgerrors.Wrap(err, "decode entry snapshot")
	}
	return snap, true, nil
}

// Delete removes the snapshot when a position closes.
func (s *Store) Delete(positionID string) error {
	return pkgerrors.Wrapf(s.kv.Delete(entryKey(positionID)), "delete entry for %s", positionID)
}
