// Package journal keeps an append-only audit log of rebalance and order
// events, backed by a WAL. The dashboard streams it incrementally.
package journal

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
)

const (
	DefaultDir   = "./wal/audit"
	segmentLimit = 1000
	maxSegments  = 100

	rebalanceKeyPrefix = "rebalance_event_"
	orderKeyPrefix     = "order_event_"
)

// RecordKind tags a journal record payload.
type RecordKind string

const (
	KindRebalance RecordKind = "rebalance"
	KindOrder     RecordKind = "order"
)

// Record is one audit entry together with its WAL index.
type Record struct {
	Index   uint64          `json:"index"`
	Kind    RecordKind      `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Store is the WAL-backed audit journal.
type Store struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewStore initializes the journal under dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "audit_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init audit journal")
	}
	return &Store{wal: wal}, nil
}

// AppendRebalance writes a rebalance event to the journal.
func (s *Store) AppendRebalance(ev domain.RebalanceEvent) error {
	if s == nil || s.wal == nil {
		return errors.New("journal is not initialized")
	}
	if ev.PositionID == "" {
		return errors.New("rebalance event position id is required")
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal rebalance event")
	}
	return s.append(fmt.Sprintf("%s%s", rebalanceKeyPrefix, ev.ID), payload)
}

// AppendOrder writes an order outcome to the journal.
func (s *Store) AppendOrder(o domain.Order) error {
	if s == nil || s.wal == nil {
		return errors.New("journal is not initialized")
	}
	if o.ID == "" {
		return errors.New("order id is required")
	}

	payload, err := json.Marshal(o)
	if err != nil {
		return errors.Wrap(err, "marshal order event")
	}
	return s.append(fmt.Sprintf("%s%s", orderKeyPrefix, o.ID), payload)
}

func (s *Store) append(key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// EventsAfter returns all records written after the given WAL index.
func (s *Store) EventsAfter(index uint64) ([]Record, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]Record, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}

		var kind RecordKind
		switch {
		case strings.HasPrefix(key, rebalanceKeyPrefix):
			kind = KindRebalance
		case strings.HasPrefix(key, orderKeyPrefix):
			kind = KindOrder
		default:
			continue
		}

		records = append(records, Record{Index: idx, Kind: kind, Payload: payload})
	}
	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *Store) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *Store) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
