// Package orders persists advanced orders and enforces their lifecycle.
package orders

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/kv"
)

const ordersKey = "dlmm_orders"

// ErrOrderNotFound is returned when an order id is unknown.
var ErrOrderNotFound = errors.New("order not found")

// Store keeps all orders as one JSON array under a fixed logical key.
type Store struct {
	mu  sync.Mutex
	kv  kv.Store
	now func() time.Time
}

// NewStore wraps the given key-value backend.
func NewStore(backend kv.Store) *Store {
	return &Store{kv: backend, now: time.Now}
}

// SetClock overrides the time source, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// List returns all stored orders in insertion order.
func (s *Store) List() ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Pending returns the orders still awaiting evaluation.
func (s *Store) Pending() ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}
	var pending []domain.Order
	for _, o := range all {
		if o.Status == domain.OrderPending {
			pending = append(pending, o)
		}
	}
	return pending, nil
}

// Get returns the order with the given id.
func (s *Store) Get(id string) (domain.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return domain.Order{}, false, err
	}
	for _, o := range all {
		if o.ID == id {
			return o, true, nil
		}
	}
	return domain.Order{}, false, nil
}

// Add appends a new order.
func (s *Store) Add(o domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	all = append(all, o)
	return s.save(all)
}

// Transition moves an order to a new status through the domain state
// machine and persists the result. txID is recorded on execution.
func (s *Store) Transition(id string, to domain.OrderStatus, txID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		if err := all[i].Transition(to, s.now()); err != nil {
			return err
		}
		if to == domain.OrderExecuted {
			all[i].TransactionID = txID
		}
		return s.save(all)
	}
	return pkgerrors.Wrap(ErrOrderNotFound, id)
}

// Cancel marks a pending order cancelled.
func (s *Store) Cancel(id string) error {
	return s.Transition(id, domain.OrderCancelled, "")
}

// PurgeExpired cancels every pending order whose expiry has passed and
// returns how many were cancelled.
func (s *Store) PurgeExpired(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return 0, err
	}
	purged := 0
	for i := range all {
		if all[i].Status != domain.OrderPending || !all[i].IsExpired(now) {
			continue
		}
		if err := all[i].Transition(domain.OrderCancelled, now); err != nil {
			return purged, err
		}
		purged++
	}
	if purged == 0 {
		return 0, nil
	}
	return purged, s.save(all)
}

func (s *Store) load() ([]domain.Order, error) {
	raw, err := s.kv.Get(ordersKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load orders")
	}

	var all []domain.Order
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, pkgerrors.Wrap(err, "decode orders")
	}
	return all, nil
}

func (s *Store) save(all []domain.Order) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return pkgerrors.Wrap(err, "encode orders")
	}
	return pkgerrors.Wrap(s.kv.Set(ordersKey, raw), "save orders")
}
