// Package rebalance persists auto-rebalance configs and the rebalance
// event history.
package rebalance

import (
	"encoding/json"
	"errors"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
	"github.com/Blessedbiello/dlmm-pro-manager/internal/storage/kv"
)

const (
	configsKey = "autoRebalanceConfigs"
	historyKey = "rebalanceHistory"

	// HistoryLimit caps the stored event history, newest first.
	HistoryLimit = 50
)

// Store keeps per-position configs as a JSON map and the event history
// as a JSON array under fixed logical keys. Missing keys read as empty.
type Store struct {
	mu sync.Mutex
	kv kv.Store
}

// NewStore wraps the given key-value backend.
func NewStore(backend kv.Store) *Store {
	return &Store{kv: backend}
}

// Configs returns all stored configs keyed by position id.
func (s *Store) Configs() (map[string]domain.AutoRebalanceConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadConfigs()
}

// Config returns the config for a position, if one is stored.
func (s *Store) Config(positionID string) (domain.AutoRebalanceConfig, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.loadConfigs()
	if err != nil {
		return domain.AutoRebalanceConfig{}, false, err
	}
	cfg, ok := configs[positionID]
	return cfg, ok, nil
}

// SetConfig stores or replaces the config for its position.
func (s *Store) SetConfig(cfg domain.AutoRebalanceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.loadConfigs()
	if err != nil {
		return err
	}
	configs[cfg.PositionID] = cfg
	return s.saveConfigs(configs)
}

// RemoveConfig deletes the config for a position. Removing a missing
// config is a no-op.
func (s *Store) RemoveConfig(positionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.loadConfigs()
	if err != nil {
		return err
	}
	if _, ok := configs[positionID]; !ok {
		return nil
	}
	delete(configs, positionID)
	return s.saveConfigs(configs)
}

// History returns the stored events, newest first.
func (s *Store) History() ([]domain.RebalanceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadHistory()
}

// RecordEvent prepends the event to the history, trimming to
// HistoryLimit. On success it also advances the position's
// LastRebalanceTime to the event timestamp; failed events leave the
// cooldown untouched.
func (s *Store) RecordEvent(ev domain.RebalanceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.loadHistory()
	if err != nil {
		return err
	}
	history = append([]domain.RebalanceEvent{ev}, history...)
	if len(history) > HistoryLimit {
		history = history[:HistoryLimit]
	}
	if err := s.saveHistory(history); err != nil {
		return err
	}

	if !ev.Success {
		return nil
	}

	configs, err := s.loadConfigs()
	if err != nil {
		return err
	}
	cfg, ok := configs[ev.PositionID]
	if !ok {
		return nil
	}
	if cfg.LastRebalanceTime == nil || cfg.LastRebalanceTime.Before(ev.Timestamp) {
		ts := ev.Timestamp
		cfg.LastRebalanceTime = &ts
		configs[ev.PositionID] = cfg
		return s.saveConfigs(configs)
	}
	return nil
}

func (s *Store) loadConfigs() (map[string]domain.AutoRebalanceConfig, error) {
	raw, err := s.kv.Get(configsKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return make(map[string]domain.AutoRebalanceConfig), nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load rebalance configs")
	}

	configs := make(map[string]domain.AutoRebalanceConfig)
	if err := json.Unmarshal(raw, &configs); err != nil {
		return nil, pkgerrors.Wrap(err, "decode rebalance configs")
	}
	return configs, nil
}

func (s *Store) saveConfigs(configs map[string]domain.AutoRebalanceConfig) error {
	raw, err := json.Marshal(configs)
	if err != nil {
		return pkgerrors.Wrap(err, "encode rebalance configs")
	}
	return pkgerrors.Wrap(s.kv.Set(configsKey, raw), "save rebalance configs")
}

func (s *Store) loadHistory() ([]domain.RebalanceEvent, error) {
	raw, err := s.kv.Get(historyKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load rebalance history")
	}

	var history []domain.RebalanceEvent
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, pkgerrors.Wrap(err, "decode rebalance history")
	}
	return history, nil
}

func (s *Store) saveHistory(history []domain.RebalanceEvent) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return pkgerrors.Wrap(err, "encode rebalance history")
	}
	return pkgerrors.Wrap(s.kv.Set(historyKey, raw), "save rebalance history")
}
