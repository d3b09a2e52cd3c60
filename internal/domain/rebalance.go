package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AutoRebalanceConfig holds the per-position auto-rebalance settings.
type AutoRebalanceConfig struct {
	PositionID               string          `json:"positionId"`
	Enabled                  bool            `json:"enabled"`
	PriceDeviationThreshold  decimal.Decimal `json:"priceDeviationThreshold"`
	NewRangeWidth            decimal.Decimal `json:"newRangeWidth"`
	MinTimeBetweenRebalances int64           `json:"minTimeBetweenRebalances"`
	CompoundFees             bool            `json:"compoundFees"`
	LastRebalanceTime        *time.Time      `json:"lastRebalanceTime,omitempty"`
}

// CoolingDown reports whether the cooldown window since the last
// successful rebalance is still open at the given instant.
func (c AutoRebalanceConfig) CoolingDown(now time.Time) bool {
	if c.LastRebalanceTime == nil {
		return false
	}

	return now.Sub(*c.LastRebalanceTime) < time.Duration(c.MinTimeBetweenRebalances)*time.Minute
}

// RebalanceEvent records one rebalance attempt, successful or not.
// Failed attempts carry the old range, a zero new range and no tx hash.
type RebalanceEvent struct {
	ID         string     `json:"id"`
	PositionID string     `json:"positionId"`
	Timestamp  time.Time  `json:"timestamp"`
	OldRange   PriceRange `json:"oldRange"`
	NewRange   PriceRange `json:"newRange"`
	TxHash     string     `json:"txHash"`
	Success    bool       `json:"success"`
}
