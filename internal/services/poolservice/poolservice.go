// Package poolservice defines the on-chain collaborator surface the
// monitors act through, plus an in-memory simulator implementation.
package poolservice

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
)

// TxResult is the outcome of a submitted transaction.
type TxResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
}

// FeesResult is the outcome of a fee collection.
type FeesResult struct {
	TxResult
	FeesCollected decimal.Decimal `json:"feesCollected"`
}

// RebalanceResult is the outcome of a close-and-reopen rebalance.
type RebalanceResult struct {
	TxResult
	OldRange domain.PriceRange `json:"oldRange"`
	NewRange domain.PriceRange `json:"newRange"`
}

// Service is the pool collaborator. Calls submit transactions and block
// until confirmation or failure.
type Service interface {
	ListPools(ctx context.Context) ([]domain.Pool, error)
	ListPositions(ctx context.Context, owner string) ([]domain.Position, error)
	CreatePosition(ctx context.Context, poolAddress string, lower, upper, amountX, amountY decimal.Decimal) (TxResult, error)
	RemoveLiquidity(ctx context.Context, positionID string, percent decimal.Decimal) (TxResult, error)
	CollectFees(ctx context.Context, positionID string) (FeesResult, error)
	RebalancePosition(ctx context.Context, positionID string, newRangeWidthPercent decimal.Decimal) (RebalanceResult, error)
}
