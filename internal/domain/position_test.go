package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPositionIsOutOfRange(t *testing.T) {
	p := Position{LowerPrice: dec("90"), UpperPrice: dec("110")}

	tests := []struct {
		name  string
		price string
		out   bool
	}{
		{"below lower", "89.99", true},
		{"at lower bound", "90", false},
		{"inside", "100", false},
		{"at upper bound", "110", false},
		{"above upper", "110.01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.out, p.IsOutOfRange(dec(tt.price)))
		})
	}
}

func TestPositionDeviationPercent(t *testing.T) {
	p := Position{LowerPrice: dec("90"), UpperPrice: dec("110")}

	require.True(t, p.RangeCenter().Equal(dec("100")))
	require.True(t, p.DeviationPercent(dec("105")).Equal(dec("5")))
	require.True(t, p.DeviationPercent(dec("95")).Equal(dec("5")))
	require.True(t, p.DeviationPercent(dec("100")).IsZero())

	zero := Position{}
	require.True(t, zero.DeviationPercent(dec("100")).IsZero())
}

func TestPositionCurrentValue(t *testing.T) {
	p := Position{TokenXAmount: dec("2"), TokenYAmount: dec("50")}
	require.True(t, p.CurrentValue(dec("100")).Equal(dec("250")))
}

func TestEntrySnapshotPnL(t *testing.T) {
	s := EntrySnapshot{InitialValue: dec("1000")}
	require.True(t, s.PnL(dec("1100")).Equal(dec("100")))
	require.True(t, s.PnL(dec("900")).Equal(dec("-100")))
}

func TestEntrySnapshotAPY(t *testing.T) {
	opened := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := EntrySnapshot{InitialValue: dec("1000"), Time: opened}

	// 10% gain over 73 days annualizes to 50%.
	now := opened.AddDate(0, 0, 73)
	apy := s.APY(dec("1100"), decimal.Zero, now)
	require.InDelta(t, 50.0, apy.InexactFloat64(), 1e-9)

	require.True(t, s.APY(dec("1100"), decimal.Zero, opened).IsZero())
	require.True(t, EntrySnapshot{}.APY(dec("1100"), decimal.Zero, now).IsZero())
}

func TestPoolPriceForBin(t *testing.T) {
	pool := Pool{BinStep: 100} // 1% per bin

	require.InDelta(t, 1.0, pool.PriceForBin(0).InexactFloat64(), 1e-12)
	require.InDelta(t, 1.01, pool.PriceForBin(1).InexactFloat64(), 1e-12)
	require.InDelta(t, 1.0/1.01, pool.PriceForBin(-1).InexactFloat64(), 1e-12)

	// round-trip through BinForPrice
	for _, bin := range []int32{-50, -1, 0, 1, 25, 200} {
		require.Equal(t, bin, pool.BinForPrice(pool.PriceForBin(bin)))
	}

	require.Equal(t, int32(0), Pool{}.BinForPrice(dec("123")))
}
