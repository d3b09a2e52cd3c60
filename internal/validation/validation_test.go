package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Blessedbiello/dlmm-pro-manager/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPriceRange(t *testing.T) {
	tests := []struct {
		name                  string
		lower, upper, current string
		valid                 bool
		errContains           string
	}{
		{"valid range", "90", "110", "100", true, ""},
		{"zero lower", "0", "110", "100", false, "positive"},
		{"negative upper", "90", "-1", "100", false, "positive"},
		{"inverted bounds", "110", "90", "100", false, "less than upper"},
		{"equal bounds", "100", "100", "100", false, "less than upper"},
		{"current below range", "90", "110", "89", false, "outside"},
		{"current above range", "90", "110", "111", false, "outside"},
		{"too narrow", "100", "100.5", "100.2", false, "narrow"},
		{"too wide", "100", "250", "150", false, "wide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := PriceRange(dec(tt.lower), dec(tt.upper), dec(tt.current))
			require.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				require.Contains(t, res.Error, tt.errContains)
			}

			// same inputs, same verdict
			again := PriceRange(dec(tt.lower), dec(tt.upper), dec(tt.current))
			require.Equal(t, res, again)
		})
	}
}

func TestTokenAmounts(t *testing.T) {
	min, max := DefaultMinTokenAmount, DefaultMaxTokenAmount

	require.True(t, TokenAmounts(dec("1"), dec("0"), min, max).Valid)
	require.True(t, TokenAmounts(dec("0"), dec("0.001"), min, max).Valid)
	require.False(t, TokenAmounts(dec("-1"), dec("1"), min, max).Valid)
	require.False(t, TokenAmounts(dec("0"), dec("0"), min, max).Valid)
	require.False(t, TokenAmounts(dec("1000001"), dec("1"), min, max).Valid)
}

func TestSlippage(t *testing.T) {
	require.True(t, Slippage(dec("100"), dec("100.4"), dec("0.5")).Valid)
	require.True(t, Slippage(dec("100"), dec("100.5"), dec("0.5")).Valid)
	require.False(t, Slippage(dec("100"), dec("101"), dec("0.5")).Valid)
	require.True(t, SlippagePercent(dec("0"), dec("5")).IsZero())
}

func TestBalance(t *testing.T) {
	require.True(t, Balance(dec("5"), dec("10"), "USDC").Valid)
	require.False(t, Balance(dec("11"), dec("10"), "USDC").Valid)

	// native asset keeps a fee reserve
	require.False(t, Balance(dec("10"), dec("10"), "SOL").Valid)
	require.True(t, Balance(dec("9.98"), dec("10"), "SOL").Valid)
}

func TestRebalanceConfig(t *testing.T) {
	require.True(t, RebalanceConfig(dec("5"), dec("10"), 60).Valid)
	require.False(t, RebalanceConfig(dec("0.5"), dec("10"), 60).Valid)
	require.False(t, RebalanceConfig(dec("51"), dec("10"), 60).Valid)
	require.False(t, RebalanceConfig(dec("5"), dec("4"), 60).Valid)
	require.False(t, RebalanceConfig(dec("5"), dec("101"), 60).Valid)
	require.False(t, RebalanceConfig(dec("5"), dec("10"), 0).Valid)
	require.False(t, RebalanceConfig(dec("5"), dec("10"), 24*60+1).Valid)
}

func TestOrderParams(t *testing.T) {
	current := dec("100")

	tests := []struct {
		name   string
		kind   domain.OrderKind
		target string
		valid  bool
	}{
		{"limit far enough", domain.OrderLimit, "101", true},
		{"limit too close", domain.OrderLimit, "100.05", false},
		{"limit non-positive", domain.OrderLimit, "0", false},
		{"stop loss below", domain.OrderStopLoss, "90", true},
		{"stop loss at current", domain.OrderStopLoss, "100", false},
		{"stop loss above", domain.OrderStopLoss, "110", false},
		{"take profit above", domain.OrderTakeProfit, "110", true},
		{"take profit at current", domain.OrderTakeProfit, "100", false},
		{"take profit below", domain.OrderTakeProfit, "90", false},
		{"dca any positive", domain.OrderDCA, "1", true},
		{"unknown kind", domain.OrderKind("bogus"), "100", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.valid, OrderParams(tt.kind, dec(tt.target), current).Valid)
		})
	}
}

func TestEstimateGasCost(t *testing.T) {
	base := dec("0.000005")

	require.True(t, EstimateGasCost(OpCreatePosition).Equal(base.Mul(dec("2"))))
	require.True(t, EstimateGasCost(OpRemoveLiquidity).Equal(base.Mul(dec("1.5"))))
	require.True(t, EstimateGasCost(OpRebalance).Equal(base.Mul(dec("3.5"))))
	require.True(t, EstimateGasCost(OpCollectFees).Equal(base))
}

func TestEconomical(t *testing.T) {
	gas := EstimateGasCost(OpRebalance)

	require.True(t, Economical(gas.Mul(dec("2")), gas, DefaultProfitMultiplier).Valid)
	require.False(t, Economical(gas.Mul(dec("1.9")), gas, DefaultProfitMultiplier).Valid)
}
