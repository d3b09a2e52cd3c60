package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

const binStepDenominator = 10000

// TokenInfo describes one side of a pool pair.
type TokenInfo struct {
	Symbol   string `json:"symbol"`
	Mint     string `json:"mint"`
	Decimals uint8  `json:"decimals"`
}

// Pool is an immutable snapshot of a DLMM pool at observation time.
type Pool struct {
	Address      string          `json:"address"`
	TokenX       TokenInfo       `json:"tokenX"`
	TokenY       TokenInfo       `json:"tokenY"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	TVL          decimal.Decimal `json:"tvl"`
	Volume24h    decimal.Decimal `json:"volume24h"`
	Fees24h      decimal.Decimal `json:"fees24h"`
	BinStep      uint16          `json:"binStep"`
	ActiveBinID  int32           `json:"activeBinId"`
}

// PriceForBin converts a bin id to its price: (1 + binStep/10000)^binID.
func (p Pool) PriceForBin(binID int32) decimal.Decimal {
	base := 1 + float64(p.BinStep)/binStepDenominator
	return decimal.NewFromFloat(math.Pow(base, float64(binID)))
}

// BinForPrice returns the bin id whose price is closest to the given price.
func (p Pool) BinForPrice(price decimal.Decimal) int32 {
	if p.BinStep == 0 || !price.IsPositive() {
		return 0
	}
	base := 1 + float64(p.BinStep)/binStepDenominator
	f, _ := price.Float64()

	return int32(math.Round(math.Log(f) / math.Log(base)))
}
