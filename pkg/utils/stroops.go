package utils

import (
	"errors"
	"math"
	"math/big"
)

// StroopsPerUnit is the number of stroops in one native unit
const StroopsPerUnit = 10_000_000

// MaxStroops is the largest amount an i128 contract argument can carry
var MaxStroops = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))

var (
	ErrAmountNotFinite = errors.New("amount must be a finite number")
	ErrAmountTooLarge  = errors.New("amount exceeds the ledger range")
)

// ToStroops converts a display amount to ledger units, rounding half away from zero
func ToStroops(amount float64) (*big.Int, error) {
	scaled := math.Round(amount * StroopsPerUnit)
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
		return nil, ErrAmountNotFinite
	}
	// a rounded float64 is integral, so the conversion is exact
	out, _ := big.NewFloat(scaled).Int(nil)
	if new(big.Int).Abs(out).Cmp(MaxStroops) > 0 {
		return nil, ErrAmountTooLarge
	}
	return out, nil
}

// FromStroops converts ledger units to a display amount
func FromStroops(stroops *big.Int) float64 {
	if stroops == nil {
		return 0
	}
	f, _ := new(big.Rat).SetFrac(stroops, big.NewInt(StroopsPerUnit)).Float64()
	return f
}
