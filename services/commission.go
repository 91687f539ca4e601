package services

import (
	"github.com/shopspring/decimal"
)

// SplitAmount divides a gross amount in minor currency units into the
// platform commission and the creator payout. The commission is
// round(total * rate / 100) with half rounded up; the creator amount is the
// remainder, so the two halves always reconcile to the total exactly.
func SplitAmount(total, ratePercent int64) (commission, creator int64) {
	commission = (total*ratePercent + 50) / 100
	creator = total - commission
	return commission, creator
}

// MinorUnits converts a decimal price to minor currency units (two decimal
// places), rounding half away from zero. Prices are stored as fixed-point
// decimals; all ledger arithmetic happens on the integer result.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
