package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSplitAmount(t *testing.T) {
	tests := []struct {
		name           string
		total          int64
		rate           int64
		wantCommission int64
		wantCreator    int64
	}{
		{"five percent of 2000", 2000, 5, 100, 1900},
		{"zero rate", 2000, 0, 0, 2000},
		{"full rate", 2000, 100, 2000, 0},
		{"zero total", 0, 5, 0, 0},
		{"rounds half up", 1050, 5, 53, 997}, // 52.5 -> 53
		{"rounds down below half", 1040, 5, 52, 988},
		{"one minor unit", 1, 50, 1, 0}, // 0.5 -> 1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commission, creator := SplitAmount(tt.total, tt.rate)
			assert.Equal(t, tt.wantCommission, commission)
			assert.Equal(t, tt.wantCreator, creator)
		})
	}
}

// The two halves must reconcile to the total exactly for every total and
// rate in range — no independent rounding of both sides.
func TestSplitAmount_ExactReconciliation(t *testing.T) {
	for rate := int64(0); rate <= 100; rate++ {
		for _, total := range []int64{0, 1, 2, 3, 7, 99, 100, 101, 999, 1000,
			1050, 12345, 99999, 1000000} {
			commission, creator := SplitAmount(total, rate)

			assert.Equal(t, total, commission+creator,
				"total=%d rate=%d", total, rate)
			assert.GreaterOrEqual(t, commission, int64(0), "total=%d rate=%d", total, rate)
			assert.GreaterOrEqual(t, creator, int64(0), "total=%d rate=%d", total, rate)
			assert.LessOrEqual(t, commission, total, "total=%d rate=%d", total, rate)
		}
	}
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(100000), MinorUnits(decimal.RequireFromString("1000")))
	assert.Equal(t, int64(1050), MinorUnits(decimal.RequireFromString("10.50")))
	assert.Equal(t, int64(1), MinorUnits(decimal.RequireFromString("0.01")))
	assert.Equal(t, int64(0), MinorUnits(decimal.Zero))
	// sub-minor precision rounds half away from zero
	assert.Equal(t, int64(1056), MinorUnits(decimal.RequireFromString("10.555")))
}
