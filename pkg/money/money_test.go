package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tiketi/pkg/money"
)

func TestFee(t *testing.T) {
	tests := []struct {
		name     string
		netCents int64
		percent  float64
		want     int64
	}{
		{"five percent of a million", 1_000_000, 5, 50_000},
		{"ten percent after discount", 1_800_000, 10, 180_000},
		{"zero percent", 1_000_000, 0, 0},
		{"zero net", 0, 10, 0},
		{"negative net", -500, 10, 0},
		{"fractional percent stays exact", 10_000, 2.5, 250},
		{"rounds half up", 101, 5, 5}, // 5.05 -> 5
		{"rounds half away from zero", 110, 5, 6}, // 5.5 -> 6
		{"full percent", 123_456, 100, 123_456},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, money.Fee(tt.netCents, tt.percent))
		})
	}
}

func TestValidPercent(t *testing.T) {
	assert.True(t, money.ValidPercent(0))
	assert.True(t, money.ValidPercent(5.5))
	assert.True(t, money.ValidPercent(100))
	assert.False(t, money.ValidPercent(-0.1))
	assert.False(t, money.ValidPercent(100.1))
}
