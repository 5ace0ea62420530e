package tariff

import (
	"fmt"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalePrice(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{"decimal comma", "0,1234", 1234},
		{"decimal point", "0.2345", 2345},
		{"integer", "12", 120000},
		{"trailing zeros", "120,00", 1200000},
		{"round half up", "0,00005", 1},
		{"round down", "0,00004", 0},
		{"thousands grouping", "1 234,5", 12345000},
		{"nbsp grouping", "1\u00a0234,5", 12345000},
		{"surrounding space", "  0,25 ", 2500},
		{"zero", "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScalePrice(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScalePrice_Invalid(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "1,2,3", "12€"} {
		t.Run(in, func(t *testing.T) {
			_, err := ScalePrice(in)
			assert.Error(t, err)
		})
	}
}

func TestScalePrice_MatchesArbitraryPrecision(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for range 2000 {
		whole := rng.Intn(1000)
		frac := rng.Intn(10000)
		in := fmt.Sprintf("%d,%04d", whole, frac)

		got, err := ScalePrice(in)
		require.NoError(t, err)

		exact, ok := new(big.Rat).SetString(fmt.Sprintf("%d.%04d", whole, frac))
		require.True(t, ok)
		exact.Mul(exact, big.NewRat(PriceScale, 1))
		want := new(big.Int).Quo(exact.Num(), exact.Denom()).Int64()

		diff := got - want
		assert.True(t, diff >= -1 && diff <= 1, "input %s: got %d want ~%d", in, got, want)
	}
}

func TestMonthlyFromAnnual(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{"even", "120,00", 100000},
		{"fraction", "151,20", 126000},
		{"round half away from zero", "0,0006", 1},
		{"repeating", "100", 83333},
		{"repeating up", "200", 166667},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthlyFromAnnual(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthlyFromAnnual_Invalid(t *testing.T) {
	_, err := MonthlyFromAnnual("n/a")
	assert.Error(t, err)
}
