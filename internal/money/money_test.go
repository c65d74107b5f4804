package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odyssee/internal/money"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestAllocate_Proportional(t *testing.T) {
	// 10.00 over qty 3 + qty 1 -> 7.50 / 2.50
	parts, err := money.Allocate(dec("10.00"), []int{3, 1})
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.True(t, parts[0].Equal(dec("7.50")), "got %s", parts[0])
	assert.True(t, parts[1].Equal(dec("2.50")), "got %s", parts[1])
}

func TestAllocate_RemainderOnLastLine(t *testing.T) {
	// 10.00 over three equal quantities cannot split evenly; the parts must
	// still sum back to 10.00 exactly.
	parts, err := money.Allocate(dec("10.00"), []int{1, 1, 1})
	require.NoError(t, err)
	require.Len(t, parts, 3)

	sum := decimal.Zero
	for _, p := range parts {
		assert.False(t, p.IsNegative())
		sum = sum.Add(p)
	}
	assert.True(t, sum.Equal(dec("10.00")), "parts sum to %s", sum)
	assert.True(t, parts[0].Equal(dec("3.33")), "got %s", parts[0])
	assert.True(t, parts[2].Equal(dec("3.34")), "got %s", parts[2])
}

func TestAllocate_SingleLineGetsTotal(t *testing.T) {
	parts, err := money.Allocate(dec("12.34"), []int{7})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.True(t, parts[0].Equal(dec("12.34")))
}

func TestAllocate_Reconciles(t *testing.T) {
	cases := []struct {
		total string
		qtys  []int
	}{
		{"10.00", []int{3, 1}},
		{"5.50", []int{2, 3, 4}},
		{"0.01", []int{1, 1, 1}},
		{"99.99", []int{7}},
		{"33.10", []int{1, 2, 3, 4, 5, 6}},
		// tiny total over many lines: half-up rounding alone would hand
		// out 0.06 and leave the last line negative
		{"0.05", []int{1, 1, 1, 1, 1, 1, 1}},
	}
	for _, tc := range cases {
		parts, err := money.Allocate(dec(tc.total), tc.qtys)
		require.NoError(t, err)
		sum := decimal.Zero
		for _, p := range parts {
			assert.False(t, p.IsNegative(), "total %s qtys %v -> negative part %s", tc.total, tc.qtys, p)
			sum = sum.Add(p)
		}
		assert.True(t, sum.Equal(dec(tc.total)), "total %s qtys %v -> sum %s", tc.total, tc.qtys, sum)
	}
}

func TestAllocate_RejectsBadInput(t *testing.T) {
	_, err := money.Allocate(decimal.Zero, []int{1})
	assert.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = money.Allocate(dec("-5.00"), []int{1})
	assert.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = money.Allocate(dec("5.00"), nil)
	assert.ErrorIs(t, err, money.ErrEmptySelection)

	_, err = money.Allocate(dec("5.00"), []int{2, 0})
	assert.ErrorIs(t, err, money.ErrEmptySelection)
}

func TestDurationDays(t *testing.T) {
	assert.Equal(t, 3, money.DurationDays("2024-06-01", "2024-06-03"))
	assert.Equal(t, 1, money.DurationDays("2024-06-01", "2024-06-01"))
	// malformed or inverted ranges fall back to one day
	assert.Equal(t, 1, money.DurationDays("", "2024-06-03"))
	assert.Equal(t, 1, money.DurationDays("2024-06-05", "2024-06-01"))
}
