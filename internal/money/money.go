package money

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount  = errors.New("amount must be a positive number")
	ErrEmptySelection = errors.New("at least one product must be selected")
)

// Allocate splits total across quantities in proportion to each quantity,
// rounded to cents. Every entry but the last rounds half-up; the last takes
// whatever remains, so the parts always sum back to total exactly.
func Allocate(total decimal.Decimal, quantities []int) ([]decimal.Decimal, error) {
	if !total.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if len(quantities) == 0 {
		return nil, ErrEmptySelection
	}

	sum := 0
	for _, q := range quantities {
		if q < 1 {
			return nil, ErrEmptySelection
		}
		sum += q
	}

	total = total.Round(2)
	if len(quantities) == 1 {
		return []decimal.Decimal{total}, nil
	}

	parts := make([]decimal.Decimal, len(quantities))
	rest := total
	den := decimal.NewFromInt(int64(sum))
	for i, q := range quantities[:len(quantities)-1] {
		part := total.Mul(decimal.NewFromInt(int64(q))).Div(den).Round(2)
		// Rounding up on many tiny shares can outrun the total; never
		// hand out more than is left.
		if part.GreaterThan(rest) {
			part = rest
		}
		parts[i] = part
		rest = rest.Sub(part)
	}
	parts[len(parts)-1] = rest
	return parts, nil
}

// DurationDays counts calendar days from start to end, both boundary days
// included. Dates are YYYY-MM-DD; a malformed or inverted range counts as one
// day so averages never divide by zero.
func DurationDays(start, end string) int {
	s, err1 := time.Parse("2006-01-02", start)
	e, err2 := time.Parse("2006-01-02", end)
	if err1 != nil || err2 != nil {
		return 1
	}
	days := int(e.Sub(s)/(24*time.Hour)) + 1
	if days < 1 {
		return 1
	}
	return days
}
