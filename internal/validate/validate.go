package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// French postal code: exactly 5 digits
	rePostal = regexp.MustCompile(`^[0-9]{5}$`)
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	rePhone  = regexp.MustCompile(`^\+?[0-9 .-]{6,20}$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reDate   = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	reAmount = regexp.MustCompile(`^[0-9]+([.,][0-9]{1,2})?$`)
)

func PostalCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePostal.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true // optional
	}
	return s, rePhone.MatchString(s)
}

// Amount parses a TPE keypad entry: positive, two decimals at most, comma
// accepted as the decimal separator.
func Amount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if !reAmount.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d.Round(2), true
}

// Date validates an ISO calendar date.
func Date(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reDate.MatchString(s)
}

func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 500 {
		return 500
	} // clamp to avoid abuse
	return n
}

// ID validates a simple resource identifier (uuid or seeded slug).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 60 {
		return "", false
	}
	return s, true
}

// OneOf reports whether s matches any allowed value.
func OneOf(s string, allowed []string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if s == a {
			return s, true
		}
	}
	return "", false
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	return l >= 8 && l <= 64
}
