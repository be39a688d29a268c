package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount turns the raw amount field from the form into a decimal.
// Anything that is not a strictly positive number is ErrInvalidAmount.
func ParseAmount(input string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// CheckAgainstBalance rejects amounts above the sender's last-known balance.
// The remote system is still the final arbiter; this only catches the
// obvious case early.
func CheckAgainstBalance(amount, balance decimal.Decimal) error {
	if amount.GreaterThan(balance) {
		return ErrExceedsBalance
	}
	return nil
}

// FormatAmount renders a nominal with thousand separators the way the
// activity feed and transfer messages show money ("50,000"). Every
// user-facing amount goes through here so the feeds read the same.
func FormatAmount(d decimal.Decimal) string {
	s := d.String()
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + fracPart
}
