// internal/pkg/money/money.go
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts travel through the service as int64 cents. This package converts
// them at the edges where a decimal representation is shown or parsed.

// FromCents converts a cent amount into a decimal with two places
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToCents converts a decimal amount into cents, rounding half away from zero
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Parse reads a decimal string such as "25.00" into cents
func Parse(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return ToCents(d), nil
}

// Format renders cents as a fixed two-place string, e.g. 60000 -> "600.00"
func Format(cents int64) string {
	return FromCents(cents).StringFixed(2)
}

// FormatWithCurrency renders cents with a currency code, e.g. "USD 125.00"
func FormatWithCurrency(cents int64, currency string) string {
	return fmt.Sprintf("%s %s", currency, Format(cents))
}
