package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseMoney parses a client-sent amount and pins it to two decimal
// places so stored values and JSON output always render like "220.00".
func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.Round(2), nil
}
