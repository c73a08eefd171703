package models

import (
	"github.com/shopspring/decimal"
)

// Money is a decimal pinned to two fraction digits in its JSON form, so
// amounts always render like "220.00" instead of "220". Arithmetic goes
// through the embedded decimal.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d), nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Decimal.StringFixed(2) + `"`), nil
}
