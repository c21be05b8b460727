package domain

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

const moneyScale = 2

// Money is a fixed-point monetary amount, scale 2 (spec §2: Item.cost_price
// and the inventory value derived from it).
type Money struct {
	d decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{d: d.Round(moneyScale)}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return NewMoney(d), nil
}

var ZeroMoney = Money{d: decimal.Zero}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(other Money) Money { return NewMoney(m.d.Add(other.d)) }
func (m Money) Sub(other Money) Money { return NewMoney(m.d.Sub(other.d)) }

// MulQuantity prices a quantity at this unit cost.
func (m Money) MulQuantity(q Quantity) Money {
	return NewMoney(m.d.Mul(q.Decimal()))
}

func (m Money) IsNegative() bool { return m.d.IsNegative() }
func (m Money) IsZero() bool     { return m.d.IsZero() }

func (m Money) String() string { return m.d.StringFixed(moneyScale) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", m.String())), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := MoneyFromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.d.Value()
}

func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	*m = NewMoney(d)
	return nil
}
