package domain

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// quantityScale is the fixed decimal scale (3 places) every stock quantity
// is rounded to before it is compared, stored, or summed.
const quantityScale = 3

// Quantity is a fixed-point stock quantity, scale 3 (spec §2: Item.unit,
// Batch.quantity_available/quantity_received, Movement.quantity).
type Quantity struct {
	d decimal.Decimal
}

// NewQuantity builds a Quantity from a decimal.Decimal, rounding to scale 3.
func NewQuantity(d decimal.Decimal) Quantity {
	return Quantity{d: d.Round(quantityScale)}
}

// QuantityFromString parses a decimal string into a Quantity.
func QuantityFromString(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return NewQuantity(d), nil
}

// QuantityFromInt builds a Quantity from a whole number.
func QuantityFromInt(n int64) Quantity {
	return NewQuantity(decimal.NewFromInt(n))
}

// ZeroQuantity is the additive identity.
var ZeroQuantity = Quantity{d: decimal.Zero}

func (q Quantity) Decimal() decimal.Decimal { return q.d }

func (q Quantity) Add(other Quantity) Quantity { return NewQuantity(q.d.Add(other.d)) }
func (q Quantity) Sub(other Quantity) Quantity { return NewQuantity(q.d.Sub(other.d)) }

func (q Quantity) IsZero() bool     { return q.d.IsZero() }
func (q Quantity) IsNegative() bool { return q.d.IsNegative() }
func (q Quantity) IsPositive() bool { return q.d.IsPositive() }

// Abs returns the absolute value of q.
func (q Quantity) Abs() Quantity { return NewQuantity(q.d.Abs()) }

// Compare returns -1, 0, or 1 as q is less than, equal to, or greater than other.
func (q Quantity) Compare(other Quantity) int { return q.d.Cmp(other.d) }

func (q Quantity) GreaterThan(other Quantity) bool      { return q.d.GreaterThan(other.d) }
func (q Quantity) GreaterThanOrEqual(other Quantity) bool { return q.d.GreaterThanOrEqual(other.d) }
func (q Quantity) LessThan(other Quantity) bool         { return q.d.LessThan(other.d) }

// Min returns the smaller of q and other.
func Min(q, other Quantity) Quantity {
	if q.LessThan(other) {
		return q
	}
	return other
}

func (q Quantity) String() string { return q.d.StringFixed(quantityScale) }

func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", q.String())), nil
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := QuantityFromString(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Value implements driver.Valuer for sqlx/lib-pq NUMERIC columns.
func (q Quantity) Value() (driver.Value, error) {
	return q.d.Value()
}

// Scan implements sql.Scanner for sqlx/lib-pq NUMERIC columns.
func (q *Quantity) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	*q = NewQuantity(d)
	return nil
}
