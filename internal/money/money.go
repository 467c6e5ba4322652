// Package money provides the fixed-point amount type used for every monetary
// column. Amounts are kept at two decimal places and rendered as strings so
// that clients never see binary floating point.
package money

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places stored and rendered.
const Scale = 2

// Amount is a decimal rounded to Scale places.
type Amount struct {
	decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{decimal.Zero}

// Max is the largest magnitude a numeric(18,2) column holds.
var Max = Amount{decimal.RequireFromString("9999999999999999.99")}

var (
	// ErrOutOfRange reports an amount whose magnitude exceeds Max.
	ErrOutOfRange = errors.New("amount is too large")
	// ErrBelowCent reports a non-zero amount that rounds to zero.
	ErrBelowCent = errors.New("amount must be at least 0.01")
)

// New rounds d to Scale places.
func New(d decimal.Decimal) Amount {
	return Amount{d.Round(Scale)}
}

// Parse parses a decimal string such as "400", "400.5" or "1234.567".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return New(d), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount { return New(a.Decimal.Add(b.Decimal)) }

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount { return New(a.Decimal.Sub(b.Decimal)) }

// Neg returns -a.
func (a Amount) Neg() Amount { return Amount{a.Decimal.Neg()} }

// Equal compares numerically, so 400 equals 400.00.
func (a Amount) Equal(b Amount) bool { return a.Decimal.Equal(b.Decimal) }

// IsPositive reports a > 0.
func (a Amount) IsPositive() bool { return a.Decimal.IsPositive() }

// String renders exactly Scale decimal places.
func (a Amount) String() string { return a.StringFixed(Scale) }

// MarshalJSON renders the amount as a quoted fixed-point string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string. Amounts
// outside Max or smaller than a cent are rejected rather than stored.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("amount must not be null")
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	rounded := New(d)
	if err := rounded.checkRange(d); err != nil {
		return err
	}
	*a = rounded
	return nil
}

func (a Amount) checkRange(raw decimal.Decimal) error {
	if a.Abs().GreaterThan(Max.Decimal) {
		return ErrOutOfRange
	}
	if !raw.IsZero() && a.IsZero() {
		return ErrBelowCent
	}
	return nil
}

// Value stores the amount as fixed-point text.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan reads numeric, text, integer and float columns.
func (a *Amount) Scan(value interface{}) error {
	if value == nil {
		*a = Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	*a = New(d)
	return nil
}

// NullAmount is an Amount that may be absent, rendered as JSON null.
type NullAmount struct {
	Amount Amount
	Valid  bool
}

// Some wraps a present amount.
func Some(a Amount) NullAmount {
	return NullAmount{Amount: a, Valid: true}
}

// MarshalJSON renders null or the fixed-point string.
func (n NullAmount) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Amount.MarshalJSON()
}

// UnmarshalJSON accepts null, a number or a decimal string.
func (n *NullAmount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = NullAmount{}
		return nil
	}
	if err := n.Amount.UnmarshalJSON(data); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value stores NULL when absent.
func (n NullAmount) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Amount.Value()
}

// Scan reads a nullable numeric column.
func (n *NullAmount) Scan(value interface{}) error {
	if value == nil {
		*n = NullAmount{}
		return nil
	}
	if err := n.Amount.Scan(value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// String renders "null" or the fixed-point string.
func (n NullAmount) String() string {
	if !n.Valid {
		return "null"
	}
	return n.Amount.String()
}
