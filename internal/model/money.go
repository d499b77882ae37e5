package model

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// moneyContext bounds decimal arithmetic on amounts. 34 digits is decimal128
// precision, far beyond any fee or price.
var moneyContext = apd.BaseContext.WithPrecision(34)

// Money is an exact, non-negative decimal amount. In memory it keeps the
// scale it was written with and compares by numeric value, so "10" equals
// "10.00". It is stored as canonical decimal text; see Canonical.
type Money struct {
	d apd.Decimal
}

// ParseMoney parses a decimal amount. Negative, NaN and infinite values are
// rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("parse amount: empty")
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return Money{}, fmt.Errorf("parse amount %q: not a finite number", s)
	}
	if d.Sign() < 0 {
		return Money{}, fmt.Errorf("parse amount %q: must not be negative", s)
	}
	return Money{d: *d}, nil
}

// MustMoney is ParseMoney for literals known to be valid.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// String formats m without an exponent, preserving its scale.
func (m Money) String() string {
	return m.d.Text('f')
}

// Cmp compares m and other numerically.
func (m Money) Cmp(other Money) int {
	return m.d.Cmp(&other.d)
}

// Equal reports whether m and other are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.Cmp(other) == 0
}

// IsZero reports whether m is zero.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	var sum apd.Decimal
	if _, err := moneyContext.Add(&sum, &m.d, &other.d); err != nil {
		return Money{}, fmt.Errorf("add amounts: %w", err)
	}
	return Money{d: sum}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Money) UnmarshalText(text []byte) error {
	parsed, err := ParseMoney(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Canonical returns m with trailing zeros removed and at least two decimal
// places: "10", "10.0" and "1E+1" all become "10.00", "10.125" is unchanged.
// Equal amounts have equal canonical text.
func (m Money) Canonical() (Money, error) {
	var c apd.Decimal
	c.Reduce(&m.d)
	if c.Exponent > -2 {
		if _, err := moneyContext.Quantize(&c, &c, -2); err != nil {
			return Money{}, fmt.Errorf("canonical amount %s: %w", m, err)
		}
	}
	return Money{d: c}, nil
}

// Value implements driver.Valuer. Amounts are stored as canonical decimal
// text, so equal amounts store equal text.
func (m Money) Value() (driver.Value, error) {
	c, err := m.Canonical()
	if err != nil {
		return nil, err
	}
	return c.String(), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return m.UnmarshalText([]byte(v))
	case []byte:
		return m.UnmarshalText(v)
	case int64:
		return m.UnmarshalText([]byte(fmt.Sprintf("%d", v)))
	default:
		return fmt.Errorf("scan amount: unsupported type %T", src)
	}
}
