// Package money implements the fixed-precision currency amounts used by the ledger.
//
// Amounts are held as integer cents. Decimal values only appear at the
// boundary: parsing user input, multiplying by a fraction, and formatting.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by every amount.
const Scale = 2

// DefaultEpsilon is the tolerance used when reconciling sums.
var DefaultEpsilon = FromCents(1)

var hundred = decimal.NewFromInt(100)

// Money is a non-negative amount with two fractional digits.
type Money struct {
	cents int64
}

// Zero is the zero amount.
var Zero = Money{}

// NegativeResultError reports an arithmetic result that would drop below zero.
type NegativeResultError struct {
	Minuend    Money
	Subtrahend Money
}

func (e *NegativeResultError) Error() string {
	return fmt.Sprintf("negative result: %s - %s", e.Minuend, e.Subtrahend)
}

// FromCents builds an amount from integer cents. Negative input panics:
// callers must never construct a negative amount.
func FromCents(cents int64) Money {
	if cents < 0 {
		panic(fmt.Sprintf("money: negative amount %d cents", cents))
	}
	return Money{cents: cents}
}

// Parse reads a decimal string such as "12.5" or "12.50". Input with
// nonzero digits past the cent ("12.345") and negative values are rejected.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.Equal(d.Truncate(Scale)) {
		return Zero, fmt.Errorf("amount %q has more than %d decimal places", s, Scale)
	}
	return FromDecimal(d)
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal converts a decimal value, rounding half-up to the cent.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Zero, fmt.Errorf("amount %s is negative", d.String())
	}
	cents := d.Mul(hundred).Round(0)
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return Zero, fmt.Errorf("amount %s is out of range", d.String())
	}
	return Money{cents: cents.IntPart()}, nil
}

// maxCents caps a single amount at 10 trillion. Sums of thousands of
// maximal amounts stay well inside int64.
const maxCents = 1_000_000_000_000_000

// MaxAmount is the largest amount FromDecimal and Parse accept.
var MaxAmount = Money{cents: maxCents}

// Cents returns the amount in integer cents.
func (m Money) Cents() int64 { return m.cents }

// Decimal returns the amount as a decimal with two fractional digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -Scale)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.cents == 0 }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.cents > 0 }

// Add returns m + o. A sum past the int64 range saturates at math.MaxInt64,
// which never reconciles with an amount FromDecimal accepts.
func (m Money) Add(o Money) Money {
	if o.cents > math.MaxInt64-m.cents {
		return Money{cents: math.MaxInt64}
	}
	return Money{cents: m.cents + o.cents}
}

// Sub returns m - o, or a *NegativeResultError when o > m.
func (m Money) Sub(o Money) (Money, error) {
	if o.cents > m.cents {
		return Zero, &NegativeResultError{Minuend: m, Subtrahend: o}
	}
	return Money{cents: m.cents - o.cents}, nil
}

// SignedDiff returns m - o in cents and may be negative.
// It exists for intermediate totals such as reconciliation residuals.
func SignedDiff(m, o Money) int64 {
	return m.cents - o.cents
}

// MulFraction multiplies by f and rounds half-up to the cent.
func (m Money) MulFraction(f decimal.Decimal) (Money, error) {
	return FromDecimal(m.Decimal().Mul(f))
}

// Cmp returns -1, 0 or +1 as m is less than, equal to, or greater than o.
func (m Money) Cmp(o Money) int {
	switch {
	case m.cents < o.cents:
		return -1
	case m.cents > o.cents:
		return 1
	default:
		return 0
	}
}

// Equal reports exact equality.
func (m Money) Equal(o Money) bool { return m.cents == o.cents }

// WithinEpsilon reports whether |m - o| <= eps.
func (m Money) WithinEpsilon(o, eps Money) bool {
	d := SignedDiff(m, o)
	if d < 0 {
		d = -d
	}
	return d <= eps.cents
}

// Sum adds all amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// String formats the amount as "1234.56".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.cents/100, m.cents%100)
}

// MarshalJSON encodes the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a decimal string or a JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid amount: %s", string(data))
		}
		s = n.String()
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the amount as integer cents.
func (m Money) Value() (driver.Value, error) {
	return m.cents, nil
}

// Scan reads integer cents.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		if v < 0 {
			return fmt.Errorf("negative amount in storage: %d", v)
		}
		m.cents = v
		return nil
	case nil:
		m.cents = 0
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", src)
	}
}
