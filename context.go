package scimath

import (
	"fmt"
	"math/big"
	"strings"
)

// RoundingMode specifies how a real result is rounded to the precision of
// a [Context].
type RoundingMode uint8

const (
	// Nearest rounds to the nearest representable value, ties to even.
	Nearest RoundingMode = iota
	// Up rounds towards positive infinity.
	Up
	// Down rounds towards negative infinity.
	Down
	// TowardZero truncates.
	TowardZero
)

var roundingNames = [...]string{
	Nearest:    "nearest",
	Up:         "up",
	Down:       "down",
	TowardZero: "zero",
}

// BigMode returns the [big.RoundingMode] corresponding to m.
// Unknown modes map to [big.ToNearestEven].
func (m RoundingMode) BigMode() big.RoundingMode {
	switch m {
	case Up:
		return big.ToPositiveInf
	case Down:
		return big.ToNegativeInf
	case TowardZero:
		return big.ToZero
	default:
		return big.ToNearestEven
	}
}

// String implements the [fmt.Stringer] interface.
func (m RoundingMode) String() string {
	if int(m) < len(roundingNames) {
		return roundingNames[m]
	}
	return fmt.Sprintf("RoundingMode(%d)", uint8(m))
}

// ParseRoundingMode converts a string to a rounding mode.
// Accepted values are "nearest", "up", "down" and "zero", in any case.
func ParseRoundingMode(s string) (RoundingMode, error) {
	for i, name := range roundingNames {
		if strings.EqualFold(s, name) {
			return RoundingMode(i), nil
		}
	}
	return 0, fmt.Errorf("parsing rounding mode %q: %w", s, errUnknownRounding)
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
func (m *RoundingMode) UnmarshalText(text []byte) error {
	var err error
	*m, err = ParseRoundingMode(string(text))
	return err
}

// MarshalText implements the [encoding.TextMarshaler] interface.
func (m RoundingMode) MarshalText() ([]byte, error) {
	if int(m) >= len(roundingNames) {
		return nil, fmt.Errorf("marshaling %v: %w", m, errUnknownRounding)
	}
	return []byte(roundingNames[m]), nil
}

// Context carries the target precision (in bits) and rounding mode of a
// real-valued computation.
// It is passed explicitly to every operation and never stored globally.
type Context struct {
	Prec     uint
	Rounding RoundingMode
}

// NewContext returns a context with the given precision and nearest-even
// rounding.
func NewContext(prec uint) Context {
	return Context{Prec: prec}
}

// Validate returns an error if the context cannot be used for computation.
func (c Context) Validate() error {
	switch {
	case c.Prec < 1:
		return newDomainError("Context.Validate", "precision must be at least 1 bit", nil)
	case c.Prec > big.MaxPrec:
		return newDomainError("Context.Validate", fmt.Sprintf("precision %v exceeds %v", c.Prec, uint(big.MaxPrec)), nil)
	case int(c.Rounding) >= len(roundingNames):
		return newDomainError("Context.Validate", c.Rounding.String(), errUnknownRounding)
	}
	return nil
}

// Float returns a zero value configured with the context's precision and mode.
func (c Context) Float() *big.Float {
	return new(big.Float).SetPrec(c.Prec).SetMode(c.Rounding.BigMode())
}

// Round returns a copy of x rounded to the context.
func (c Context) Round(x *big.Float) *big.Float {
	return c.Float().Set(x)
}

// String implements the [fmt.Stringer] interface.
func (c Context) String() string {
	return fmt.Sprintf("%v bits, %v", c.Prec, c.Rounding)
}
