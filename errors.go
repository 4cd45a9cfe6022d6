package scimath

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	// ErrDomain is wrapped by every [DomainError].
	ErrDomain = errors.New("argument out of domain")
	// ErrInvalidInterval is reported when integration bounds do not form a
	// supported interval.
	ErrInvalidInterval = errors.New("invalid integration interval")
	// ErrConvergence is wrapped by every [ConvergenceError].
	ErrConvergence = errors.New("iteration did not converge")
	// ErrNaN is returned in place of a not-a-number result, e.g. by
	// [LambertW] on a branch where the function has no real value.
	ErrNaN = errors.New("result is not a number")

	errUnknownRounding = errors.New("unknown rounding mode")
)

// DomainError describes an invalid mathematical input.
type DomainError struct {
	Op     string
	Detail string
	Cause  error
}

func newDomainError(op, detail string, cause error) *DomainError {
	return &DomainError{Op: op, Detail: detail, Cause: cause}
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(ErrDomain.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns both the cause and [ErrDomain], so that [errors.Is] matches
// either of them.
func (e *DomainError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrDomain}
	}
	return []error{e.Cause, ErrDomain}
}

// ConvergenceError is returned when an iteration exhausts its budget.
type ConvergenceError struct {
	Op         string
	Iterations int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v: %v after %v iterations", e.Op, ErrConvergence, e.Iterations)
}

func (e *ConvergenceError) Unwrap() error {
	return ErrConvergence
}

// catchNaN converts a [big.ErrNaN] panic raised by math/big into [ErrNaN].
// It must be deferred directly by the function whose error it sets.
func catchNaN(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if nan, ok := r.(big.ErrNaN); ok {
		*err = fmt.Errorf("%w: %v", ErrNaN, nan.Error())
		return
	}
	panic(r)
}
