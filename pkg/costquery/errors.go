package costquery

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFilter is returned when a filter name resolves to neither a
	// static nor a generated filter.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrUnsupportedOperator is returned when an operator is not part of the
	// resolved filter's operator set.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrInvalidOperand is returned when operands do not match the arity or
	// value domain an operator expects.
	ErrInvalidOperand = errors.New("invalid operand")
	// ErrMalformedCustomField marks custom field definitions that cannot be
	// turned into a filter.
	ErrMalformedCustomField = errors.New("malformed custom field")
	// ErrBuiltinFilter is returned when removing one of the static filters
	ErrBuiltinFilter = errors.New("built-in filter")
	// ErrDuplicateFilter is returned when registering a name that is taken
	ErrDuplicateFilter = errors.New("filter already registered")
)

// FilterError describes why a filter could not be added to a query.
// It unwraps to one of the sentinel errors above.
type FilterError struct {
	Filter   string
	Operator string
	Reason   string
	Err      error
}

func (e *FilterError) Error() string {
	msg := fmt.Sprintf("filter '%s'", e.Filter)
	if e.Operator != "" {
		msg = fmt.Sprintf("%s with operator '%s'", msg, e.Operator)
	}
	msg = fmt.Sprintf("%s: %v", msg, e.Err)
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	return msg
}

func (e *FilterError) Unwrap() error {
	return e.Err
}
