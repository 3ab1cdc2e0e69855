package costquery

import (
	"slices"
)

// Arity is the number of operands an operator takes
type Arity int

const (
	// ArityNone operators take no operand ("t", "y", "c").
	ArityNone Arity = iota
	// ArityOne operators take exactly one operand (">d", "~").
	ArityOne
	// ArityOptional operators take zero or one operand ("w" with an optional reference date).
	ArityOptional
	// ArityTwo operators take a lower and an upper bound ("<>d").
	ArityTwo
	// ArityMany operators take one or more operands ("=", "!").
	ArityMany
)

func (a Arity) String() string {
	switch a {
	case ArityNone:
		return "no value"
	case ArityOne:
		return "exactly one value"
	case ArityOptional:
		return "at most one value"
	case ArityTwo:
		return "two values"
	case ArityMany:
		return "at least one value"
	}
	return "unknown"
}

// accepts reports whether n operands satisfy the arity
func (a Arity) accepts(n int) bool {
	switch a {
	case ArityNone:
		return n == 0
	case ArityOne:
		return n == 1
	case ArityOptional:
		return n <= 1
	case ArityTwo:
		return n == 2
	case ArityMany:
		return n >= 1
	}
	return false
}

// Operator is a named comparison rule
type Operator struct {
	Name  string `json:"name"  yaml:"name"`
	Label string `json:"label" yaml:"label"`
	Arity Arity  `json:"arity" yaml:"arity"`
}

var operators = map[string]Operator{
	"=":   {"=", "is", ArityMany},
	"!":   {"!", "is not", ArityMany},
	"y":   {"y", "any", ArityNone},
	"n":   {"n", "none", ArityNone},
	"o":   {"o", "open", ArityNone},
	"c":   {"c", "closed", ArityNone},
	"t":   {"t", "today", ArityNone},
	"w":   {"w", "this week", ArityOptional},
	"t-":  {"t-", "days ago", ArityOne},
	"<t-": {"<t-", "more than days ago", ArityOne},
	">t-": {">t-", "less than days ago", ArityOne},
	"t+":  {"t+", "in days", ArityOne},
	"<t+": {"<t+", "in less than days", ArityOne},
	">t+": {">t+", "in more than days", ArityOne},
	"=d":  {"=d", "on", ArityOne},
	"<d":  {"<d", "before", ArityOne},
	">d":  {">d", "after", ArityOne},
	"<>d": {"<>d", "between", ArityTwo},
	"~":   {"~", "contains", ArityOne},
	"!~":  {"!~", "doesn't contain", ArityOne},
	"^":   {"^", "starts with", ArityOne},
	"$":   {"$", "ends with", ArityOne},
	"=n":  {"=n", "equals", ArityMany},
	"!n":  {"!n", "does not equal", ArityMany},
	"<=":  {"<=", "less or equal", ArityOne},
	">=":  {">=", "greater or equal", ArityOne},
	"<>n": {"<>n", "between", ArityTwo},
}

// LookupOperator returns the operator registered under name
func LookupOperator(name string) (Operator, bool) {
	op, ok := operators[name]
	return op, ok
}

// OperatorSet is a sorted set of operator names
type OperatorSet []string

// NewOperatorSet builds a set from operator names, dropping duplicates
func NewOperatorSet(names ...string) OperatorSet {
	set := slices.Clone(names)
	slices.Sort(set)
	return slices.Compact(set)
}

// Union returns a new set containing the operators of all sets
func Union(sets ...OperatorSet) OperatorSet {
	var names []string
	for _, s := range sets {
		names = append(names, s...)
	}
	return NewOperatorSet(names...)
}

func (s OperatorSet) Contains(name string) bool {
	_, found := slices.BinarySearch(s, name)
	return found
}

// Operators resolves the set into operator descriptors
func (s OperatorSet) Operators() []Operator {
	ops := make([]Operator, 0, len(s))
	for _, name := range s {
		if op, ok := operators[name]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// Named operator sets. Treat them as constants.
var (
	DefaultOperators = NewOperatorSet("=", "!")
	NullOperators    = NewOperatorSet("y", "n")
	TimeOperators    = NewOperatorSet("t", "w", "t-", "<t-", ">t-", "t+", "<t+", ">t+", "=d", "<d", ">d", "<>d", "y", "n")
	StringOperators  = NewOperatorSet("=", "!", "~", "!~", "^", "$")
	IntegerOperators = NewOperatorSet("=n", "!n", "<=", ">=", "<>n")
	StatusOperators  = NewOperatorSet("o", "c")
)

// Domain tags the kind of values a filter compares
type Domain string

const (
	DomainIdentity         Domain = "identity"
	DomainNullableIdentity Domain = "nullable-identity"
	DomainTemporal         Domain = "temporal"
	DomainString           Domain = "string"
	DomainInteger          Domain = "integer"
	DomainStatus           Domain = "status"
	DomainPresence         Domain = "presence"
	DomainAll              Domain = "all"
)

// OperatorsFor returns the operator set a filter of the given domain exposes
func OperatorsFor(domain Domain) OperatorSet {
	switch domain {
	case DomainIdentity:
		return DefaultOperators
	case DomainNullableIdentity:
		return Union(DefaultOperators, NullOperators)
	case DomainTemporal:
		return TimeOperators
	case DomainString:
		return StringOperators
	case DomainInteger:
		return IntegerOperators
	case DomainStatus:
		return Union(DefaultOperators, StatusOperators)
	case DomainPresence:
		return NullOperators
	case DomainAll:
		return NewOperatorSet(allOperatorNames()...)
	}
	return nil
}

func allOperatorNames() []string {
	names := make([]string, 0, len(operators))
	for name := range operators {
		names = append(names, name)
	}
	return names
}
