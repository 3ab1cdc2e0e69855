package costquery

import (
	"fmt"
	"strings"
	"time"

	"github.com/mwantia/costquery/pkg/db/models"
)

// predicate reports whether a row value matches. today is the evaluation date.
type predicate func(value any, today time.Time) bool

type predicateBuilder func(vt valueType, operands []any) (predicate, error)

// predicates maps operator names to the function constructing their predicate
var predicates map[string]predicateBuilder

func init() {
	predicates = map[string]predicateBuilder{
		"=": equalsBuilder(false),
		"!": equalsBuilder(true),
		"y": presenceBuilder(true),
		"n": presenceBuilder(false),
		"o": statusBuilder(false),
		"c": statusBuilder(true),

		"t":   todayBuilder,
		"w":   weekBuilder,
		"t-":  relativeBuilder(func(d, today time.Time, n int) bool { return d.Equal(today.AddDate(0, 0, -n)) }),
		"<t-": relativeBuilder(func(d, today time.Time, n int) bool { return !d.After(today.AddDate(0, 0, -n)) }),
		">t-": relativeBuilder(func(d, today time.Time, n int) bool { return between(d, today.AddDate(0, 0, -n), today) }),
		"t+":  relativeBuilder(func(d, today time.Time, n int) bool { return d.Equal(today.AddDate(0, 0, n)) }),
		"<t+": relativeBuilder(func(d, today time.Time, n int) bool { return between(d, today, today.AddDate(0, 0, n)) }),
		">t+": relativeBuilder(func(d, today time.Time, n int) bool { return !d.Before(today.AddDate(0, 0, n)) }),
		"=d":  dateBuilder(func(d, ref time.Time) bool { return d.Equal(ref) }),
		"<d":  dateBuilder(func(d, ref time.Time) bool { return d.Before(ref) }),
		">d":  dateBuilder(func(d, ref time.Time) bool { return d.After(ref) }),
		"<>d": dateRangeBuilder,

		"~":  textBuilder(strings.Contains, false),
		"!~": textBuilder(strings.Contains, true),
		"^":  textBuilder(strings.HasPrefix, false),
		"$":  textBuilder(strings.HasSuffix, false),

		"=n":  numberSetBuilder(false),
		"!n":  numberSetBuilder(true),
		"<=":  numberBuilder(func(v, ref float64) bool { return v <= ref }),
		">=":  numberBuilder(func(v, ref float64) bool { return v >= ref }),
		"<>n": numberRangeBuilder,
	}
}

func buildPredicate(op Operator, vt valueType, operands []any) (predicate, error) {
	builder, ok := predicates[op.Name]
	if !ok {
		return nil, fmt.Errorf("operator '%s' has no predicate", op.Name)
	}
	return builder(vt, operands)
}

func equalsBuilder(negate bool) predicateBuilder {
	return func(vt valueType, operands []any) (predicate, error) {
		parsed := make([]any, 0, len(operands))
		for _, o := range operands {
			p, err := parseOperand(vt, o)
			if err != nil {
				return nil, err
			}
			parsed = append(parsed, p)
		}

		return func(value any, _ time.Time) bool {
			if value == nil {
				return false
			}
			return equalsAny(vt, value, parsed) != negate
		}, nil
	}
}

func equalsAny(vt valueType, value any, operands []any) bool {
	switch vt {
	case valueID, valueStatus:
		id, ok := idValue(value)
		if !ok {
			return false
		}
		for _, o := range operands {
			if o.(int64) == id {
				return true
			}
		}
	case valueDate:
		d, ok := dateValue(value)
		if !ok {
			return false
		}
		for _, o := range operands {
			if o.(time.Time).Equal(d) {
				return true
			}
		}
	case valueText:
		s, ok := textValue(value)
		if !ok {
			return false
		}
		for _, o := range operands {
			if o.(string) == s {
				return true
			}
		}
	case valueNumber:
		f, ok := numberValue(value)
		if !ok {
			return false
		}
		for _, o := range operands {
			if o.(float64) == f {
				return true
			}
		}
	}
	return false
}

func presenceBuilder(present bool) predicateBuilder {
	return func(valueType, []any) (predicate, error) {
		return func(value any, _ time.Time) bool {
			return (value != nil) == present
		}, nil
	}
}

func statusBuilder(closed bool) predicateBuilder {
	return func(vt valueType, _ []any) (predicate, error) {
		if vt != valueStatus {
			return nil, fmt.Errorf("open/closed only applies to issue status")
		}
		return func(value any, _ time.Time) bool {
			status, ok := value.(models.IssueStatus)
			return ok && status.IsClosed == closed
		}, nil
	}
}

func todayBuilder(valueType, []any) (predicate, error) {
	return func(value any, today time.Time) bool {
		d, ok := dateValue(value)
		return ok && d.Equal(today)
	}, nil
}

func weekBuilder(_ valueType, operands []any) (predicate, error) {
	var ref *time.Time
	if len(operands) == 1 {
		d, err := parseDate(operands[0])
		if err != nil {
			return nil, err
		}
		ref = &d
	}

	return func(value any, today time.Time) bool {
		d, ok := dateValue(value)
		if !ok {
			return false
		}
		reference := today
		if ref != nil {
			reference = *ref
		}
		y1, w1 := d.ISOWeek()
		y2, w2 := reference.ISOWeek()
		return y1 == y2 && w1 == w2
	}, nil
}

func relativeBuilder(match func(d, today time.Time, days int) bool) predicateBuilder {
	return func(_ valueType, operands []any) (predicate, error) {
		days, err := parseID(operands[0])
		if err != nil {
			return nil, err
		}
		if days < 0 {
			return nil, fmt.Errorf("day count must not be negative")
		}

		return func(value any, today time.Time) bool {
			d, ok := dateValue(value)
			return ok && match(d, today, int(days))
		}, nil
	}
}

func dateBuilder(match func(d, ref time.Time) bool) predicateBuilder {
	return func(_ valueType, operands []any) (predicate, error) {
		ref, err := parseDate(operands[0])
		if err != nil {
			return nil, err
		}

		return func(value any, _ time.Time) bool {
			d, ok := dateValue(value)
			return ok && match(d, ref)
		}, nil
	}
}

func dateRangeBuilder(_ valueType, operands []any) (predicate, error) {
	from, err := parseDate(operands[0])
	if err != nil {
		return nil, err
	}
	to, err := parseDate(operands[1])
	if err != nil {
		return nil, err
	}

	return func(value any, _ time.Time) bool {
		d, ok := dateValue(value)
		return ok && between(d, from, to)
	}, nil
}

func between(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

// textBuilder compares case-insensitively, like a SQL LIKE would
func textBuilder(match func(s, sub string) bool, negate bool) predicateBuilder {
	return func(_ valueType, operands []any) (predicate, error) {
		sub, err := parseText(operands[0])
		if err != nil {
			return nil, err
		}
		sub = strings.ToLower(sub)

		return func(value any, _ time.Time) bool {
			s, ok := textValue(value)
			if !ok {
				return false
			}
			return match(strings.ToLower(s), sub) != negate
		}, nil
	}
}

func numberSetBuilder(negate bool) predicateBuilder {
	return func(_ valueType, operands []any) (predicate, error) {
		return equalsBuilder(negate)(valueNumber, operands)
	}
}

func numberBuilder(match func(v, ref float64) bool) predicateBuilder {
	return func(_ valueType, operands []any) (predicate, error) {
		ref, err := parseNumber(operands[0])
		if err != nil {
			return nil, err
		}

		return func(value any, _ time.Time) bool {
			f, ok := numberValue(value)
			return ok && match(f, ref)
		}, nil
	}
}

func numberRangeBuilder(_ valueType, operands []any) (predicate, error) {
	from, err := parseNumber(operands[0])
	if err != nil {
		return nil, err
	}
	to, err := parseNumber(operands[1])
	if err != nil {
		return nil, err
	}

	return func(value any, _ time.Time) bool {
		f, ok := numberValue(value)
		return ok && f >= from && f <= to
	}, nil
}
