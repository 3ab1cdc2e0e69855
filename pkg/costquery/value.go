package costquery

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mwantia/costquery/pkg/db/models"
)

// valueType selects how row values and operands are normalized and compared
type valueType int

const (
	valueID valueType = iota
	valueDate
	valueText
	valueNumber
	valueStatus
)

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
}

// toDate reduces t to its calendar date in t's own location. Operands,
// row values and today all go through it, so they compare as dates.
func toDate(t time.Time) time.Time {
	return models.CalendarDate(t)
}

func parseID(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return unsignedID(uint64(x))
	case uint32:
		return int64(x), nil
	case uint64:
		return unsignedID(x)
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("'%s' is not an identifier", x)
		}
		return id, nil
	}
	return 0, fmt.Errorf("%T is not an identifier", v)
}

func unsignedID(x uint64) (int64, error) {
	if x > math.MaxInt64 {
		return 0, fmt.Errorf("%d is out of range for an identifier", x)
	}
	return int64(x), nil
}

func parseDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return toDate(x), nil
	case *time.Time:
		if x != nil {
			return toDate(*x), nil
		}
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return toDate(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("'%s' is not a date", x)
	}
	return time.Time{}, fmt.Errorf("%T is not a date", v)
}

func parseText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return fmt.Sprint(x), nil
	}
	return "", fmt.Errorf("%T is not text", v)
}

func parseNumber(v any) (float64, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("'%s' is not a number", x)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%T is not a number", v)
}

// parseOperand normalizes an operand to the comparison type of vt
func parseOperand(vt valueType, v any) (any, error) {
	switch vt {
	case valueID, valueStatus:
		return parseID(v)
	case valueDate:
		return parseDate(v)
	case valueText:
		return parseText(v)
	case valueNumber:
		return parseNumber(v)
	}
	return nil, fmt.Errorf("unsupported value type %d", vt)
}

// flattenOperands expands slice operands so []int{1, 2} and 1, 2 are equivalent
func flattenOperands(values []any) []any {
	var flat []any
	for _, v := range values {
		switch x := v.(type) {
		case []any:
			flat = append(flat, flattenOperands(x)...)
		case []string:
			for _, s := range x {
				flat = append(flat, s)
			}
		case []int:
			for _, i := range x {
				flat = append(flat, i)
			}
		case []int64:
			for _, i := range x {
				flat = append(flat, i)
			}
		case []uint:
			for _, i := range x {
				flat = append(flat, i)
			}
		default:
			flat = append(flat, v)
		}
	}
	return flat
}

// Row values are stored in their comparison type. These helpers read them back.

func idValue(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case models.IssueStatus:
		return int64(x.ID), true
	}
	return 0, false
}

func dateValue(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, false
	}
	return toDate(t), true
}

func textValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func numberValue(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func optionalID(id *uint) any {
	if id == nil {
		return nil
	}
	return int64(*id)
}

func optionalDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return toDate(*t)
}

func optionalNumber(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// customValue converts a stored custom value string to the comparison type
// of the field format. Empty and unparsable values count as unset.
func customValue(vt valueType, raw string) any {
	if raw == "" {
		return nil
	}
	switch vt {
	case valueNumber:
		f, err := parseNumber(raw)
		if err != nil {
			return nil
		}
		return f
	case valueDate:
		t, err := parseDate(raw)
		if err != nil {
			return nil
		}
		return t
	}
	return raw
}
