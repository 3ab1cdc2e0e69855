package costquery

import (
	"math"
	"testing"
	"time"

	"github.com/mwantia/costquery/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPredicate(t *testing.T, operator string, vt valueType, operands ...any) predicate {
	t.Helper()

	op, ok := LookupOperator(operator)
	require.True(t, ok, operator)
	p, err := buildPredicate(op, vt, operands)
	require.NoError(t, err)
	return p
}

func TestEqualityPredicates(t *testing.T) {
	today := day(time.March, 11)

	is := mustPredicate(t, "=", valueID, 1, "2")
	assert.True(t, is(int64(1), today))
	assert.True(t, is(int64(2), today))
	assert.False(t, is(int64(3), today))
	assert.False(t, is(nil, today))

	isNot := mustPredicate(t, "!", valueID, 1)
	assert.True(t, isNot(int64(2), today))
	assert.False(t, isNot(int64(1), today))
	assert.False(t, isNot(nil, today), "unset values never match is not")

	status := mustPredicate(t, "=", valueStatus, 2)
	assert.True(t, status(models.IssueStatus{ID: 2}, today))
	assert.False(t, status(models.IssueStatus{ID: 1, IsClosed: true}, today))

	text := mustPredicate(t, "=", valueText, "MySQL")
	assert.True(t, text("MySQL", today))
	assert.False(t, text("mysql", today))
}

func TestPresencePredicates(t *testing.T) {
	today := day(time.March, 11)

	assert.True(t, mustPredicate(t, "y", valueNumber)(42.0, today))
	assert.False(t, mustPredicate(t, "y", valueNumber)(nil, today))
	assert.True(t, mustPredicate(t, "n", valueDate)(nil, today))
	assert.False(t, mustPredicate(t, "n", valueDate)(today, today))
}

func TestStatusPredicates(t *testing.T) {
	today := day(time.March, 11)

	closed := mustPredicate(t, "c", valueStatus)
	open := mustPredicate(t, "o", valueStatus)

	assert.True(t, closed(models.IssueStatus{ID: 5, IsClosed: true}, today))
	assert.False(t, closed(models.IssueStatus{ID: 1}, today))
	assert.True(t, open(models.IssueStatus{ID: 1}, today))
	assert.False(t, open(nil, today))

	op, _ := LookupOperator("c")
	_, err := buildPredicate(op, valueDate, nil)
	assert.Error(t, err)
}

func TestDatePredicates(t *testing.T) {
	today := day(time.March, 11) // Wednesday

	tests := []struct {
		operator string
		operands []any
		value    time.Time
		want     bool
	}{
		{"t", nil, today.Add(15 * time.Hour), true},
		{"t", nil, day(time.March, 10), false},
		{"w", nil, day(time.March, 9), true},
		{"w", nil, day(time.March, 15), true},
		{"w", nil, day(time.March, 16), false},
		{"w", []any{"2026-03-03"}, day(time.March, 8), true},
		{"w", []any{"2026-03-03"}, day(time.March, 9), false},
		{"t-", []any{3}, day(time.March, 8), true},
		{"t-", []any{3}, day(time.March, 7), false},
		{"<t-", []any{3}, day(time.March, 8), true},
		{"<t-", []any{3}, day(time.March, 1), true},
		{"<t-", []any{3}, day(time.March, 9), false},
		{">t-", []any{3}, day(time.March, 8), true},
		{">t-", []any{3}, today, true},
		{">t-", []any{3}, day(time.March, 12), false},
		{"t+", []any{2}, day(time.March, 13), true},
		{"<t+", []any{2}, day(time.March, 12), true},
		{"<t+", []any{2}, day(time.March, 14), false},
		{">t+", []any{2}, day(time.March, 20), true},
		{">t+", []any{2}, day(time.March, 12), false},
		{"=d", []any{"2026-03-11"}, today.Add(23 * time.Hour), true},
		{"<d", []any{"2026-03-11"}, today, false},
		{"<d", []any{"2026-03-11"}, day(time.March, 10), true},
		{">d", []any{"2026-03-11"}, today, false},
		{">d", []any{"2026-03-11"}, day(time.March, 12), true},
		{"<>d", []any{"2026-03-01", "2026-03-11"}, day(time.March, 1), true},
		{"<>d", []any{"2026-03-01", "2026-03-11"}, today, true},
		{"<>d", []any{"2026-03-01", "2026-03-11"}, day(time.March, 12), false},
		{"y", nil, today, true},
	}

	for _, tt := range tests {
		p := mustPredicate(t, tt.operator, valueDate, tt.operands...)
		assert.Equal(t, tt.want, p(tt.value, today), "%s %v on %s", tt.operator, tt.operands, tt.value.Format(time.DateOnly))
	}

	assert.False(t, mustPredicate(t, ">d", valueDate, "2000-01-01")(nil, today))
}

func TestDatePredicatesUseCalendarDateOfValue(t *testing.T) {
	today := day(time.March, 11)
	cet := time.FixedZone("CET", 3600)

	// 00:30 in CET on the 12th is the 12th, even though it is still the 11th in UTC
	local := time.Date(2026, time.March, 12, 0, 30, 0, 0, cet)
	assert.False(t, mustPredicate(t, "t", valueDate)(local, today))
	assert.True(t, mustPredicate(t, "t", valueDate)(local, day(time.March, 12)))

	midnight := time.Date(2026, time.March, 11, 0, 0, 0, 0, cet)
	assert.True(t, mustPredicate(t, "=d", valueDate, midnight)(midnight, today))
	assert.True(t, mustPredicate(t, "=d", valueDate, "2026-03-11")(midnight, today))
	assert.True(t, mustPredicate(t, "=d", valueDate, "2026-03-11T00:00:00+01:00")(midnight, today))
	assert.False(t, mustPredicate(t, "=d", valueDate, "2026-03-10")(midnight, today))

	evening := time.Date(2026, time.March, 11, 23, 30, 0, 0, cet)
	assert.True(t, mustPredicate(t, "=d", valueDate, midnight)(evening, today))
}

func TestTextPredicates(t *testing.T) {
	today := day(time.March, 11)

	assert.True(t, mustPredicate(t, "~", valueText, "PRINT")("Cannot print recipes", today))
	assert.False(t, mustPredicate(t, "!~", valueText, "print")("Cannot print recipes", today))
	assert.True(t, mustPredicate(t, "!~", valueText, "budget")("Cannot print recipes", today))
	assert.True(t, mustPredicate(t, "^", valueText, "cannot")("Cannot print recipes", today))
	assert.True(t, mustPredicate(t, "$", valueText, "Recipes")("Cannot print recipes", today))
	assert.False(t, mustPredicate(t, "$", valueText, "print")("Cannot print recipes", today))
	assert.False(t, mustPredicate(t, "~", valueText, "x")(nil, today))
}

func TestNumberPredicates(t *testing.T) {
	today := day(time.March, 11)

	assert.True(t, mustPredicate(t, "=n", valueNumber, "12.5")(12.5, today))
	assert.True(t, mustPredicate(t, "!n", valueNumber, 3)(12.5, today))
	assert.True(t, mustPredicate(t, "<=", valueNumber, 3)(3.0, today))
	assert.False(t, mustPredicate(t, "<=", valueNumber, 3)(3.5, today))
	assert.True(t, mustPredicate(t, ">=", valueNumber, "2")(2.0, today))
	assert.True(t, mustPredicate(t, "<>n", valueNumber, 1, 3)(3.0, today))
	assert.False(t, mustPredicate(t, "<>n", valueNumber, 1, 3)(3.1, today))
	assert.False(t, mustPredicate(t, ">=", valueNumber, 0)(nil, today))
}

func TestInvalidOperands(t *testing.T) {
	tests := []struct {
		operator string
		vt       valueType
		operands []any
	}{
		{"=", valueID, []any{"abc"}},
		{"=d", valueDate, []any{"11/03/2026"}},
		{"t-", valueDate, []any{-1}},
		{"t+", valueDate, []any{"soon"}},
		{"<=", valueNumber, []any{"many"}},
		{"w", valueDate, []any{"next week"}},
		{"=", valueID, []any{uint64(math.MaxUint64)}},
		{"!", valueID, []any{uint64(math.MaxInt64) + 1}},
	}

	for _, tt := range tests {
		op, ok := LookupOperator(tt.operator)
		require.True(t, ok)
		_, err := buildPredicate(op, tt.vt, tt.operands)
		assert.Error(t, err, "%s %v", tt.operator, tt.operands)
	}
}

func TestParseIDRange(t *testing.T) {
	id, err := parseID(uint64(math.MaxInt64))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), id)

	_, err = parseID(uint64(math.MaxInt64) + 1)
	assert.Error(t, err)
}

func TestCustomValueConversion(t *testing.T) {
	assert.Nil(t, customValue(valueText, ""))
	assert.Equal(t, "125", customValue(valueText, "125"))
	assert.Equal(t, 12.5, customValue(valueNumber, "12.5"))
	assert.Nil(t, customValue(valueNumber, "n/a"))
	assert.Equal(t, day(time.March, 11), customValue(valueDate, "2026-03-11"))
	assert.Nil(t, customValue(valueDate, "soon"))
}
