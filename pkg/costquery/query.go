package costquery

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/costquery/pkg/log"
)

// AppliedFilter is one constraint of a query
type AppliedFilter struct {
	Filter   *FilterType
	Operator Operator
	Values   []any

	match predicate
}

// Query is an ordered conjunction of filters. A Query is not safe for
// concurrent Filter calls, evaluating it concurrently is fine.
type Query struct {
	ID uuid.UUID

	engine  *Engine
	logger  log.LoggerService
	filters []AppliedFilter
}

// Filter adds a constraint. An empty operator means "=". Adding the same
// constraint twice has no effect.
func (q *Query) Filter(ctx context.Context, name, operator string, values ...any) error {
	if operator == "" {
		operator = "="
	}

	ft, err := q.engine.registry.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, ErrUnknownFilter) {
			filterRejections.WithLabelValues("unknown_filter").Inc()
			return &FilterError{Filter: name, Operator: operator, Err: ErrUnknownFilter}
		}
		return fmt.Errorf("failed to resolve filter '%s': %w", name, err)
	}

	op, ok := LookupOperator(operator)
	if !ok || !ft.Operators.Contains(operator) {
		filterRejections.WithLabelValues("unsupported_operator").Inc()
		return &FilterError{
			Filter:   ft.Name,
			Operator: operator,
			Reason:   fmt.Sprintf("supported operators are %s", strings.Join(ft.Operators, " ")),
			Err:      ErrUnsupportedOperator,
		}
	}

	operands := flattenOperands(values)
	if !op.Arity.accepts(len(operands)) {
		filterRejections.WithLabelValues("invalid_operand").Inc()
		return &FilterError{
			Filter:   ft.Name,
			Operator: operator,
			Reason:   fmt.Sprintf("expects %s, got %d", op.Arity, len(operands)),
			Err:      ErrInvalidOperand,
		}
	}

	match, err := buildPredicate(op, ft.valueType, operands)
	if err != nil {
		filterRejections.WithLabelValues("invalid_operand").Inc()
		return &FilterError{Filter: ft.Name, Operator: operator, Reason: err.Error(), Err: ErrInvalidOperand}
	}

	for _, f := range q.filters {
		if f.Filter == ft && f.Operator.Name == op.Name && reflect.DeepEqual(f.Values, operands) {
			return nil
		}
	}

	q.filters = append(q.filters, AppliedFilter{
		Filter:   ft,
		Operator: op,
		Values:   operands,
		match:    match,
	})
	return nil
}

// Filters returns the constraints in the order they were added
func (q *Query) Filters() []AppliedFilter {
	return append([]AppliedFilter(nil), q.filters...)
}

// Rows evaluates the query lazily. Every call evaluates again, so the
// sequence reflects the source at iteration time.
func (q *Query) Rows(ctx context.Context) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		start := time.Now()
		outcome := "ok"
		rows := 0

		defer func() {
			queryEvaluations.WithLabelValues(outcome).Inc()
			queryDuration.Observe(time.Since(start).Seconds())
			queryRows.Add(float64(rows))
			q.logger.Debug("Evaluated %d filters in %s: %d rows (%s)", len(q.filters), time.Since(start), rows, outcome)
		}()

		fail := func(err error) {
			outcome = "error"
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				outcome = "cancelled"
			}
			yield(Row{}, err)
		}

		if err := ctx.Err(); err != nil {
			fail(err)
			return
		}

		entries, err := q.engine.source.AllEntries(ctx)
		if err != nil {
			fail(fmt.Errorf("failed to load entries: %w", err))
			return
		}

		values, err := q.customValues(ctx)
		if err != nil {
			fail(err)
			return
		}

		today := q.engine.today()
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}

			issue, err := q.engine.source.IssueFor(ctx, entry)
			if err != nil {
				fail(fmt.Errorf("failed to load issue of %s %d: %w", entry.EntryKind(), entry.EntryID(), err))
				return
			}

			row := Project(entry)
			rec := &record{row: &row, issue: issue, values: values}
			if !q.matches(rec, today) {
				continue
			}

			q.attach(rec)
			rows++
			if !yield(row, nil) {
				return
			}
		}
	}
}

// Result collects all matching rows
func (q *Query) Result(ctx context.Context) ([]Row, error) {
	var result []Row
	for row, err := range q.Rows(ctx) {
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, nil
}

// Count returns the number of matching rows, always len(Result)
func (q *Query) Count(ctx context.Context) (int, error) {
	count := 0
	for _, err := range q.Rows(ctx) {
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

func (q *Query) matches(rec *record, today time.Time) bool {
	for _, f := range q.filters {
		v := f.Filter.value(rec)
		if v == absent || !f.match(v, today) {
			return false
		}
	}
	return true
}

// attach copies the value of every active filter into the row attributes
func (q *Query) attach(rec *record) {
	if len(q.filters) == 0 {
		return
	}

	rec.row.Attributes = make(map[string]any, len(q.filters))
	for _, f := range q.filters {
		v := f.Filter.value(rec)
		if v == absent {
			v = nil
		}
		rec.row.Attributes[f.Filter.Name] = v
	}
}

// customValues loads the values of the custom fields the query filters on
func (q *Query) customValues(ctx context.Context) (customValueIndex, error) {
	var ids []uint
	for _, f := range q.filters {
		if f.Filter.customField != nil {
			ids = append(ids, f.Filter.customField.id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values, err := q.engine.source.CustomValues(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load custom values: %w", err)
	}
	return newCustomValueIndex(values), nil
}
