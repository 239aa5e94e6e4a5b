// SPDX-License-Identifier: AGPL-3.0-or-later
package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func doc(fields map[string]any) any { return fields }

func TestConditionEquals(t *testing.T) {
	t.Parallel()

	c := Condition{Path: "age", Op: OpEquals, Value: float64(30)}
	assert.True(t, c.Eval(doc(map[string]any{"age": float64(30)})))
	assert.False(t, c.Eval(doc(map[string]any{"age": float64(31)})))
}

func TestConditionOrderingMissingPathBehavesAsNull(t *testing.T) {
	t.Parallel()

	// Null sorts below every number, so GreaterThan on a missing path
	// never matches and LessThan always does against a positive bound.
	gt := Condition{Path: "missing", Op: OpGreaterThan, Value: float64(5)}
	assert.False(t, gt.Eval(doc(map[string]any{})))

	lt := Condition{Path: "missing", Op: OpLessThan, Value: float64(5)}
	assert.True(t, lt.Eval(doc(map[string]any{})))
}

func TestConditionNonOrderingMissingPathIsNonMatch(t *testing.T) {
	t.Parallel()

	for _, op := range []Op{OpContains, OpStartsWith, OpEndsWith, OpIn} {
		c := Condition{Path: "missing", Op: op, Value: "x"}
		assert.False(t, c.Eval(doc(map[string]any{})), "op %v", op)
	}
}

func TestConditionExists(t *testing.T) {
	t.Parallel()

	present := Condition{Path: "age", Op: OpExists}
	assert.True(t, present.Eval(doc(map[string]any{"age": float64(1)})))

	absent := Condition{Path: "age", Op: OpExists}
	assert.False(t, absent.Eval(doc(map[string]any{})))

	nullField := Condition{Path: "age", Op: OpExists}
	assert.False(t, nullField.Eval(doc(map[string]any{"age": nil})))
}

func TestConditionStringOps(t *testing.T) {
	t.Parallel()

	data := doc(map[string]any{"name": "Alexandria"})
	assert.True(t, (Condition{Path: "name", Op: OpStartsWith, Value: "Alex"}).Eval(data))
	assert.True(t, (Condition{Path: "name", Op: OpEndsWith, Value: "ria"}).Eval(data))
	assert.True(t, (Condition{Path: "name", Op: OpContains, Value: "xand"}).Eval(data))
	assert.False(t, (Condition{Path: "name", Op: OpStartsWith, Value: "Z"}).Eval(data))
}

func TestConditionContainsOnArray(t *testing.T) {
	t.Parallel()

	data := doc(map[string]any{"tags": []any{"a", "b", "c"}})
	assert.True(t, (Condition{Path: "tags", Op: OpContains, Value: "b"}).Eval(data))
	assert.False(t, (Condition{Path: "tags", Op: OpContains, Value: "z"}).Eval(data))
}

func TestConditionIn(t *testing.T) {
	t.Parallel()

	c := Condition{Path: "status", Op: OpIn, Value: []any{"open", "pending"}}
	assert.True(t, c.Eval(doc(map[string]any{"status": "open"})))
	assert.False(t, c.Eval(doc(map[string]any{"status": "closed"})))
}

func TestAndShortCircuitsAndEmptyMatchesAll(t *testing.T) {
	t.Parallel()

	assert.True(t, And{}.Eval(doc(map[string]any{})))

	and := And{
		Condition{Path: "a", Op: OpEquals, Value: float64(1)},
		Condition{Path: "b", Op: OpEquals, Value: float64(2)},
	}
	assert.True(t, and.Eval(doc(map[string]any{"a": float64(1), "b": float64(2)})))
	assert.False(t, and.Eval(doc(map[string]any{"a": float64(1), "b": float64(9)})))
}

func TestOrShortCircuitsAndEmptyMatchesNone(t *testing.T) {
	t.Parallel()

	assert.False(t, Or{}.Eval(doc(map[string]any{})))

	or := Or{
		Condition{Path: "a", Op: OpEquals, Value: float64(1)},
		Condition{Path: "b", Op: OpEquals, Value: float64(2)},
	}
	assert.True(t, or.Eval(doc(map[string]any{"a": float64(9), "b": float64(2)})))
	assert.False(t, or.Eval(doc(map[string]any{"a": float64(9), "b": float64(9)})))
}

func TestNestedAndOr(t *testing.T) {
	t.Parallel()

	tree := And{
		Condition{Path: "active", Op: OpEquals, Value: true},
		Or{
			Condition{Path: "role", Op: OpEquals, Value: "admin"},
			Condition{Path: "role", Op: OpEquals, Value: "owner"},
		},
	}
	assert.True(t, tree.Eval(doc(map[string]any{"active": true, "role": "owner"})))
	assert.False(t, tree.Eval(doc(map[string]any{"active": false, "role": "owner"})))
	assert.False(t, tree.Eval(doc(map[string]any{"active": true, "role": "guest"})))
}
