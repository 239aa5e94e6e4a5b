// SPDX-License-Identifier: AGPL-3.0-or-later
package filter

import "strings"

// Op is one of the filter primitives over a dotted field path.
type Op int

const (
	OpEquals Op = iota
	OpGreaterThan
	OpLessThan
	OpGreaterOrEqual
	OpLessOrEqual
	OpContains
	OpStartsWith
	OpEndsWith
	OpIn
	OpExists
)

// orderingOps treat a missing path as null; the remaining non-Exists ops
// treat a missing path as a non-match.
func (op Op) isOrdering() bool {
	switch op {
	case OpEquals, OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual:
		return true
	default:
		return false
	}
}

// Filter evaluates a predicate against a document's data. Composition is
// short-circuit: And/Or stop evaluating as soon as the result is
// determined.
type Filter interface {
	Eval(data any) bool
}

// Condition is a single filter primitive over one dotted field path.
type Condition struct {
	Path  string
	Op    Op
	Value any
}

func (c Condition) Eval(data any) bool {
	v, exists := Resolve(data, c.Path)

	if c.Op == OpExists {
		return exists && v != nil
	}

	if !exists {
		if c.Op.isOrdering() {
			v = nil // missing behaves as null for ordering filters
		} else {
			return false // non-match for string/array/In filters
		}
	}

	switch c.Op {
	case OpEquals:
		return Compare(v, c.Value) == 0
	case OpGreaterThan:
		return Compare(v, c.Value) > 0
	case OpLessThan:
		return Compare(v, c.Value) < 0
	case OpGreaterOrEqual:
		return Compare(v, c.Value) >= 0
	case OpLessOrEqual:
		return Compare(v, c.Value) <= 0
	case OpContains:
		return evalContains(v, c.Value)
	case OpStartsWith:
		s, ok := v.(string)
		needle, ok2 := c.Value.(string)
		return ok && ok2 && strings.HasPrefix(s, needle)
	case OpEndsWith:
		s, ok := v.(string)
		needle, ok2 := c.Value.(string)
		return ok && ok2 && strings.HasSuffix(s, needle)
	case OpIn:
		arr, ok := c.Value.([]any)
		if !ok {
			return false
		}
		for _, item := range arr {
			if Compare(item, v) == 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func evalContains(v, needle any) bool {
	switch haystack := v.(type) {
	case string:
		s, ok := needle.(string)
		return ok && strings.Contains(haystack, s)
	case []any:
		for _, item := range haystack {
			if Compare(item, needle) == 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// And combines filters with short-circuit AND. An empty And matches
// everything, the identity for AND composition.
type And []Filter

func (a And) Eval(data any) bool {
	for _, f := range a {
		if !f.Eval(data) {
			return false
		}
	}
	return true
}

// Or combines filters with short-circuit OR. An empty Or matches nothing,
// the identity for OR composition.
type Or []Filter

func (o Or) Eval(data any) bool {
	for _, f := range o {
		if f.Eval(data) {
			return true
		}
	}
	return false
}
