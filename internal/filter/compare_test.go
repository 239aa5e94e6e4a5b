// SPDX-License-Identifier: AGPL-3.0-or-later
package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareCrossType(t *testing.T) {
	t.Parallel()

	values := []any{nil, false, float64(1), "s", []any{}, map[string]any{}}
	for i := range values {
		for j := range values {
			got := Compare(values[i], values[j])
			switch {
			case i < j:
				assert.Negative(t, got, "index %d should sort before %d", i, j)
			case i > j:
				assert.Positive(t, got, "index %d should sort after %d", i, j)
			default:
				assert.Zero(t, got)
			}
		}
	}
}

func TestCompareBool(t *testing.T) {
	t.Parallel()

	assert.Negative(t, Compare(false, true))
	assert.Positive(t, Compare(true, false))
	assert.Zero(t, Compare(true, true))
}

func TestCompareNumberNaN(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	assert.Positive(t, Compare(nan, float64(1)))
	assert.Negative(t, Compare(float64(1), nan))
	assert.Zero(t, Compare(nan, nan))
}

func TestCompareStringLexical(t *testing.T) {
	t.Parallel()

	assert.Negative(t, Compare("a", "b"))
	assert.Zero(t, Compare("same", "same"))
}

func TestCompareArrayElementwiseThenLength(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Compare([]any{float64(1), float64(2)}, []any{float64(1), float64(2)}))
	assert.Negative(t, Compare([]any{float64(1)}, []any{float64(1), float64(2)}))
	assert.Negative(t, Compare([]any{float64(1), float64(2)}, []any{float64(1), float64(3)}))
}

func TestCompareObjectBySortedKeysThenValues(t *testing.T) {
	t.Parallel()

	a := map[string]any{"x": float64(1), "y": float64(2)}
	b := map[string]any{"x": float64(1), "y": float64(2)}
	assert.Zero(t, Compare(a, b))

	c := map[string]any{"x": float64(1)}
	assert.Negative(t, Compare(c, a), "fewer keys sorts before more keys")

	d := map[string]any{"x": float64(1), "z": float64(2)}
	assert.Negative(t, Compare(a, d), "differing key set compares by sorted key sequence")
}
