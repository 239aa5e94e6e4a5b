// SPDX-License-Identifier: AGPL-3.0-or-later
package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTopLevel(t *testing.T) {
	t.Parallel()

	v, ok := Resolve(map[string]any{"age": float64(30)}, "age")
	assert.True(t, ok)
	assert.Equal(t, float64(30), v)
}

func TestResolveNested(t *testing.T) {
	t.Parallel()

	data := map[string]any{"address": map[string]any{"city": "Austin"}}
	v, ok := Resolve(data, "address.city")
	assert.True(t, ok)
	assert.Equal(t, "Austin", v)
}

func TestResolveMissingPath(t *testing.T) {
	t.Parallel()

	_, ok := Resolve(map[string]any{"age": float64(30)}, "missing")
	assert.False(t, ok)
}

func TestResolveThroughNonObject(t *testing.T) {
	t.Parallel()

	data := map[string]any{"age": float64(30)}
	_, ok := Resolve(data, "age.sub")
	assert.False(t, ok)
}

func TestResolveNonMapRoot(t *testing.T) {
	t.Parallel()

	_, ok := Resolve([]any{"a", "b"}, "0")
	assert.False(t, ok)
}
