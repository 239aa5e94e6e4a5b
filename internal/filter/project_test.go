// SPDX-License-Identifier: AGPL-3.0-or-later
package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectEmptyIsIdentity(t *testing.T) {
	t.Parallel()

	data := map[string]any{"age": float64(30), "name": "Ada"}
	assert.Equal(t, data, Project(data, nil))
}

func TestProjectTopLevelFields(t *testing.T) {
	t.Parallel()

	data := map[string]any{"age": float64(30), "name": "Ada", "secret": "hidden"}
	got := Project(data, []string{"age", "name"})
	assert.Equal(t, map[string]any{"age": float64(30), "name": "Ada"}, got)
}

func TestProjectNestedPathsPreserveContainers(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"address": map[string]any{"city": "Austin", "zip": "78701"},
		"name":    "Ada",
	}
	got := Project(data, []string{"address.city"})
	assert.Equal(t, map[string]any{"address": map[string]any{"city": "Austin"}}, got)
}

func TestProjectUnknownPathsSilentlyOmitted(t *testing.T) {
	t.Parallel()

	data := map[string]any{"age": float64(30)}
	got := Project(data, []string{"age", "does.not.exist"})
	assert.Equal(t, map[string]any{"age": float64(30)}, got)
}

type sortItem struct {
	id   string
	data any
}

func TestSortAscendingStable(t *testing.T) {
	t.Parallel()

	items := []sortItem{
		{id: "b1", data: map[string]any{"age": float64(30)}},
		{id: "a1", data: map[string]any{"age": float64(20)}},
		{id: "a2", data: map[string]any{"age": float64(20)}},
	}
	Sort(items, SortSpec{Path: "age"}, func(s sortItem) any { return s.data })

	ids := []string{items[0].id, items[1].id, items[2].id}
	assert.Equal(t, []string{"a1", "a2", "b1"}, ids, "equal keys keep original relative order")
}

func TestSortDescending(t *testing.T) {
	t.Parallel()

	items := []sortItem{
		{id: "a", data: map[string]any{"age": float64(20)}},
		{id: "b", data: map[string]any{"age": float64(30)}},
	}
	Sort(items, SortSpec{Path: "age", Descending: true}, func(s sortItem) any { return s.data })

	assert.Equal(t, "b", items[0].id)
	assert.Equal(t, "a", items[1].id)
}
