// SPDX-License-Identifier: AGPL-3.0-or-later
package filter

import "strings"

// Project returns a new JSON value containing only the requested dotted
// paths, with nested containers preserved. An empty paths list is the
// identity (returns data unchanged). Paths that do not resolve are
// silently omitted.
func Project(data any, paths []string) any {
	if len(paths) == 0 {
		return data
	}

	result := map[string]any{}
	for _, path := range paths {
		v, ok := Resolve(data, path)
		if !ok {
			continue
		}
		setPath(result, strings.Split(path, "."), v)
	}
	return result
}

func setPath(dst map[string]any, segments []string, v any) {
	if len(segments) == 1 {
		dst[segments[0]] = v
		return
	}

	head, rest := segments[0], segments[1:]
	child, ok := dst[head].(map[string]any)
	if !ok {
		child = map[string]any{}
		dst[head] = child
	}
	setPath(child, rest, v)
}

// SortSpec names a dotted path and direction for Sort.
type SortSpec struct {
	Path       string
	Descending bool
}

// Sort orders items in place by the value at spec.Path using the total
// order from Compare, stably. Descending reverses the comparator, not the
// stability: equal elements keep their relative input order either way.
func Sort[T any](items []T, spec SortSpec, dataOf func(T) any) {
	stableSortBy(items, func(a, b T) int {
		va, _ := Resolve(dataOf(a), spec.Path)
		vb, _ := Resolve(dataOf(b), spec.Path)
		c := Compare(va, vb)
		if spec.Descending {
			c = -c
		}
		return c
	})
}

// stableSortBy is a small stable insertion-free merge sort wrapper around
// sort.SliceStable's comparator shape, kept local so Sort stays generic
// without pulling in cmp/slices version constraints.
func stableSortBy[T any](items []T, less func(a, b T) int) {
	n := len(items)
	if n < 2 {
		return
	}
	// Stable merge sort.
	buf := make([]T, n)
	var merge func(lo, hi int)
	merge = func(lo, hi int) {
		if hi-lo < 2 {
			return
		}
		mid := (lo + hi) / 2
		merge(lo, mid)
		merge(mid, hi)
		i, j, k := lo, mid, lo
		for i < mid && j < hi {
			if less(items[i], items[j]) <= 0 {
				buf[k] = items[i]
				i++
			} else {
				buf[k] = items[j]
				j++
			}
			k++
		}
		for i < mid {
			buf[k] = items[i]
			i++
			k++
		}
		for j < hi {
			buf[k] = items[j]
			j++
			k++
		}
		copy(items[lo:hi], buf[lo:hi])
	}
	merge(0, n)
}
