// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filter implements the cross-type total order, the filter
// predicate tree, and projection over decoded JSON values (the shapes
// encoding/json produces: nil, bool, float64, string, []any,
// map[string]any).
package filter

import (
	"math"
	"sort"
	"strings"
)

// typeRank fixes the cross-type ordering: Null < Bool < Number < String <
// Array < Object.
func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	case []any:
		return 4
	case map[string]any:
		return 5
	default:
		// Any other concrete Go type a caller hands us directly (int,
		// etc.) is treated as a number for ordering purposes.
		return 2
	}
}

// Compare implements the total order described in the spec: a strict weak
// ordering across every pair of decoded JSON values, consistent and
// suitable for a stable sort.
func Compare(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}

	switch ra {
	case 0:
		return 0 // null == null
	case 1:
		return compareBool(a.(bool), b.(bool))
	case 2:
		return compareNumber(toFloat64(a), toFloat64(b))
	case 3:
		return strings.Compare(a.(string), b.(string))
	case 4:
		return compareArray(a.([]any), b.([]any))
	case 5:
		return compareObject(a.(map[string]any), b.(map[string]any))
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

// compareNumber orders NaN greater than every finite number and equal
// only to itself.
func compareNumber(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareArray(a, b []any) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func compareStringSlice(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func compareObject(a, b map[string]any) int {
	keysA, keysB := sortedKeys(a), sortedKeys(b)
	if c := compareStringSlice(keysA, keysB); c != 0 {
		return c
	}
	for _, k := range keysA {
		if c := Compare(a[k], b[k]); c != 0 {
			return c
		}
	}
	return 0
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
