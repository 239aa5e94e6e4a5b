// SPDX-License-Identifier: AGPL-3.0-or-later
package filter

import "strings"

// Resolve walks a dotted field path into data (which is expected to be
// the shape encoding/json produces) and reports the value found and
// whether the path resolved at all. A path segment that indexes into a
// non-object (or an object missing that key) resolves to (nil, false).
func Resolve(data any, path string) (any, bool) {
	cur := data
	for _, segment := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := obj[segment]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}
