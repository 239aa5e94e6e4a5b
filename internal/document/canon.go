// SPDX-License-Identifier: AGPL-3.0-or-later
package document

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Canonicalize produces the pinned canonical byte sequence used as hash
// input for a document's data field: RFC 8785 JSON Canonicalization
// Scheme (JCS), applied on top of an ordinary json.Marshal. JCS sorts
// object keys and normalizes number/string encoding, so two processes
// (including processes written in different languages) that agree on the
// logical value of data always agree on its hash, the property an
// auditability-first store needs more than it needs to preserve map
// insertion order.
func Canonicalize(data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal data for canonicalization: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("jcs transform: %w", err)
	}
	return canonical, nil
}
