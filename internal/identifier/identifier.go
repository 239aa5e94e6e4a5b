// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identifier implements the filename-safety predicate shared by
// document ids and collection names.
package identifier

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/cyberpath-hq/sentinel/internal/sentinelerr"
)

// reservedCollectionNames are never valid collection names; they are the
// filesystem entries a collection directory reserves for its own use, or
// the name a Store reserves for its own key material.
var reservedCollectionNames = map[string]bool{
	".deleted": true,
	".keys":    true,
}

// Normalize applies Unicode NFC normalization so that visually identical
// but byte-distinct ids (a compliance concern: two ids that *look* the
// same must not silently address two different files) compare and
// validate consistently. It does not relax IsValidID/IsValidCollection;
// those still only accept a strict ASCII subset.
func Normalize(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// IsValidID reports whether s is a filename-safe document identifier:
// non-empty, ASCII alphanumerics plus '-', '_', '.', where '.' is never
// the first character and the whole string is not "." or "..". A string
// that NFC normalization would change is rejected, so no two
// byte-distinct encodings of the same visible id can both pass.
func IsValidID(s string) bool {
	n := Normalize(s)
	return n == s && isValidSegment(n)
}

// IsValidCollection reports whether s is a filename-safe collection name
// that is additionally not one of the names reserved for internal use.
func IsValidCollection(s string) bool {
	if Normalize(s) != s || !isValidSegment(s) {
		return false
	}
	if strings.HasPrefix(s, ".") {
		return false
	}
	return !reservedCollectionNames[s]
}

func isValidSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		case r == '.':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ValidateID returns a *sentinelerr.InvalidIdentifier if s is not a valid
// document id.
func ValidateID(s string) error {
	if !IsValidID(s) {
		return &sentinelerr.InvalidIdentifier{Kind: "id", Value: s}
	}
	return nil
}

// ValidateCollection returns a *sentinelerr.InvalidIdentifier if s is not
// a valid collection name.
func ValidateCollection(s string) error {
	if !IsValidCollection(s) {
		return &sentinelerr.InvalidIdentifier{Kind: "collection", Value: s}
	}
	return nil
}
