// SPDX-License-Identifier: AGPL-3.0-or-later
package cryptoservice

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"

	"github.com/cyberpath-hq/sentinel/internal/sentinelerr"
)

// Hash digests b under the currently configured hash algorithm and
// returns the lowercase hex encoding.
func Hash(b []byte) (string, error) {
	return HashWith(GlobalConfig().Hash, b)
}

// HashWith digests b under an explicit algorithm, independent of the
// global configuration. Document construction and update go through
// Hash; the document read-side check calls HashWith with the configured
// hash algorithm.
func HashWith(algo HashAlgorithm, b []byte) (string, error) {
	switch algo {
	case HashBlake3:
		sum := blake3.Sum256(b)
		return hex.EncodeToString(sum[:]), nil
	case HashSHA256:
		sum := sha256.Sum256(b)
		return hex.EncodeToString(sum[:]), nil
	case HashSHA3256:
		sum := sha3.Sum256(b)
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", sentinelerr.NewCryptoError(sentinelerr.ErrCryptoUnsupported, nil)
	}
}
