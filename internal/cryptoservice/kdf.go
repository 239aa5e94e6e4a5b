// SPDX-License-Identifier: AGPL-3.0-or-later
package cryptoservice

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	"github.com/cyberpath-hq/sentinel/internal/sentinelerr"
)

// KDF parameters. These MUST NOT change once a store has persisted a key
// derived under them; doing so would make existing signing-key files
// undecryptable.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MiB
	argon2Threads = 4
	argon2KeyLen  = 32

	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 32

	// SaltSize is the fixed salt length for every KDF variant, matching
	// the salt(16B) prefix the signing-key file format reserves.
	SaltSize = 16
)

// Derive produces a 32-byte key from passphrase and salt using the
// currently configured KDF.
func Derive(passphrase, salt []byte) ([]byte, error) {
	return DeriveWith(GlobalConfig().KDF, passphrase, salt)
}

// DeriveWith derives under an explicit algorithm, independent of the
// global configuration. The store derives its signing-key encryption key
// through Derive, that is, under the configured KDF.
func DeriveWith(algo KDFAlgorithm, passphrase, salt []byte) ([]byte, error) {
	switch algo {
	case KDFArgon2id:
		return argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen), nil
	case KDFPBKDF2:
		return pbkdf2.Key(passphrase, salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New), nil
	default:
		return nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoKDF, nil)
	}
}
