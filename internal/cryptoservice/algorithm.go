// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cryptoservice is the pluggable cryptography capability record:
// hashing, signing, authenticated encryption, and passphrase-based key
// derivation, each dispatched through a closed, tagged algorithm enum
// rather than open interface inheritance.
package cryptoservice

// HashAlgorithm selects the digest used to hash canonicalized document
// data.
type HashAlgorithm string

const (
	HashBlake3  HashAlgorithm = "blake3"
	HashSHA256  HashAlgorithm = "sha256"
	HashSHA3256 HashAlgorithm = "sha3-256"
)

func (a HashAlgorithm) valid() bool {
	switch a {
	case HashBlake3, HashSHA256, HashSHA3256:
		return true
	default:
		return false
	}
}

// SignatureAlgorithm selects the digital signature scheme used to bind a
// document's hash to the store's signing key.
type SignatureAlgorithm string

const (
	SignatureEd25519   SignatureAlgorithm = "ed25519"
	SignatureSecp256k1 SignatureAlgorithm = "secp256k1"
)

func (a SignatureAlgorithm) valid() bool {
	switch a {
	case SignatureEd25519, SignatureSecp256k1:
		return true
	default:
		return false
	}
}

// EncryptionAlgorithm selects the AEAD construction used for sealing key
// material at rest. AESGCMSIV and Ascon128 are reserved identifiers in the
// closed enum; EncryptWith/DecryptWith return an unsupported-algorithm
// CryptoError for both.
type EncryptionAlgorithm string

const (
	EncryptionXChaCha20Poly1305 EncryptionAlgorithm = "xchacha20poly1305"
	EncryptionAESGCMSIV         EncryptionAlgorithm = "aes-256-gcm-siv"
	EncryptionAscon128          EncryptionAlgorithm = "ascon-128"
)

func (a EncryptionAlgorithm) valid() bool {
	switch a {
	case EncryptionXChaCha20Poly1305, EncryptionAESGCMSIV, EncryptionAscon128:
		return true
	default:
		return false
	}
}

// KDFAlgorithm selects the passphrase-based key derivation function.
type KDFAlgorithm string

const (
	KDFArgon2id KDFAlgorithm = "argon2id"
	KDFPBKDF2   KDFAlgorithm = "pbkdf2"
)

func (a KDFAlgorithm) valid() bool {
	switch a {
	case KDFArgon2id, KDFPBKDF2:
		return true
	default:
		return false
	}
}
