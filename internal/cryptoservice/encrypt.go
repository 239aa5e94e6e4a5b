// SPDX-License-Identifier: AGPL-3.0-or-later
package cryptoservice

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/cyberpath-hq/sentinel/internal/sentinelerr"
)

// Encrypt seals plain under key using the currently configured encryption
// algorithm, returning nonce‖ciphertext‖tag. The nonce is generated fresh
// for every call.
func Encrypt(plain, key []byte) ([]byte, error) {
	return EncryptWith(GlobalConfig().Encryption, plain, key)
}

// Decrypt opens a nonce‖ciphertext‖tag value produced by Encrypt/
// EncryptWith under the currently configured encryption algorithm.
func Decrypt(sealed, key []byte) ([]byte, error) {
	return DecryptWith(GlobalConfig().Encryption, sealed, key)
}

// EncryptWith and DecryptWith take an explicit algorithm instead of
// reading the global configuration. The store passes its configured
// encryption algorithm when sealing and opening the signing key file.
// AESGCMSIV and Ascon128 return an unsupported-algorithm CryptoError.
func EncryptWith(algo EncryptionAlgorithm, plain, key []byte) ([]byte, error) {
	switch algo {
	case EncryptionXChaCha20Poly1305:
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoEncrypt, err)
		}
		nonce := make([]byte, aead.NonceSize())
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoEncrypt, err)
		}
		return aead.Seal(nonce, nonce, plain, nil), nil
	case EncryptionAESGCMSIV, EncryptionAscon128:
		return nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoUnsupported, nil)
	default:
		return nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoUnsupported, nil)
	}
}

func DecryptWith(algo EncryptionAlgorithm, sealed, key []byte) ([]byte, error) {
	switch algo {
	case EncryptionXChaCha20Poly1305:
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoDecrypt, err)
		}
		if len(sealed) < aead.NonceSize() {
			return nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoDecrypt, nil)
		}
		nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
		plain, err := aead.Open(nil, nonce, ciphertext, nil)
		if err != nil {
			return nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoDecrypt, err)
		}
		return plain, nil
	case EncryptionAESGCMSIV, EncryptionAscon128:
		return nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoUnsupported, nil)
	default:
		return nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoUnsupported, nil)
	}
}
