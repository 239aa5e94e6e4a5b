// SPDX-License-Identifier: AGPL-3.0-or-later
package cryptoservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, HashBlake3, cfg.Hash)
	assert.Equal(t, SignatureEd25519, cfg.Signature)
	assert.Equal(t, EncryptionXChaCha20Poly1305, cfg.Encryption)
	assert.Equal(t, KDFArgon2id, cfg.KDF)
}

func TestSetGlobalConfigOnceOnly(t *testing.T) {
	resetGlobalConfigForTest()
	t.Cleanup(resetGlobalConfigForTest)

	require.NoError(t, SetGlobalConfig(DefaultConfig()))

	err := SetGlobalConfig(DefaultConfig())
	require.Error(t, err)
}

func TestSetGlobalConfigRejectsUnknownAlgorithm(t *testing.T) {
	resetGlobalConfigForTest()
	t.Cleanup(resetGlobalConfigForTest)

	err := SetGlobalConfig(Config{
		Hash:       HashAlgorithm("not-a-real-hash"),
		Signature:  SignatureEd25519,
		Encryption: EncryptionXChaCha20Poly1305,
		KDF:        KDFArgon2id,
	})
	require.Error(t, err)
}

func TestGlobalConfigDefaultsOnFirstAccess(t *testing.T) {
	resetGlobalConfigForTest()
	t.Cleanup(resetGlobalConfigForTest)

	cfg := GlobalConfig()
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestHashDeterministicPerAlgorithm(t *testing.T) {
	t.Parallel()

	for _, algo := range []HashAlgorithm{HashBlake3, HashSHA256, HashSHA3256} {
		algo := algo
		t.Run(string(algo), func(t *testing.T) {
			t.Parallel()

			a, err := HashWith(algo, []byte("hello"))
			require.NoError(t, err)
			b, err := HashWith(algo, []byte("hello"))
			require.NoError(t, err)
			assert.Equal(t, a, b)

			c, err := HashWith(algo, []byte("goodbye"))
			require.NoError(t, err)
			assert.NotEqual(t, a, c)
		})
	}
}

func TestHashUnsupportedAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := HashWith(HashAlgorithm("md5"), []byte("x"))
	require.Error(t, err)
}

func TestSignVerifyRoundTripEd25519(t *testing.T) {
	t.Parallel()

	kp, err := GenerateKeyPairWith(SignatureEd25519)
	require.NoError(t, err)

	digest, err := HashWith(HashBlake3, []byte("payload"))
	require.NoError(t, err)

	tag, err := Sign(SignatureEd25519, kp.PrivateKey, digest)
	require.NoError(t, err)

	assert.True(t, Verify(kp.PublicKey, digest, tag))
}

func TestSignVerifyRoundTripSecp256k1(t *testing.T) {
	t.Parallel()

	kp, err := GenerateKeyPairWith(SignatureSecp256k1)
	require.NoError(t, err)

	digest, err := HashWith(HashSHA256, []byte("payload"))
	require.NoError(t, err)

	tag, err := Sign(SignatureSecp256k1, kp.PrivateKey, digest)
	require.NoError(t, err)

	assert.True(t, Verify(kp.PublicKey, digest, tag))
}

func TestVerifyRejectsCrossAlgorithmReplay(t *testing.T) {
	t.Parallel()

	edKP, err := GenerateKeyPairWith(SignatureEd25519)
	require.NoError(t, err)

	digest, err := HashWith(HashBlake3, []byte("payload"))
	require.NoError(t, err)

	tag, err := Sign(SignatureEd25519, edKP.PrivateKey, digest)
	require.NoError(t, err)

	// Flip the algo prefix so it claims to be secp256k1; verification
	// must reject it, since the Ed25519 bytes are not a valid secp256k1
	// signature under this key.
	forged := "secp256k1:" + tag[len("ed25519:"):]
	assert.False(t, Verify(edKP.PublicKey, digest, forged))
}

func TestVerifyRejectsTamperedDigest(t *testing.T) {
	t.Parallel()

	kp, err := GenerateKeyPairWith(SignatureEd25519)
	require.NoError(t, err)

	digest, err := HashWith(HashBlake3, []byte("payload"))
	require.NoError(t, err)

	tag, err := Sign(SignatureEd25519, kp.PrivateKey, digest)
	require.NoError(t, err)

	tamperedDigest := "00" + digest[2:]
	assert.False(t, Verify(kp.PublicKey, tamperedDigest, tag))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	plain := []byte("signing key material")
	sealed, err := EncryptWith(EncryptionXChaCha20Poly1305, plain, key)
	require.NoError(t, err)
	assert.NotEqual(t, plain, sealed)

	opened, err := DecryptWith(EncryptionXChaCha20Poly1305, sealed, key)
	require.NoError(t, err)
	assert.Equal(t, plain, opened)
}

func TestEncryptNonceIsRandomPerCall(t *testing.T) {
	t.Parallel()

	key := make([]byte, 32)
	sealedA, err := EncryptWith(EncryptionXChaCha20Poly1305, []byte("x"), key)
	require.NoError(t, err)
	sealedB, err := EncryptWith(EncryptionXChaCha20Poly1305, []byte("x"), key)
	require.NoError(t, err)
	assert.NotEqual(t, sealedA, sealedB)
}

func TestDecryptFailsOnWrongKey(t *testing.T) {
	t.Parallel()

	key1 := make([]byte, 32)
	key2 := make([]byte, 32)
	key2[0] = 1

	sealed, err := EncryptWith(EncryptionXChaCha20Poly1305, []byte("secret"), key1)
	require.NoError(t, err)

	_, err = DecryptWith(EncryptionXChaCha20Poly1305, sealed, key2)
	require.Error(t, err)
}

func TestEncryptUnsupportedAlgorithmsReturnUnsupported(t *testing.T) {
	t.Parallel()

	key := make([]byte, 32)
	_, err := EncryptWith(EncryptionAESGCMSIV, []byte("x"), key)
	require.Error(t, err)

	_, err = EncryptWith(EncryptionAscon128, []byte("x"), key)
	require.Error(t, err)
}

func TestPublicKeyForRecoversMatchingPublicKey(t *testing.T) {
	t.Parallel()

	for _, algo := range []SignatureAlgorithm{SignatureEd25519, SignatureSecp256k1} {
		algo := algo
		t.Run(string(algo), func(t *testing.T) {
			t.Parallel()

			kp, err := GenerateKeyPairWith(algo)
			require.NoError(t, err)

			pub, err := PublicKeyFor(algo, kp.PrivateKey)
			require.NoError(t, err)
			assert.Equal(t, kp.PublicKey, pub)
		})
	}
}

func TestPublicKeyForUnsupportedAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := PublicKeyFor(SignatureAlgorithm("rsa"), []byte("x"))
	require.Error(t, err)
}

func TestDeriveDeterministic(t *testing.T) {
	t.Parallel()

	salt := make([]byte, SaltSize)
	for i := range salt {
		salt[i] = byte(i)
	}

	for _, algo := range []KDFAlgorithm{KDFArgon2id, KDFPBKDF2} {
		algo := algo
		t.Run(string(algo), func(t *testing.T) {
			t.Parallel()

			a, err := DeriveWith(algo, []byte("correct horse"), salt)
			require.NoError(t, err)
			b, err := DeriveWith(algo, []byte("correct horse"), salt)
			require.NoError(t, err)
			assert.Equal(t, a, b)
			assert.Len(t, a, 32)

			c, err := DeriveWith(algo, []byte("wrong horse"), salt)
			require.NoError(t, err)
			assert.NotEqual(t, a, c)
		})
	}
}
