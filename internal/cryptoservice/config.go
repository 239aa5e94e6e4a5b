// SPDX-License-Identifier: AGPL-3.0-or-later
package cryptoservice

import (
	"sync"
	"sync/atomic"

	"github.com/cyberpath-hq/sentinel/internal/sentinelerr"
)

// Config is the process-wide algorithm selection. It is set at most once
// per process; every other crypto operation reads the installed Config.
type Config struct {
	Hash       HashAlgorithm
	Signature  SignatureAlgorithm
	Encryption EncryptionAlgorithm
	KDF        KDFAlgorithm
}

// DefaultConfig matches spec defaults: Blake3, Ed25519,
// XChaCha20-Poly1305, Argon2id.
func DefaultConfig() Config {
	return Config{
		Hash:       HashBlake3,
		Signature:  SignatureEd25519,
		Encryption: EncryptionXChaCha20Poly1305,
		KDF:        KDFArgon2id,
	}
}

var (
	globalConfig Config
	configSet    atomic.Bool
	configMu     sync.Mutex
)

// SetGlobalConfig installs cfg as the process-wide configuration. It
// succeeds exactly once per process; subsequent calls fail with
// ErrCryptoConfigAlreadySet regardless of whether cfg is identical to the
// one already installed.
func SetGlobalConfig(cfg Config) error {
	configMu.Lock()
	defer configMu.Unlock()

	if configSet.Load() {
		return sentinelerr.NewCryptoError(sentinelerr.ErrCryptoConfigAlreadySet, nil)
	}
	if err := validate(cfg); err != nil {
		return err
	}
	globalConfig = cfg
	configSet.Store(true)
	return nil
}

// GlobalConfig returns the installed configuration, installing
// DefaultConfig on first access if no explicit configuration was set.
func GlobalConfig() Config {
	configMu.Lock()
	defer configMu.Unlock()

	if !configSet.Load() {
		globalConfig = DefaultConfig()
		configSet.Store(true)
	}
	return globalConfig
}

// resetGlobalConfigForTest undoes the one-shot latch. It exists only so
// package tests can exercise SetGlobalConfig's "already set" path and the
// default-on-first-access path deterministically; it is not part of the
// public contract.
func resetGlobalConfigForTest() {
	configMu.Lock()
	defer configMu.Unlock()
	configSet.Store(false)
	globalConfig = Config{}
}

func validate(cfg Config) error {
	if !cfg.Hash.valid() {
		return sentinelerr.NewCryptoError(sentinelerr.ErrCryptoUnsupported, nil)
	}
	if !cfg.Signature.valid() {
		return sentinelerr.NewCryptoError(sentinelerr.ErrCryptoUnsupported, nil)
	}
	if !cfg.Encryption.valid() {
		return sentinelerr.NewCryptoError(sentinelerr.ErrCryptoUnsupported, nil)
	}
	if !cfg.KDF.valid() {
		return sentinelerr.NewCryptoError(sentinelerr.ErrCryptoUnsupported, nil)
	}
	return nil
}
