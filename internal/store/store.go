// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store implements the document store root: collection registry
// and lifecycle, and passphrase-gated signing-key persistence.
package store

import (
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/cyberpath-hq/sentinel/internal/collection"
	"github.com/cyberpath-hq/sentinel/internal/cryptoservice"
	"github.com/cyberpath-hq/sentinel/internal/document"
	"github.com/cyberpath-hq/sentinel/internal/identifier"
	"github.com/cyberpath-hq/sentinel/internal/sentinelerr"
	"github.com/cyberpath-hq/sentinel/pkg/logger"
)

const (
	dataDirName    = "data"
	keysDirName    = ".keys"
	signingKeyFile = "signing.key"
)

// Store is the root of a document database: a directory holding one
// subdirectory per collection under data/, and optionally an encrypted
// signing key (Ed25519 under the default configuration) under .keys/.
type Store struct {
	root       string
	dataDir    string
	signingKey *document.SigningKey
	publicKey  []byte
	durable    bool
}

// Option configures a Store at Open time.
type Option func(*Store)

// WithDurability enables fsync on every write issued by every collection
// this store opens.
func WithDurability(durable bool) Option {
	return func(s *Store) { s.durable = durable }
}

// Open ensures <root>/data exists and, if passphrase is non-empty,
// establishes the store's signing key: loading and decrypting it from
// .keys/signing.key if present, otherwise generating a fresh pair for the
// configured signature algorithm (Ed25519 by default) and persisting it
// encrypted under the passphrase. A wrong passphrase
// against an existing key surfaces the same decrypt failure as a
// corrupted key file; the two are indistinguishable by design.
func Open(root string, passphrase string, opts ...Option) (*Store, error) {
	dataDir := filepath.Join(root, dataDirName)
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, &sentinelerr.IoFailed{Operation: "mkdir", Path: dataDir, Cause: err}
	}

	s := &Store{root: root, dataDir: dataDir}
	for _, opt := range opts {
		opt(s)
	}

	if err := loadOrRecordConfig(root); err != nil {
		return nil, err
	}

	if passphrase != "" {
		signingKey, pub, err := establishSigningKey(root, passphrase)
		if err != nil {
			return nil, err
		}
		s.signingKey = signingKey
		s.publicKey = pub
	}

	return s, nil
}

// Collection validates name, creates the collection directory if absent,
// and returns a handle sharing the store's signing key. Concurrent
// callers racing this call may each get a handle backed by the same
// directory; the directory creation itself is race-safe (MkdirAll is
// idempotent), so no caller observes a half-created collection.
func (s *Store) Collection(name string, opts ...collection.Option) (*collection.Collection, error) {
	allOpts := opts
	if s.durable {
		allOpts = append([]collection.Option{collection.WithDurability(true)}, opts...)
	}
	return collection.New(s.dataDir, name, s.signingKey, s.publicKey, allOpts...)
}

// DeleteCollection removes a collection's entire subtree. Fails with
// *sentinelerr.NotFound if the collection does not exist.
func (s *Store) DeleteCollection(name string) error {
	if err := identifier.ValidateCollection(name); err != nil {
		return err
	}
	dir := filepath.Join(s.dataDir, name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &sentinelerr.NotFound{ID: name}
	}
	if err := os.RemoveAll(dir); err != nil {
		return &sentinelerr.IoFailed{Operation: "remove-all", Path: dir, Cause: err}
	}
	return nil
}

// ListCollections returns the names of data/'s direct subdirectories
// that pass the collection-name predicate, sorted by byte order.
func (s *Store) ListCollections() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, &sentinelerr.IoFailed{Operation: "readdir", Path: s.dataDir, Cause: err}
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if identifier.IsValidCollection(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// PublicKey returns the store's signing public key, or nil if the store
// was opened without a passphrase.
func (s *Store) PublicKey() []byte {
	return s.publicKey
}

// establishSigningKey loads or creates the store's signing key file.
func establishSigningKey(root, passphrase string) (*document.SigningKey, []byte, error) {
	keysDir := filepath.Join(root, keysDirName)
	if err := os.MkdirAll(keysDir, 0o700); err != nil {
		return nil, nil, &sentinelerr.IoFailed{Operation: "mkdir", Path: keysDir, Cause: err}
	}
	keyPath := filepath.Join(keysDir, signingKeyFile)

	raw, err := os.ReadFile(keyPath)
	switch {
	case os.IsNotExist(err):
		return generateAndPersistSigningKey(keyPath, passphrase)
	case err != nil:
		return nil, nil, &sentinelerr.IoFailed{Operation: "read", Path: keyPath, Cause: err}
	default:
		return decryptSigningKey(raw, passphrase)
	}
}

func generateAndPersistSigningKey(keyPath, passphrase string) (*document.SigningKey, []byte, error) {
	algo := cryptoservice.GlobalConfig().Signature
	kp, err := cryptoservice.GenerateKeyPairWith(algo)
	if err != nil {
		return nil, nil, err
	}

	salt := make([]byte, cryptoservice.SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, nil, &sentinelerr.IoFailed{Operation: "generate-salt", Path: keyPath, Cause: err}
	}

	derived, err := cryptoservice.Derive([]byte(passphrase), salt)
	if err != nil {
		return nil, nil, err
	}

	// signing-key file payload is a one-byte algorithm-name length, the
	// algorithm name, then the raw private key bytes, so that
	// decryptSigningKey can reconstruct a KeyPair without a second file.
	plaintext := make([]byte, 0, 1+len(algo)+len(kp.PrivateKey))
	plaintext = append(plaintext, byte(len(algo)))
	plaintext = append(plaintext, algo...)
	plaintext = append(plaintext, kp.PrivateKey...)

	sealed, err := cryptoservice.EncryptWith(cryptoservice.GlobalConfig().Encryption, plaintext, derived)
	if err != nil {
		return nil, nil, err
	}

	payload := append(append([]byte{}, salt...), sealed...)
	if err := os.WriteFile(keyPath+".tmp", payload, 0o600); err != nil {
		return nil, nil, &sentinelerr.IoFailed{Operation: "write-temp", Path: keyPath, Cause: err}
	}
	if err := os.Rename(keyPath+".tmp", keyPath); err != nil {
		return nil, nil, &sentinelerr.IoFailed{Operation: "rename", Path: keyPath, Cause: err}
	}

	logger.Logger.Info("generated store signing key", "path", keyPath, "algorithm", string(algo))

	return &document.SigningKey{Algorithm: kp.Algorithm, PrivateKey: kp.PrivateKey}, kp.PublicKey, nil
}

func decryptSigningKey(raw []byte, passphrase string) (*document.SigningKey, []byte, error) {
	if len(raw) < cryptoservice.SaltSize {
		return nil, nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoDecrypt, nil)
	}
	salt, sealed := raw[:cryptoservice.SaltSize], raw[cryptoservice.SaltSize:]

	derived, err := cryptoservice.Derive([]byte(passphrase), salt)
	if err != nil {
		return nil, nil, err
	}

	plaintext, err := cryptoservice.DecryptWith(cryptoservice.GlobalConfig().Encryption, sealed, derived)
	if err != nil {
		// Wrong passphrase and corruption both surface identically here:
		// an AEAD open failure carries no information about which.
		return nil, nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoDecrypt, err)
	}
	if len(plaintext) < 1 {
		return nil, nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoDecrypt, nil)
	}

	algoLen := int(plaintext[0])
	if len(plaintext) < 1+algoLen {
		return nil, nil, sentinelerr.NewCryptoError(sentinelerr.ErrCryptoDecrypt, nil)
	}
	algo := cryptoservice.SignatureAlgorithm(plaintext[1 : 1+algoLen])
	priv := plaintext[1+algoLen:]

	pub, err := cryptoservice.PublicKeyFor(algo, priv)
	if err != nil {
		return nil, nil, err
	}

	return &document.SigningKey{Algorithm: algo, PrivateKey: priv}, pub, nil
}
