// SPDX-License-Identifier: AGPL-3.0-or-later
package store

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cyberpath-hq/sentinel/internal/cryptoservice"
	"github.com/cyberpath-hq/sentinel/internal/sentinelerr"
)

const configFileName = "config.yaml"

// fileConfig is the on-disk form of the algorithm selection a store was
// created under, so a later process with different compiled-in defaults
// still opens the store under the algorithms its documents were actually
// hashed and signed with.
type fileConfig struct {
	Hash       string `yaml:"hash"`
	Signature  string `yaml:"signature"`
	Encryption string `yaml:"encryption"`
	KDF        string `yaml:"kdf"`
}

func toFileConfig(cfg cryptoservice.Config) fileConfig {
	return fileConfig{
		Hash:       string(cfg.Hash),
		Signature:  string(cfg.Signature),
		Encryption: string(cfg.Encryption),
		KDF:        string(cfg.KDF),
	}
}

func (fc fileConfig) toConfig() cryptoservice.Config {
	return cryptoservice.Config{
		Hash:       cryptoservice.HashAlgorithm(fc.Hash),
		Signature:  cryptoservice.SignatureAlgorithm(fc.Signature),
		Encryption: cryptoservice.EncryptionAlgorithm(fc.Encryption),
		KDF:        cryptoservice.KDFAlgorithm(fc.KDF),
	}
}

// loadOrRecordConfig reads root/config.yaml and installs it as the
// global crypto configuration if present. If absent, it writes the
// configuration currently in effect (installing the default first if
// nothing was ever set) so the store becomes self-describing on its
// first open. A config.yaml belonging to an already-open process whose
// global configuration was set to something else is not an error, the
// caller's explicit choice wins, and the discrepancy is left for the
// caller to reconcile since SetGlobalConfig permits exactly one writer.
func loadOrRecordConfig(root string) error {
	path := filepath.Join(root, configFileName)

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return writeConfigFile(path, cryptoservice.GlobalConfig())
	case err != nil:
		return &sentinelerr.IoFailed{Operation: "read", Path: path, Cause: err}
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return &sentinelerr.SerializationFailed{Cause: err}
	}

	if err := cryptoservice.SetGlobalConfig(fc.toConfig()); err != nil {
		if errors.Is(err, sentinelerr.ErrCryptoConfigAlreadySet) {
			return nil
		}
		return err
	}
	return nil
}

func writeConfigFile(path string, cfg cryptoservice.Config) error {
	out, err := yaml.Marshal(toFileConfig(cfg))
	if err != nil {
		return &sentinelerr.SerializationFailed{Cause: err}
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, out, 0o640); err != nil {
		return &sentinelerr.IoFailed{Operation: "write-temp", Path: path, Cause: err}
	}
	if err := os.Rename(tempPath, path); err != nil {
		return &sentinelerr.IoFailed{Operation: "rename", Path: path, Cause: err}
	}
	return nil
}
