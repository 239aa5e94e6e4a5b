// SPDX-License-Identifier: AGPL-3.0-or-later

// Package collection implements the directory-backed document collection:
// CRUD over individual files, streaming enumeration, query execution, and
// aggregation.
package collection

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cyberpath-hq/sentinel/internal/sentinelerr"
	"github.com/cyberpath-hq/sentinel/pkg/logger"
)

const tempInfix = ".tmp."

// orphanAge is how long a leftover temp file must sit before the
// janitor considers it abandoned rather than in-flight. A cancelled
// writer's temp file is cleaned up lazily on the next write to the same
// directory (§5 of the concurrency model), not eagerly, since eager
// cleanup would race a concurrent writer's own in-progress temp file.
const orphanAge = 10 * time.Minute

// writeFileAtomic writes data to dir/name via a temp file in the same
// directory followed by rename, so a reader never observes a partial
// write. If durable, the file and its parent directory are fsynced
// before returning.
func writeFileAtomic(ctx context.Context, dir, name string, data []byte, durable bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cleanupOrphanTemps(dir, name)

	target := filepath.Join(dir, name)
	tempPath := filepath.Join(dir, name+tempInfix+randomSuffix())

	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return &sentinelerr.IoFailed{Operation: "create-temp", Path: tempPath, Cause: err}
	}

	success := false
	defer func() {
		if !success {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return &sentinelerr.IoFailed{Operation: "write", Path: tempPath, Cause: err}
	}

	if durable {
		if err := f.Sync(); err != nil {
			return &sentinelerr.IoFailed{Operation: "fsync", Path: tempPath, Cause: err}
		}
	}
	if err := f.Close(); err != nil {
		return &sentinelerr.IoFailed{Operation: "close", Path: tempPath, Cause: err}
	}

	if err := os.Rename(tempPath, target); err != nil {
		return &sentinelerr.IoFailed{Operation: "rename", Path: target, Cause: err}
	}
	success = true

	if durable {
		if err := syncDir(dir); err != nil {
			return &sentinelerr.IoFailed{Operation: "fsync-dir", Path: dir, Cause: err}
		}
	}

	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

func randomSuffix() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// cleanupOrphanTemps removes stale temp files left behind by a writer
// whose rename never happened (cancellation, crash). It only touches
// files whose target name matches forName and whose modification time is
// older than orphanAge, so it never races a temp file another in-flight
// writer created moments ago.
func cleanupOrphanTemps(dir, forName string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	prefix := forName + tempInfix
	cutoff := time.Now().Add(-orphanAge)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Logger.Warn("failed to remove orphaned temp file", "path", path, "error", err)
		}
	}
}

func isRegularJSONFile(name string) (id string, ok bool) {
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	return strings.TrimSuffix(name, ".json"), true
}
