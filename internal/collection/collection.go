// SPDX-License-Identifier: AGPL-3.0-or-later
package collection

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/cyberpath-hq/sentinel/internal/document"
	"github.com/cyberpath-hq/sentinel/internal/identifier"
	"github.com/cyberpath-hq/sentinel/internal/sentinelerr"
)

const deletedDirName = ".deleted"

// Collection is a directory-backed set of documents:
// <root>/data/<name>/<id>.json, with soft-deletes moved to
// <root>/data/<name>/.deleted/<id>.json.
type Collection struct {
	Name string

	dir        string
	signingKey *document.SigningKey
	publicKey  []byte
	verify     document.VerificationOptions
	durable    bool
}

// Option configures a Collection at construction time.
type Option func(*Collection)

// WithVerification overrides the default verification policy applied on
// every read.
func WithVerification(opts document.VerificationOptions) Option {
	return func(c *Collection) { c.verify = opts }
}

// WithDurability enables fsync on every write, trading throughput for a
// guarantee that a completed write survives a crash immediately after.
func WithDurability(durable bool) Option {
	return func(c *Collection) { c.durable = durable }
}

// New opens (creating if absent) a collection directory under dataDir.
// signingKey and publicKey may both be nil for an unsigned store.
func New(dataDir, name string, signingKey *document.SigningKey, publicKey []byte, opts ...Option) (*Collection, error) {
	if err := identifier.ValidateCollection(name); err != nil {
		return nil, err
	}

	dir := filepath.Join(dataDir, name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, &sentinelerr.IoFailed{Operation: "mkdir", Path: dir, Cause: err}
	}

	c := &Collection{
		Name:       name,
		dir:        dir,
		signingKey: signingKey,
		publicKey:  publicKey,
		verify:     document.DefaultVerificationOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Collection) path(id string) string {
	return filepath.Join(c.dir, id+".json")
}

func (c *Collection) deletedPath(id string) string {
	return filepath.Join(c.dir, deletedDirName, id+".json")
}

// Insert creates a new document. It fails with *sentinelerr.AlreadyExists
// if id is already present.
func (c *Collection) Insert(ctx context.Context, id string, data any) (*document.Document, error) {
	if err := identifier.ValidateID(id); err != nil {
		return nil, err
	}

	if _, err := os.Stat(c.path(id)); err == nil {
		return nil, &sentinelerr.AlreadyExists{ID: id}
	} else if !os.IsNotExist(err) {
		return nil, &sentinelerr.IoFailed{Operation: "stat", Path: c.path(id), Cause: err}
	}

	d, err := document.New(id, data, c.signingKey)
	if err != nil {
		return nil, err
	}
	if err := c.writeDocument(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Get loads a document by id, returning (nil, nil) if absent. The
// returned document has already passed the collection's verification
// policy.
func (c *Collection) Get(ctx context.Context, id string) (*document.Document, error) {
	if err := identifier.ValidateID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(c.path(id))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &sentinelerr.IoFailed{Operation: "read", Path: c.path(id), Cause: err}
	}

	d, err := document.DecodeBytes(raw)
	if err != nil {
		return nil, err
	}
	if _, err := d.Verify(c.publicKey, c.verify); err != nil {
		return nil, err
	}
	return d, nil
}

// Update mutates an existing document's data, preserving created_at and
// incrementing version. Fails with *sentinelerr.NotFound if id is absent.
func (c *Collection) Update(ctx context.Context, id string, data any) (*document.Document, error) {
	d, err := c.loadUnverified(id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, &sentinelerr.NotFound{ID: id}
	}

	if err := d.Update(data, c.signingKey); err != nil {
		return nil, err
	}
	if err := c.writeDocument(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Upsert inserts id if absent, otherwise updates it. wasInsert reports
// which branch ran.
func (c *Collection) Upsert(ctx context.Context, id string, data any) (d *document.Document, wasInsert bool, err error) {
	d, err = c.Insert(ctx, id, data)
	if err == nil {
		return d, true, nil
	}
	var exists *sentinelerr.AlreadyExists
	if !errors.As(err, &exists) {
		return nil, false, err
	}

	d, err = c.Update(ctx, id, data)
	return d, false, err
}

// Delete soft-deletes a document by moving it into .deleted/. It is
// idempotent: deleting an id that is already absent (or already deleted)
// succeeds without error.
func (c *Collection) Delete(ctx context.Context, id string) error {
	if err := identifier.ValidateID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	src := c.path(id)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}

	deletedDir := filepath.Join(c.dir, deletedDirName)
	if err := os.MkdirAll(deletedDir, 0o750); err != nil {
		return &sentinelerr.IoFailed{Operation: "mkdir", Path: deletedDir, Cause: err}
	}

	dst := c.deletedPath(id)
	if err := os.Rename(src, dst); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &sentinelerr.IoFailed{Operation: "rename", Path: dst, Cause: err}
	}
	return nil
}

// Count returns the number of live (non-deleted) documents.
func (c *Collection) Count() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, &sentinelerr.IoFailed{Operation: "readdir", Path: c.dir, Cause: err}
	}
	n := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := isRegularJSONFile(entry.Name()); ok {
			n++
		}
	}
	return n, nil
}

// BulkItem is one (id, data) pair for BulkInsert.
type BulkItem struct {
	ID   string
	Data any
}

// BulkInsert inserts each item in order. It is not cross-item atomic:
// items inserted before a failure remain inserted. The returned error
// names the offending id via the wrapped *sentinelerr.AlreadyExists (or
// other insert failure).
func (c *Collection) BulkInsert(ctx context.Context, items []BulkItem) error {
	for _, item := range items {
		if _, err := c.Insert(ctx, item.ID, item.Data); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// loadUnverified reads and decodes a document without running the
// verification policy, for internal use by Update (which is about to
// rewrite the document anyway).
func (c *Collection) loadUnverified(id string) (*document.Document, error) {
	if err := identifier.ValidateID(id); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(c.path(id))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &sentinelerr.IoFailed{Operation: "read", Path: c.path(id), Cause: err}
	}
	return document.DecodeBytes(raw)
}

func (c *Collection) writeDocument(ctx context.Context, d *document.Document) error {
	var buf bytes.Buffer
	if err := document.Encode(&buf, d); err != nil {
		return err
	}
	return writeFileAtomic(ctx, c.dir, d.ID+".json", buf.Bytes(), c.durable)
}

// StreamDocumentIDs walks the collection directory and invokes fn with
// each live document id in directory order, stopping at the first error
// fn returns or ctx cancellation. The traversal is not restartable:
// calling it again re-reads the directory from scratch.
func (c *Collection) StreamDocumentIDs(ctx context.Context, fn func(id string) error) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return &sentinelerr.IoFailed{Operation: "readdir", Path: c.dir, Cause: err}
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			continue
		}
		id, ok := isRegularJSONFile(entry.Name())
		if !ok {
			continue
		}
		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}

// All streams every live, verified document to fn, in directory order.
func (c *Collection) All(ctx context.Context, fn func(*document.Document) error) error {
	return c.StreamDocumentIDs(ctx, func(id string) error {
		d, err := c.Get(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			// Deleted or renamed away between readdir and Get; skip.
			return nil
		}
		return fn(d)
	})
}

// sortedIDs is a helper for tests and callers that want a deterministic,
// fully materialized view of the live ids.
func (c *Collection) sortedIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := c.StreamDocumentIDs(ctx, func(id string) error {
		ids = append(ids, id)
		return nil
	})
	sort.Strings(ids)
	return ids, err
}
