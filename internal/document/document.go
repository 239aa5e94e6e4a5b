// SPDX-License-Identifier: AGPL-3.0-or-later

// Package document implements the document record: its envelope fields,
// construction and mutation, canonical hashing, signing, and the
// verification policy applied on read.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cyberpath-hq/sentinel/internal/cryptoservice"
	"github.com/cyberpath-hq/sentinel/internal/identifier"
	"github.com/cyberpath-hq/sentinel/internal/sentinelerr"
	"github.com/cyberpath-hq/sentinel/pkg/logger"
)

// Document is one record: the field order below is the wire field order
// (spec-fixed for diff stability) since encoding/json always emits struct
// fields in declaration order.
type Document struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Hash      string    `json:"hash"`
	Signature string    `json:"signature"`
	Data      any       `json:"data"`
}

// SigningKey is the minimal shape document needs from a store's signing
// key; cryptoservice.KeyPair satisfies it directly.
type SigningKey struct {
	Algorithm  cryptoservice.SignatureAlgorithm
	PrivateKey []byte
}

// New constructs a fresh document at version 1. signingKey may be nil,
// producing an unsigned document (empty Signature).
func New(id string, data any, signingKey *SigningKey) (*Document, error) {
	if err := identifier.ValidateID(id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d := &Document{
		ID:        id,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		Data:      data,
	}
	if err := d.rehash(signingKey); err != nil {
		return nil, err
	}
	return d, nil
}

// Update mutates data in place: recomputes Hash and Signature, bumps
// UpdatedAt (never below CreatedAt), and increments Version. Ties in
// UpdatedAt across successive writers still produce distinct versions,
// since Version, not time, is the ordering key.
func (d *Document) Update(data any, signingKey *SigningKey) error {
	d.Data = data
	if err := d.rehash(signingKey); err != nil {
		return err
	}

	now := time.Now().UTC()
	if now.Before(d.CreatedAt) {
		now = d.CreatedAt
	}
	d.UpdatedAt = now
	d.Version++
	return nil
}

func (d *Document) rehash(signingKey *SigningKey) error {
	canon, err := Canonicalize(d.Data)
	if err != nil {
		return &sentinelerr.SerializationFailed{Cause: err}
	}

	hash, err := cryptoservice.Hash(canon)
	if err != nil {
		return err
	}
	d.Hash = hash

	if signingKey == nil {
		d.Signature = ""
		return nil
	}
	sig, err := cryptoservice.Sign(signingKey.Algorithm, signingKey.PrivateKey, hash)
	if err != nil {
		return err
	}
	d.Signature = sig
	return nil
}

// VerificationMode is one of Strict, Warn, Silent, applied independently
// to each of the three checks in VerificationOptions.
type VerificationMode int

const (
	ModeStrict VerificationMode = iota
	ModeWarn
	ModeSilent
)

// VerificationOptions configures the three independent checks the read
// path applies: that a present signature actually verifies, that an
// absent signature is acceptable, and that the stored hash still matches
// a fresh canonicalization of data.
type VerificationOptions struct {
	SignatureVerification VerificationMode
	EmptySignature        VerificationMode
	HashVerification      VerificationMode
}

// StrictOptions applies Strict to every check, the policy a compliance
// reader wants by default.
func StrictOptions() VerificationOptions {
	return VerificationOptions{
		SignatureVerification: ModeStrict,
		EmptySignature:        ModeStrict,
		HashVerification:      ModeStrict,
	}
}

// DefaultVerificationOptions is what a Collection applies when the caller
// hasn't chosen a policy: a tampered hash is always a hard failure, a
// failing signature is surfaced as a warning rather than blocking reads
// (many stores run unsigned), and an absent signature is unremarkable.
func DefaultVerificationOptions() VerificationOptions {
	return VerificationOptions{
		HashVerification:      ModeStrict,
		SignatureVerification: ModeWarn,
		EmptySignature:        ModeSilent,
	}
}

// VerificationOutcome reports which checks ran, which passed, and any
// Warn-mode diagnostics collected along the way.
type VerificationOutcome struct {
	HashOK      bool
	SignatureOK bool
	Warnings    []string
}

// Verify applies opts to d. pub is the store's signing public key; it may
// be nil when the store carries no signing key, which only matters when
// d.Signature is non-empty (a signed document arriving at an unsigned
// store can never be verified and is treated as a signature failure).
//
// On Strict failure the check's sentinelerr.IntegrityViolation is
// returned immediately and VerificationOutcome is the zero value. On Warn
// failure processing continues and the diagnostic both lands in
// Warnings and is logged. Silent suppresses the check entirely.
func (d *Document) Verify(pub []byte, opts VerificationOptions) (VerificationOutcome, error) {
	var out VerificationOutcome

	// Hash check.
	canon, err := Canonicalize(d.Data)
	if err != nil {
		return out, &sentinelerr.SerializationFailed{Cause: err}
	}
	expected, err := cryptoservice.HashWith(cryptoservice.GlobalConfig().Hash, canon)
	if err != nil {
		return out, err
	}
	out.HashOK = expected == d.Hash

	if !out.HashOK {
		switch opts.HashVerification {
		case ModeStrict:
			return VerificationOutcome{}, &sentinelerr.IntegrityViolation{Which: "hash", ID: d.ID}
		case ModeWarn:
			msg := fmt.Sprintf("hash mismatch on document %q", d.ID)
			out.Warnings = append(out.Warnings, msg)
			logger.Logger.Warn(msg, "doc_id", d.ID)
		case ModeSilent:
		}
	}

	// Signature checks.
	if d.Signature == "" {
		switch opts.EmptySignature {
		case ModeStrict:
			return VerificationOutcome{}, &sentinelerr.IntegrityViolation{Which: "empty-signature", ID: d.ID}
		case ModeWarn:
			msg := fmt.Sprintf("empty signature on document %q", d.ID)
			out.Warnings = append(out.Warnings, msg)
			logger.Logger.Warn(msg, "doc_id", d.ID)
		case ModeSilent:
		}
		return out, nil
	}

	out.SignatureOK = pub != nil && cryptoservice.Verify(pub, d.Hash, d.Signature)
	if !out.SignatureOK {
		switch opts.SignatureVerification {
		case ModeStrict:
			return VerificationOutcome{}, &sentinelerr.IntegrityViolation{Which: "signature", ID: d.ID}
		case ModeWarn:
			msg := fmt.Sprintf("signature verification failed on document %q", d.ID)
			out.Warnings = append(out.Warnings, msg)
			logger.Logger.Warn(msg, "doc_id", d.ID)
		case ModeSilent:
		}
	}

	return out, nil
}

// Encode writes d as the fixed-field-order JSON object described by the
// document file format.
func Encode(w io.Writer, d *Document) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(d); err != nil {
		return &sentinelerr.SerializationFailed{Cause: err}
	}
	return nil
}

// Decode reads a Document, rejecting any unknown top-level field so that
// a reader never silently ignores a field a newer writer considered
// load-bearing.
func Decode(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, &sentinelerr.SerializationFailed{Cause: err}
	}
	// A document file is exactly one JSON object; reject trailing data.
	if dec.More() {
		return nil, &sentinelerr.SerializationFailed{Cause: fmt.Errorf("trailing data after document object")}
	}
	return &d, nil
}

// DecodeBytes is a convenience wrapper around Decode for already-loaded
// file contents.
func DecodeBytes(b []byte) (*Document, error) {
	return Decode(bytes.NewReader(b))
}
