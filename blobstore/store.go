// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Package blobstore declares the revision blob store: immutable JSON bodies
// keyed by entity and revision, carrying a publication state in metadata.
package blobstore

import (
	"context"
	"fmt"

	"github.com/zeebo/errs"
)

// Error is the default blobstore error class.
var Error = errs.Class("blobstore")

// ErrNotFound is returned when the requested revision blob does not exist.
var ErrNotFound = errs.Class("blob not found")

// PublicationState marks whether a revision blob has been published to the
// metadata index. Blobs are written pending and flipped after the head
// pointer moves.
type PublicationState string

// Publication states.
const (
	StatePending   PublicationState = "pending"
	StatePublished PublicationState = "published"
)

// Key returns the object key for a revision blob.
func Key(externalID string, revisionID int64) string {
	return fmt.Sprintf("%s/r%d.json", externalID, revisionID)
}

// Blob is a revision body together with its publication state.
type Blob struct {
	Body  []byte
	State PublicationState
}

// Store persists revision blobs. Bodies are opaque bytes; interpretation is
// the caller's concern.
//
// Writes to an existing key overwrite it; the write pipeline only ever
// rewrites a key with identical content, so overwrites are harmless.
type Store interface {
	// Write stores a revision body with the given publication state.
	Write(ctx context.Context, externalID string, revisionID int64, body []byte, state PublicationState) error

	// Read fetches a revision blob. Returns ErrNotFound if absent.
	Read(ctx context.Context, externalID string, revisionID int64) (Blob, error)

	// MarkPublished flips the blob's publication state to published without
	// touching the body. Returns ErrNotFound if absent.
	MarkPublished(ctx context.Context, externalID string, revisionID int64) error

	// Ping verifies the backing service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
