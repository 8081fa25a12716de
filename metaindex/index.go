// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Package metaindex declares the relational metadata index: the external to
// internal ID mapping, per-entity head pointers with protection flags, the
// revision list, and the redirect graph.
package metaindex

import (
	"context"
	"time"

	"github.com/zeebo/errs"
)

// Error is the default metaindex error class.
var Error = errs.Class("metaindex")

// ErrAlreadyExists is returned on unique-constraint conflicts: a duplicate
// external ID registration, head insert, or redirect edge.
var ErrAlreadyExists = errs.Class("already exists")

// Flags is the protection and lifecycle flag set carried on a head row.
// It mirrors the current head revision so read-path checks skip the blob.
type Flags struct {
	IsSemiProtected     bool
	IsLocked            bool
	IsArchived          bool
	IsDangling          bool
	IsMassEditProtected bool
	IsDeleted           bool
	IsRedirect          bool
}

// Head is one row of the entity head table.
type Head struct {
	InternalID     int64
	HeadRevisionID int64
	Flags
	RedirectsTo *int64 // internal id of the redirect target, nil when not a redirect
}

// RevisionInfo is one row of the revision list table.
type RevisionInfo struct {
	InternalID int64
	RevisionID int64
	CreatedAt  time.Time
	IsMassEdit bool
	EditType   string
}

// EntityStatus selects a head-table flag for operator list queries.
type EntityStatus string

// Recognised list statuses.
const (
	StatusLocked        EntityStatus = "locked"
	StatusSemiProtected EntityStatus = "semi_protected"
	StatusArchived      EntityStatus = "archived"
	StatusDangling      EntityStatus = "dangling"
)

// ListedEntity is one result of a head-table list query, joined back to the
// external ID.
type ListedEntity struct {
	ExternalID     string
	HeadRevisionID int64
	Flags
}

// RevisionListing is one result of a revision-table list query.
type RevisionListing struct {
	ExternalID string
	RevisionID int64
	CreatedAt  time.Time
	IsMassEdit bool
	EditType   string
}

// DB is the metadata index. Every operation is a single atomic statement
// against the backing store.
type DB interface {
	// ResolveID maps an external ID to its internal key. The second return
	// reports whether the mapping exists.
	ResolveID(ctx context.Context, externalID string) (int64, bool, error)

	// RegisterEntity inserts a new external-to-internal mapping. Returns
	// ErrAlreadyExists if the external ID is taken.
	RegisterEntity(ctx context.Context, externalID string, internalID int64) error

	// GetHead returns the entity's head row. The second return reports
	// whether a head row exists.
	GetHead(ctx context.Context, internalID int64) (Head, bool, error)

	// InsertRevision records a revision in the revision list. Idempotent:
	// inserting an existing (internal_id, revision_id) pair is a no-op.
	InsertRevision(ctx context.Context, rev RevisionInfo) error

	// InsertHeadWithStatus creates the entity's head row. Returns
	// ErrAlreadyExists if a row already exists (a concurrent writer won).
	InsertHeadWithStatus(ctx context.Context, internalID, revisionID int64, flags Flags) error

	// CASUpdateHead advances the head pointer and flag snapshot iff the
	// stored head still equals expected. The boolean reports whether the
	// swap happened; false means a concurrent writer won.
	CASUpdateHead(ctx context.Context, internalID, expected, revisionID int64, flags Flags) (bool, error)

	// HardDeleteEntity advances the head and sets is_deleted permanently.
	HardDeleteEntity(ctx context.Context, internalID, revisionID int64) error

	// CreateRedirectEdge records a redirect in the graph table. Returns
	// ErrAlreadyExists on a duplicate (from, to) pair.
	CreateRedirectEdge(ctx context.Context, fromInternalID, toInternalID int64, createdBy string) error

	// SetRedirectTarget sets or clears the head row's redirect pointer.
	SetRedirectTarget(ctx context.Context, internalID int64, target *int64) error

	// GetRedirectTarget returns the external ID the entity redirects to, or
	// "" if it is not a redirect.
	GetRedirectTarget(ctx context.Context, internalID int64) (string, error)

	// GetIncomingRedirects returns the external IDs of entities redirecting
	// to the given entity, ordered by edge creation.
	GetIncomingRedirects(ctx context.Context, internalID int64) ([]string, error)

	// GetHistory returns the entity's revisions, newest first.
	GetHistory(ctx context.Context, internalID int64) ([]RevisionInfo, error)

	// ListByStatus returns entities whose head row has the given flag set.
	ListByStatus(ctx context.Context, status EntityStatus, limit int) ([]ListedEntity, error)

	// ListByEditType returns revisions with the given edit type, newest first.
	ListByEditType(ctx context.Context, editType string, limit int) ([]RevisionListing, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection pool.
	Close() error
}
