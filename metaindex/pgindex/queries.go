// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package pgindex

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zeebo/errs"

	"github.com/wikigraph/entitystore/metaindex"
)

// ResolveID implements metaindex.DB.
func (db *DB) ResolveID(ctx context.Context, externalID string) (_ int64, _ bool, err error) {
	defer mon.Task()(&ctx)(&err)

	var internalID int64
	err = db.db.QueryRowContext(ctx,
		`SELECT internal_id FROM entity_id_mapping WHERE external_id = $1`,
		externalID).Scan(&internalID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, Error.Wrap(err)
	}
	return internalID, true, nil
}

// RegisterEntity implements metaindex.DB.
func (db *DB) RegisterEntity(ctx context.Context, externalID string, internalID int64) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.db.ExecContext(ctx,
		`INSERT INTO entity_id_mapping (external_id, internal_id) VALUES ($1, $2)`,
		externalID, internalID)
	if isUniqueViolation(err) {
		return metaindex.ErrAlreadyExists.New("external id %s", externalID)
	}
	return Error.Wrap(err)
}

// GetHead implements metaindex.DB.
func (db *DB) GetHead(ctx context.Context, internalID int64) (_ metaindex.Head, _ bool, err error) {
	defer mon.Task()(&ctx)(&err)

	head := metaindex.Head{InternalID: internalID}
	var redirectsTo sql.NullInt64
	err = db.db.QueryRowContext(ctx, `
		SELECT head_revision_id,
		       is_semi_protected, is_locked, is_archived, is_dangling,
		       is_mass_edit_protected, is_deleted, is_redirect, redirects_to
		FROM entity_head WHERE internal_id = $1`, internalID).Scan(
		&head.HeadRevisionID,
		&head.IsSemiProtected, &head.IsLocked, &head.IsArchived, &head.IsDangling,
		&head.IsMassEditProtected, &head.IsDeleted, &head.IsRedirect, &redirectsTo)
	if errors.Is(err, sql.ErrNoRows) {
		return metaindex.Head{}, false, nil
	}
	if err != nil {
		return metaindex.Head{}, false, Error.Wrap(err)
	}
	if redirectsTo.Valid {
		head.RedirectsTo = &redirectsTo.Int64
	}
	return head, true, nil
}

// InsertRevision implements metaindex.DB.
func (db *DB) InsertRevision(ctx context.Context, rev metaindex.RevisionInfo) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.db.ExecContext(ctx, `
		INSERT INTO entity_revisions (internal_id, revision_id, created_at, is_mass_edit, edit_type)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (internal_id, revision_id) DO NOTHING`,
		rev.InternalID, rev.RevisionID, rev.CreatedAt, rev.IsMassEdit, rev.EditType)
	return Error.Wrap(err)
}

// InsertHeadWithStatus implements metaindex.DB.
func (db *DB) InsertHeadWithStatus(ctx context.Context, internalID, revisionID int64, flags metaindex.Flags) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.db.ExecContext(ctx, `
		INSERT INTO entity_head (internal_id, head_revision_id,
			is_semi_protected, is_locked, is_archived, is_dangling,
			is_mass_edit_protected, is_deleted, is_redirect)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		internalID, revisionID,
		flags.IsSemiProtected, flags.IsLocked, flags.IsArchived, flags.IsDangling,
		flags.IsMassEditProtected, flags.IsDeleted, flags.IsRedirect)
	if isUniqueViolation(err) {
		return metaindex.ErrAlreadyExists.New("head for %d", internalID)
	}
	return Error.Wrap(err)
}

// CASUpdateHead implements metaindex.DB.
func (db *DB) CASUpdateHead(ctx context.Context, internalID, expected, revisionID int64, flags metaindex.Flags) (_ bool, err error) {
	defer mon.Task()(&ctx)(&err)

	result, err := db.db.ExecContext(ctx, `
		UPDATE entity_head SET head_revision_id = $3,
			is_semi_protected = $4, is_locked = $5, is_archived = $6,
			is_dangling = $7, is_mass_edit_protected = $8, is_deleted = $9,
			is_redirect = $10
		WHERE internal_id = $1 AND head_revision_id = $2`,
		internalID, expected, revisionID,
		flags.IsSemiProtected, flags.IsLocked, flags.IsArchived,
		flags.IsDangling, flags.IsMassEditProtected, flags.IsDeleted,
		flags.IsRedirect)
	if err != nil {
		return false, Error.Wrap(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, Error.Wrap(err)
	}
	return affected == 1, nil
}

// HardDeleteEntity implements metaindex.DB.
func (db *DB) HardDeleteEntity(ctx context.Context, internalID, revisionID int64) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.db.ExecContext(ctx, `
		UPDATE entity_head SET head_revision_id = $2, is_deleted = TRUE
		WHERE internal_id = $1`, internalID, revisionID)
	return Error.Wrap(err)
}

// CreateRedirectEdge implements metaindex.DB.
func (db *DB) CreateRedirectEdge(ctx context.Context, fromInternalID, toInternalID int64, createdBy string) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.db.ExecContext(ctx, `
		INSERT INTO entity_redirects (from_internal_id, to_internal_id, created_by)
		VALUES ($1, $2, $3)`, fromInternalID, toInternalID, createdBy)
	if isUniqueViolation(err) {
		return metaindex.ErrAlreadyExists.New("redirect edge %d -> %d", fromInternalID, toInternalID)
	}
	return Error.Wrap(err)
}

// SetRedirectTarget implements metaindex.DB.
func (db *DB) SetRedirectTarget(ctx context.Context, internalID int64, target *int64) (err error) {
	defer mon.Task()(&ctx)(&err)

	var value sql.NullInt64
	if target != nil {
		value = sql.NullInt64{Int64: *target, Valid: true}
	}
	_, err = db.db.ExecContext(ctx,
		`UPDATE entity_head SET redirects_to = $2 WHERE internal_id = $1`,
		internalID, value)
	return Error.Wrap(err)
}

// GetRedirectTarget implements metaindex.DB.
func (db *DB) GetRedirectTarget(ctx context.Context, internalID int64) (_ string, err error) {
	defer mon.Task()(&ctx)(&err)

	var externalID string
	err = db.db.QueryRowContext(ctx, `
		SELECT m.external_id
		FROM entity_head h
		JOIN entity_id_mapping m ON m.internal_id = h.redirects_to
		WHERE h.internal_id = $1`, internalID).Scan(&externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", Error.Wrap(err)
	}
	return externalID, nil
}

// GetIncomingRedirects implements metaindex.DB.
func (db *DB) GetIncomingRedirects(ctx context.Context, internalID int64) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := db.db.QueryContext(ctx, `
		SELECT m.external_id
		FROM entity_redirects r
		JOIN entity_head h
		  ON h.internal_id = r.from_internal_id AND h.redirects_to = r.to_internal_id
		JOIN entity_id_mapping m ON m.internal_id = r.from_internal_id
		WHERE r.to_internal_id = $1
		ORDER BY r.id`, internalID)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = Error.Wrap(errs.Combine(err, rows.Close())) }()

	var out []string
	for rows.Next() {
		var externalID string
		if err := rows.Scan(&externalID); err != nil {
			return nil, Error.Wrap(err)
		}
		out = append(out, externalID)
	}
	return out, Error.Wrap(rows.Err())
}

// GetHistory implements metaindex.DB.
func (db *DB) GetHistory(ctx context.Context, internalID int64) (_ []metaindex.RevisionInfo, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := db.db.QueryContext(ctx, `
		SELECT revision_id, created_at, is_mass_edit, edit_type
		FROM entity_revisions
		WHERE internal_id = $1
		ORDER BY created_at DESC, revision_id DESC`, internalID)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = Error.Wrap(errs.Combine(err, rows.Close())) }()

	var out []metaindex.RevisionInfo
	for rows.Next() {
		rev := metaindex.RevisionInfo{InternalID: internalID}
		if err := rows.Scan(&rev.RevisionID, &rev.CreatedAt, &rev.IsMassEdit, &rev.EditType); err != nil {
			return nil, Error.Wrap(err)
		}
		out = append(out, rev)
	}
	return out, Error.Wrap(rows.Err())
}

// statusColumns maps list statuses to head-table columns. Values are SQL
// identifiers, never user input.
var statusColumns = map[metaindex.EntityStatus]string{
	metaindex.StatusLocked:        "is_locked",
	metaindex.StatusSemiProtected: "is_semi_protected",
	metaindex.StatusArchived:      "is_archived",
	metaindex.StatusDangling:      "is_dangling",
}

// ListByStatus implements metaindex.DB.
func (db *DB) ListByStatus(ctx context.Context, status metaindex.EntityStatus, limit int) (_ []metaindex.ListedEntity, err error) {
	defer mon.Task()(&ctx)(&err)

	column, ok := statusColumns[status]
	if !ok {
		return nil, Error.New("unknown status %q", status)
	}

	rows, err := db.db.QueryContext(ctx, `
		SELECT m.external_id, h.head_revision_id,
		       h.is_semi_protected, h.is_locked, h.is_archived, h.is_dangling,
		       h.is_mass_edit_protected, h.is_deleted, h.is_redirect
		FROM entity_head h
		JOIN entity_id_mapping m ON m.internal_id = h.internal_id
		WHERE h.`+column+`
		ORDER BY m.external_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = Error.Wrap(errs.Combine(err, rows.Close())) }()

	var out []metaindex.ListedEntity
	for rows.Next() {
		var ent metaindex.ListedEntity
		err := rows.Scan(&ent.ExternalID, &ent.HeadRevisionID,
			&ent.IsSemiProtected, &ent.IsLocked, &ent.IsArchived, &ent.IsDangling,
			&ent.IsMassEditProtected, &ent.IsDeleted, &ent.IsRedirect)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		out = append(out, ent)
	}
	return out, Error.Wrap(rows.Err())
}

// ListByEditType implements metaindex.DB.
func (db *DB) ListByEditType(ctx context.Context, editType string, limit int) (_ []metaindex.RevisionListing, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := db.db.QueryContext(ctx, `
		SELECT m.external_id, r.revision_id, r.created_at, r.is_mass_edit, r.edit_type
		FROM entity_revisions r
		JOIN entity_id_mapping m ON m.internal_id = r.internal_id
		WHERE r.edit_type = $1
		ORDER BY r.created_at DESC, r.revision_id DESC
		LIMIT $2`, editType, limit)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = Error.Wrap(errs.Combine(err, rows.Close())) }()

	var out []metaindex.RevisionListing
	for rows.Next() {
		var rev metaindex.RevisionListing
		err := rows.Scan(&rev.ExternalID, &rev.RevisionID, &rev.CreatedAt, &rev.IsMassEdit, &rev.EditType)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		out = append(out, rev)
	}
	return out, Error.Wrap(rows.Err())
}
