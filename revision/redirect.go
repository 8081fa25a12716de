// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package revision

import (
	"context"
	"time"

	"github.com/wikigraph/entitystore/entity"
	"github.com/wikigraph/entitystore/metaindex"
)

// RedirectResult describes a created redirect.
type RedirectResult struct {
	RedirectFromID string
	RedirectToID   string
	RevisionID     int64
	CreatedAt      time.Time
}

// CreateRedirect turns `from` into a redirect to `to`: it appends an
// empty-bodied redirect revision on `from`, records the edge, and sets the
// head row's redirect pointer.
func (service *Service) CreateRedirect(ctx context.Context, from, to, createdBy string) (_ RedirectResult, err error) {
	defer mon.Task()(&ctx)(&err)

	if from == "" || to == "" {
		return RedirectResult{}, ErrBadRequest.New("missing redirect id")
	}
	if from == to {
		return RedirectResult{}, ErrBadRequest.New("self-redirect %s", from)
	}

	fromInternal, ok, err := service.registry.Resolve(ctx, from)
	if err != nil {
		return RedirectResult{}, err
	}
	if !ok {
		return RedirectResult{}, ErrNotFound.New("entity %s", from)
	}
	toInternal, ok, err := service.registry.Resolve(ctx, to)
	if err != nil {
		return RedirectResult{}, err
	}
	if !ok {
		return RedirectResult{}, ErrNotFound.New("entity %s", to)
	}

	fromHead, ok, err := service.db.GetHead(ctx, fromInternal)
	if err != nil {
		return RedirectResult{}, err
	}
	if !ok {
		return RedirectResult{}, ErrNotFound.New("entity %s has no revisions", from)
	}
	toHead, ok, err := service.db.GetHead(ctx, toInternal)
	if err != nil {
		return RedirectResult{}, err
	}
	if !ok {
		return RedirectResult{}, ErrNotFound.New("entity %s has no revisions", to)
	}

	switch {
	case fromHead.IsRedirect || fromHead.RedirectsTo != nil:
		return RedirectResult{}, ErrConflict.New("%s already redirects", from)
	case fromHead.IsDeleted:
		return RedirectResult{}, ErrLocked.New("redirect source %s is deleted", from)
	case toHead.IsDeleted:
		return RedirectResult{}, ErrLocked.New("redirect target %s is deleted", to)
	case toHead.IsLocked:
		return RedirectResult{}, ErrLocked.New("redirect target %s is locked", to)
	case toHead.IsArchived:
		return RedirectResult{}, ErrLocked.New("redirect target %s is archived", to)
	}

	// The redirect revision stores an empty entity body; the pointer lives
	// in the record and the head row.
	doc := map[string]any{
		"id":           from,
		"type":         "item",
		"labels":       map[string]any{},
		"descriptions": map[string]any{},
		"aliases":      map[string]any{},
		"claims":       map[string]any{},
		"sitelinks":    map[string]any{},
	}
	hash, err := entity.ContentHash(doc)
	if err != nil {
		return RedirectResult{}, err
	}

	rec := Record{
		SchemaVersion:       SchemaVersion,
		RevisionID:          fromHead.HeadRevisionID + 1,
		CreatedAt:           service.now().UTC(),
		CreatedBy:           createdBy,
		EditType:            EditRedirectCreate,
		EntityType:          "item",
		IsSemiProtected:     fromHead.IsSemiProtected,
		IsLocked:            fromHead.IsLocked,
		IsArchived:          fromHead.IsArchived,
		IsDangling:          fromHead.IsDangling,
		IsMassEditProtected: fromHead.IsMassEditProtected,
		IsRedirect:          true,
		Entity:              doc,
		ContentHash:         hash,
		RedirectsTo:         to,
	}
	flags := fromHead.Flags
	flags.IsRedirect = true

	res, err := service.commit(ctx, from, fromInternal, true, fromHead.HeadRevisionID, rec, flags)
	if err != nil {
		return RedirectResult{}, err
	}

	err = service.db.CreateRedirectEdge(ctx, fromInternal, toInternal, createdBy)
	if metaindex.ErrAlreadyExists.Has(err) {
		return RedirectResult{}, ErrConflict.New("redirect %s -> %s already recorded", from, to)
	}
	if err != nil {
		return RedirectResult{}, err
	}
	if err := service.db.SetRedirectTarget(ctx, fromInternal, &toInternal); err != nil {
		return RedirectResult{}, err
	}

	return RedirectResult{
		RedirectFromID: from,
		RedirectToID:   to,
		RevisionID:     res.RevisionID,
		CreatedAt:      rec.CreatedAt,
	}, nil
}

// RevertRedirect restores a redirecting entity to one of its historical
// revisions and clears the redirect pointer. The restored revision's
// protection flags come back with it.
func (service *Service) RevertRedirect(ctx context.Context, externalID string, revertTo int64, createdBy string) (_ Result, err error) {
	defer mon.Task()(&ctx)(&err)

	internalID, head, err := service.resolveHead(ctx, externalID)
	if err != nil {
		return Result{}, err
	}
	if !head.IsRedirect && head.RedirectsTo == nil {
		return Result{}, ErrNotFound.New("%s is not a redirect", externalID)
	}
	if head.IsLocked {
		return Result{}, ErrLocked.New("%s is locked", externalID)
	}
	if head.IsArchived {
		return Result{}, ErrLocked.New("%s is archived", externalID)
	}

	historical, err := service.readRecord(ctx, externalID, revertTo)
	if err != nil {
		return Result{}, err
	}

	rec := Record{
		SchemaVersion:       SchemaVersion,
		RevisionID:          head.HeadRevisionID + 1,
		CreatedAt:           service.now().UTC(),
		CreatedBy:           createdBy,
		EditType:            EditRedirectRevert,
		EntityType:          historical.EntityType,
		IsSemiProtected:     historical.IsSemiProtected,
		IsLocked:            historical.IsLocked,
		IsArchived:          historical.IsArchived,
		IsDangling:          historical.IsDangling,
		IsMassEditProtected: historical.IsMassEditProtected,
		Entity:              historical.Entity,
		ContentHash:         historical.ContentHash,
	}
	flags := metaindex.Flags{
		IsSemiProtected:     historical.IsSemiProtected,
		IsLocked:            historical.IsLocked,
		IsArchived:          historical.IsArchived,
		IsDangling:          historical.IsDangling,
		IsMassEditProtected: historical.IsMassEditProtected,
	}

	res, err := service.commit(ctx, externalID, internalID, true, head.HeadRevisionID, rec, flags)
	if err != nil {
		return Result{}, err
	}
	if err := service.db.SetRedirectTarget(ctx, internalID, nil); err != nil {
		return Result{}, err
	}
	return res, nil
}
