// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package revision

import (
	"context"

	"github.com/wikigraph/entitystore/blobstore"
	"github.com/wikigraph/entitystore/metaindex"
)

// DeleteType selects the deletion lifecycle.
type DeleteType string

// Deletion lifecycles.
const (
	DeleteSoft DeleteType = "soft"
	DeleteHard DeleteType = "hard"
)

// DeleteResult is the outcome of a deletion.
type DeleteResult struct {
	ExternalID string
	RevisionID int64
	DeleteType DeleteType
	IsDeleted  bool
}

// Delete appends a deletion revision. Soft deletes keep the entity readable
// and writable (a later write undeletes); hard deletes flip the head row's
// deleted flag, making the external ID terminal.
func (service *Service) Delete(ctx context.Context, externalID string, deleteType DeleteType, createdBy string) (_ DeleteResult, err error) {
	defer mon.Task()(&ctx)(&err)

	switch deleteType {
	case DeleteSoft, DeleteHard:
	default:
		return DeleteResult{}, ErrBadRequest.New("unknown delete type %q", deleteType)
	}

	internalID, head, err := service.resolveHead(ctx, externalID)
	if err != nil {
		return DeleteResult{}, err
	}

	// The deletion revision carries a copy of the current head's entity.
	prior, err := service.readRecord(ctx, externalID, head.HeadRevisionID)
	if err != nil {
		return DeleteResult{}, err
	}

	editType := EditSoftDelete
	if deleteType == DeleteHard {
		editType = EditHardDelete
	}
	rec := Record{
		SchemaVersion:       SchemaVersion,
		RevisionID:          head.HeadRevisionID + 1,
		CreatedAt:           service.now().UTC(),
		CreatedBy:           createdBy,
		EditType:            editType,
		EntityType:          prior.EntityType,
		IsSemiProtected:     head.IsSemiProtected,
		IsLocked:            head.IsLocked,
		IsArchived:          head.IsArchived,
		IsDangling:          head.IsDangling,
		IsMassEditProtected: head.IsMassEditProtected,
		IsDeleted:           true,
		IsRedirect:          prior.IsRedirect,
		Entity:              prior.Entity,
		ContentHash:         prior.ContentHash,
		RedirectsTo:         prior.RedirectsTo,
	}

	if deleteType == DeleteSoft {
		// The head row keeps is_deleted false: only hard deletes block
		// the external ID.
		flags := head.Flags
		flags.IsDeleted = false
		_, err := service.commit(ctx, externalID, internalID, true, head.HeadRevisionID, rec, flags)
		if err != nil {
			return DeleteResult{}, err
		}
		return DeleteResult{
			ExternalID: externalID,
			RevisionID: rec.RevisionID,
			DeleteType: deleteType,
			IsDeleted:  true,
		}, nil
	}

	body, err := EncodeRecord(rec)
	if err != nil {
		return DeleteResult{}, err
	}
	if err := service.blobs.Write(ctx, externalID, rec.RevisionID, body, blobstore.StatePending); err != nil {
		return DeleteResult{}, err
	}
	err = service.db.InsertRevision(ctx, metaindex.RevisionInfo{
		InternalID: internalID,
		RevisionID: rec.RevisionID,
		CreatedAt:  rec.CreatedAt,
		EditType:   rec.EditType,
	})
	if err != nil {
		return DeleteResult{}, err
	}
	if err := service.db.HardDeleteEntity(ctx, internalID, rec.RevisionID); err != nil {
		return DeleteResult{}, err
	}
	service.markPublished(ctx, externalID, rec.RevisionID)

	return DeleteResult{
		ExternalID: externalID,
		RevisionID: rec.RevisionID,
		DeleteType: deleteType,
		IsDeleted:  true,
	}, nil
}
