// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package revision

import (
	"context"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"

	"github.com/wikigraph/entitystore/blobstore"
	"github.com/wikigraph/entitystore/entity"
	"github.com/wikigraph/entitystore/metaindex"
)

var mon = monkit.Package()

// Service orchestrates the revision pipeline over the blob store and the
// metadata index.
type Service struct {
	log      *zap.Logger
	blobs    blobstore.Store
	db       metaindex.DB
	registry *metaindex.Registry
	now      func() time.Time
}

// NewService constructs the pipeline.
func NewService(log *zap.Logger, blobs blobstore.Store, db metaindex.DB) *Service {
	return &Service{
		log:      log,
		blobs:    blobs,
		db:       db,
		registry: metaindex.NewRegistry(log.Named("registry"), db),
		now:      time.Now,
	}
}

// WriteRequest is one proposed entity write.
type WriteRequest struct {
	ExternalID string
	Document   map[string]any
	CreatedBy  string
	EditType   string

	IsMassEdit             bool
	IsNotAutoconfirmedUser bool

	IsSemiProtected     bool
	IsLocked            bool
	IsArchived          bool
	IsDangling          bool
	IsMassEditProtected bool
}

func (req WriteRequest) requestFlags() RequestFlags {
	return RequestFlags{
		IsMassEdit:             req.IsMassEdit,
		IsNotAutoconfirmedUser: req.IsNotAutoconfirmedUser,
	}
}

func (req WriteRequest) headFlags() metaindex.Flags {
	return metaindex.Flags{
		IsSemiProtected:     req.IsSemiProtected,
		IsLocked:            req.IsLocked,
		IsArchived:          req.IsArchived,
		IsDangling:          req.IsDangling,
		IsMassEditProtected: req.IsMassEditProtected,
	}
}

// Result is the outcome of a successful write or read.
type Result struct {
	ExternalID  string
	RevisionID  int64
	Document    map[string]any
	Flags       metaindex.Flags
	RedirectsTo string // external id, "" unless the revision is a redirect
}

// Put runs the write pipeline: resolve identity, guard deletion, dedupe by
// content hash, check protection, then commit a new head revision. An
// identical resubmission returns the existing head unchanged.
func (service *Service) Put(ctx context.Context, req WriteRequest) (_ Result, err error) {
	defer mon.Task()(&ctx)(&err)

	if req.ExternalID == "" {
		return Result{}, ErrBadRequest.New("missing id")
	}
	doc := req.Document
	if doc == nil {
		doc = map[string]any{}
	}
	switch docID := doc["id"]; docID {
	case nil:
		doc["id"] = req.ExternalID
	case req.ExternalID:
	default:
		return Result{}, ErrBadRequest.New("document id %v does not match %s", docID, req.ExternalID)
	}
	switch docType := doc["type"]; docType {
	case nil:
		doc["type"] = "item"
	case "item", "property":
	default:
		return Result{}, ErrBadRequest.New("unknown entity type %v", docType)
	}

	internalID, created, err := service.registry.ResolveOrRegister(ctx, req.ExternalID)
	if err != nil {
		return Result{}, err
	}

	// A mapping can exist without a head row when an earlier create failed
	// between registration and head insert; such entities count as new.
	var head metaindex.Head
	exists := false
	if !created {
		head, exists, err = service.db.GetHead(ctx, internalID)
		if err != nil {
			return Result{}, err
		}
	}
	if exists && head.IsDeleted {
		return Result{}, ErrGone.New("%s", req.ExternalID)
	}

	hash, err := entity.ContentHash(doc)
	if err != nil {
		return Result{}, ErrBadRequest.Wrap(err)
	}

	if exists {
		if res, ok := service.matchHead(ctx, req.ExternalID, head, hash); ok {
			return res, nil
		}
		if err := Admit(head.Flags, req.requestFlags()); err != nil {
			return Result{}, err
		}
	}

	rec := Record{
		SchemaVersion:       SchemaVersion,
		RevisionID:          head.HeadRevisionID + 1,
		CreatedAt:           service.now().UTC(),
		CreatedBy:           req.CreatedBy,
		IsMassEdit:          req.IsMassEdit,
		EditType:            req.EditType,
		EntityType:          doc["type"].(string),
		IsSemiProtected:     req.IsSemiProtected,
		IsLocked:            req.IsLocked,
		IsArchived:          req.IsArchived,
		IsDangling:          req.IsDangling,
		IsMassEditProtected: req.IsMassEditProtected,
		Entity:              doc,
		ContentHash:         hash,
	}
	return service.commit(ctx, req.ExternalID, internalID, exists, head.HeadRevisionID, rec, req.headFlags())
}

// matchHead performs the idempotency check against the current head blob.
// Failures here are never fatal: the pipeline proceeds as if no match.
func (service *Service) matchHead(ctx context.Context, externalID string, head metaindex.Head, hash uint64) (Result, bool) {
	blob, err := service.blobs.Read(ctx, externalID, head.HeadRevisionID)
	if err != nil {
		service.log.Warn("idempotency head read failed",
			zap.String("entity", externalID),
			zap.Int64("revision", head.HeadRevisionID),
			zap.Error(err))
		return Result{}, false
	}
	rec, err := DecodeRecord(blob.Body)
	if err != nil {
		service.log.Warn("idempotency head decode failed",
			zap.String("entity", externalID),
			zap.Int64("revision", head.HeadRevisionID),
			zap.Error(err))
		return Result{}, false
	}
	// Deletion and redirect revisions can share a content hash with a
	// plain write; matching them would make undelete and revert no-ops.
	if rec.ContentHash != hash || rec.IsDeleted || rec.IsRedirect {
		return Result{}, false
	}
	return Result{
		ExternalID: externalID,
		RevisionID: head.HeadRevisionID,
		Document:   rec.Entity,
		Flags:      head.Flags,
	}, true
}

// commit runs pipeline steps 8 through 12: pending blob write, idempotent
// revision insert, head publication via insert or CAS, then the best-effort
// publish marker. The head update is the linearisation point.
func (service *Service) commit(ctx context.Context, externalID string, internalID int64, exists bool, expectedHead int64, rec Record, flags metaindex.Flags) (_ Result, err error) {
	defer mon.Task()(&ctx)(&err)

	body, err := EncodeRecord(rec)
	if err != nil {
		return Result{}, err
	}
	if err := service.blobs.Write(ctx, externalID, rec.RevisionID, body, blobstore.StatePending); err != nil {
		return Result{}, err
	}
	err = service.db.InsertRevision(ctx, metaindex.RevisionInfo{
		InternalID: internalID,
		RevisionID: rec.RevisionID,
		CreatedAt:  rec.CreatedAt,
		IsMassEdit: rec.IsMassEdit,
		EditType:   rec.EditType,
	})
	if err != nil {
		return Result{}, err
	}

	if !exists {
		err := service.db.InsertHeadWithStatus(ctx, internalID, rec.RevisionID, flags)
		if metaindex.ErrAlreadyExists.Has(err) {
			return Result{}, ErrConflict.New("concurrent create of %s", externalID)
		}
		if err != nil {
			return Result{}, err
		}
	} else {
		swapped, err := service.db.CASUpdateHead(ctx, internalID, expectedHead, rec.RevisionID, flags)
		if err != nil {
			return Result{}, err
		}
		if !swapped {
			return Result{}, ErrConflict.New("concurrent write to %s", externalID)
		}
	}

	service.markPublished(ctx, externalID, rec.RevisionID)
	return Result{
		ExternalID:  externalID,
		RevisionID:  rec.RevisionID,
		Document:    rec.Entity,
		Flags:       flags,
		RedirectsTo: rec.RedirectsTo,
	}, nil
}

// markPublished flips the blob's publication marker. The head already points
// at the blob, so failures are logged and swallowed.
func (service *Service) markPublished(ctx context.Context, externalID string, revisionID int64) {
	if err := service.blobs.MarkPublished(ctx, externalID, revisionID); err != nil {
		service.log.Warn("mark published failed",
			zap.String("entity", externalID),
			zap.Int64("revision", revisionID),
			zap.Error(err))
	}
}

// resolveHead maps an external ID to its internal key and head row,
// translating absence and hard deletion into the error taxonomy.
func (service *Service) resolveHead(ctx context.Context, externalID string) (int64, metaindex.Head, error) {
	internalID, ok, err := service.registry.Resolve(ctx, externalID)
	if err != nil {
		return 0, metaindex.Head{}, err
	}
	if !ok {
		return 0, metaindex.Head{}, ErrNotFound.New("entity %s", externalID)
	}
	head, ok, err := service.db.GetHead(ctx, internalID)
	if err != nil {
		return 0, metaindex.Head{}, err
	}
	if !ok {
		return 0, metaindex.Head{}, ErrNotFound.New("entity %s has no revisions", externalID)
	}
	if head.IsDeleted {
		return 0, metaindex.Head{}, ErrGone.New("%s", externalID)
	}
	return internalID, head, nil
}

// Get returns the current head revision of an entity.
func (service *Service) Get(ctx context.Context, externalID string) (_ Result, err error) {
	defer mon.Task()(&ctx)(&err)

	_, head, err := service.resolveHead(ctx, externalID)
	if err != nil {
		return Result{}, err
	}
	blob, err := service.blobs.Read(ctx, externalID, head.HeadRevisionID)
	if err != nil {
		return Result{}, err
	}
	rec, err := DecodeRecord(blob.Body)
	if err != nil {
		return Result{}, err
	}
	return Result{
		ExternalID:  externalID,
		RevisionID:  head.HeadRevisionID,
		Document:    rec.Entity,
		Flags:       head.Flags,
		RedirectsTo: rec.RedirectsTo,
	}, nil
}

// GetRevision returns the entity document stored at a specific revision.
func (service *Service) GetRevision(ctx context.Context, externalID string, revisionID int64) (_ map[string]any, err error) {
	defer mon.Task()(&ctx)(&err)

	if _, _, err := service.resolveHead(ctx, externalID); err != nil {
		return nil, err
	}
	rec, err := service.readRecord(ctx, externalID, revisionID)
	if err != nil {
		return nil, err
	}
	return rec.Entity, nil
}

// GetRaw returns the full revision record, distinguishing the three absence
// cases: unknown entity, entity without revisions, and missing revision.
func (service *Service) GetRaw(ctx context.Context, externalID string, revisionID int64) (_ Record, err error) {
	defer mon.Task()(&ctx)(&err)

	internalID, ok, err := service.registry.Resolve(ctx, externalID)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, ErrNotFound.New("entity_not_found: %s", externalID)
	}
	head, ok, err := service.db.GetHead(ctx, internalID)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, ErrNotFound.New("no_revisions: %s", externalID)
	}
	if head.IsDeleted {
		return Record{}, ErrGone.New("%s", externalID)
	}
	rec, err := service.readRecord(ctx, externalID, revisionID)
	if ErrNotFound.Has(err) {
		return Record{}, ErrNotFound.New("revision_not_found: %s r%d", externalID, revisionID)
	}
	return rec, err
}

// readRecord fetches and decodes one revision blob.
func (service *Service) readRecord(ctx context.Context, externalID string, revisionID int64) (Record, error) {
	blob, err := service.blobs.Read(ctx, externalID, revisionID)
	if blobstore.ErrNotFound.Has(err) {
		return Record{}, ErrNotFound.New("revision %d of %s", revisionID, externalID)
	}
	if err != nil {
		return Record{}, err
	}
	return DecodeRecord(blob.Body)
}

// History returns the entity's revisions, newest first.
func (service *Service) History(ctx context.Context, externalID string) (_ []metaindex.RevisionInfo, err error) {
	defer mon.Task()(&ctx)(&err)

	internalID, _, err := service.resolveHead(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return service.db.GetHistory(ctx, internalID)
}

// ListByStatus returns entities whose head row carries the given flag.
func (service *Service) ListByStatus(ctx context.Context, status metaindex.EntityStatus, limit int) (_ []metaindex.ListedEntity, err error) {
	defer mon.Task()(&ctx)(&err)
	return service.db.ListByStatus(ctx, status, limit)
}

// ListByEditType returns revisions of the given edit type, newest first.
func (service *Service) ListByEditType(ctx context.Context, editType string, limit int) (_ []metaindex.RevisionListing, err error) {
	defer mon.Task()(&ctx)(&err)
	return service.db.ListByEditType(ctx, editType, limit)
}

// Health reports reachability of the blob store and the metadata index.
func (service *Service) Health(ctx context.Context) (blobErr, indexErr error) {
	return service.blobs.Ping(ctx), service.db.Ping(ctx)
}

// IncomingRedirects returns the external IDs currently redirecting to the
// entity.
func (service *Service) IncomingRedirects(ctx context.Context, externalID string) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)

	internalID, _, err := service.resolveHead(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return service.db.GetIncomingRedirects(ctx, internalID)
}
