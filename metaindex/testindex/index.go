// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Package testindex implements an in-memory metadata index for tests.
package testindex

import (
	"context"
	"sort"
	"sync"

	"github.com/wikigraph/entitystore/metaindex"
)

type revisionKey struct {
	internalID int64
	revisionID int64
}

type edge struct {
	from      int64
	to        int64
	createdBy string
	seq       int
}

// Index is an in-memory metaindex.DB with exact CAS semantics. Safe for
// concurrent use.
type Index struct {
	mu        sync.Mutex
	mapping   map[string]int64
	reverse   map[int64]string
	heads     map[int64]metaindex.Head
	revisions map[revisionKey]metaindex.RevisionInfo
	edges     []edge
	seq       int

	// CASHook, when set, runs at the start of CASUpdateHead while no lock
	// is held. Tests use it to force interleavings.
	CASHook func(internalID, expected, revisionID int64)
}

// New constructs an empty index.
func New() *Index {
	return &Index{
		mapping:   map[string]int64{},
		reverse:   map[int64]string{},
		heads:     map[int64]metaindex.Head{},
		revisions: map[revisionKey]metaindex.RevisionInfo{},
	}
}

// ResolveID implements metaindex.DB.
func (index *Index) ResolveID(ctx context.Context, externalID string) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	id, ok := index.mapping[externalID]
	return id, ok, nil
}

// RegisterEntity implements metaindex.DB.
func (index *Index) RegisterEntity(ctx context.Context, externalID string, internalID int64) error {
	if err := ctx.Err(); err != nil {
		return metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	if _, ok := index.mapping[externalID]; ok {
		return metaindex.ErrAlreadyExists.New("external id %s", externalID)
	}
	index.mapping[externalID] = internalID
	index.reverse[internalID] = externalID
	return nil
}

// GetHead implements metaindex.DB.
func (index *Index) GetHead(ctx context.Context, internalID int64) (metaindex.Head, bool, error) {
	if err := ctx.Err(); err != nil {
		return metaindex.Head{}, false, metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	head, ok := index.heads[internalID]
	return head, ok, nil
}

// InsertRevision implements metaindex.DB.
func (index *Index) InsertRevision(ctx context.Context, rev metaindex.RevisionInfo) error {
	if err := ctx.Err(); err != nil {
		return metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	key := revisionKey{rev.InternalID, rev.RevisionID}
	if _, ok := index.revisions[key]; ok {
		return nil
	}
	index.revisions[key] = rev
	return nil
}

// InsertHeadWithStatus implements metaindex.DB.
func (index *Index) InsertHeadWithStatus(ctx context.Context, internalID, revisionID int64, flags metaindex.Flags) error {
	if err := ctx.Err(); err != nil {
		return metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	if _, ok := index.heads[internalID]; ok {
		return metaindex.ErrAlreadyExists.New("head for %d", internalID)
	}
	index.heads[internalID] = metaindex.Head{
		InternalID:     internalID,
		HeadRevisionID: revisionID,
		Flags:          flags,
	}
	return nil
}

// CASUpdateHead implements metaindex.DB.
func (index *Index) CASUpdateHead(ctx context.Context, internalID, expected, revisionID int64, flags metaindex.Flags) (bool, error) {
	if index.CASHook != nil {
		index.CASHook(internalID, expected, revisionID)
	}
	if err := ctx.Err(); err != nil {
		return false, metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	head, ok := index.heads[internalID]
	if !ok || head.HeadRevisionID != expected {
		return false, nil
	}
	head.HeadRevisionID = revisionID
	head.Flags = flags
	index.heads[internalID] = head
	return true, nil
}

// HardDeleteEntity implements metaindex.DB.
func (index *Index) HardDeleteEntity(ctx context.Context, internalID, revisionID int64) error {
	if err := ctx.Err(); err != nil {
		return metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	head, ok := index.heads[internalID]
	if !ok {
		return metaindex.Error.New("no head for %d", internalID)
	}
	head.HeadRevisionID = revisionID
	head.IsDeleted = true
	index.heads[internalID] = head
	return nil
}

// CreateRedirectEdge implements metaindex.DB.
func (index *Index) CreateRedirectEdge(ctx context.Context, fromInternalID, toInternalID int64, createdBy string) error {
	if err := ctx.Err(); err != nil {
		return metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	for _, e := range index.edges {
		if e.from == fromInternalID && e.to == toInternalID {
			return metaindex.ErrAlreadyExists.New("redirect edge %d -> %d", fromInternalID, toInternalID)
		}
	}
	index.seq++
	index.edges = append(index.edges, edge{
		from: fromInternalID, to: toInternalID, createdBy: createdBy, seq: index.seq,
	})
	return nil
}

// SetRedirectTarget implements metaindex.DB.
func (index *Index) SetRedirectTarget(ctx context.Context, internalID int64, target *int64) error {
	if err := ctx.Err(); err != nil {
		return metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	head, ok := index.heads[internalID]
	if !ok {
		return metaindex.Error.New("no head for %d", internalID)
	}
	if target == nil {
		head.RedirectsTo = nil
	} else {
		t := *target
		head.RedirectsTo = &t
	}
	index.heads[internalID] = head
	return nil
}

// GetRedirectTarget implements metaindex.DB.
func (index *Index) GetRedirectTarget(ctx context.Context, internalID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	head, ok := index.heads[internalID]
	if !ok || head.RedirectsTo == nil {
		return "", nil
	}
	return index.reverse[*head.RedirectsTo], nil
}

// GetIncomingRedirects implements metaindex.DB.
func (index *Index) GetIncomingRedirects(ctx context.Context, internalID int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	var out []string
	for _, e := range index.edges {
		// Only currently-active redirects count; reverted sources keep
		// their historical edge but no longer point here.
		head, ok := index.heads[e.from]
		if e.to == internalID && ok && head.RedirectsTo != nil && *head.RedirectsTo == internalID {
			out = append(out, index.reverse[e.from])
		}
	}
	return out, nil
}

// GetHistory implements metaindex.DB.
func (index *Index) GetHistory(ctx context.Context, internalID int64) ([]metaindex.RevisionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	var out []metaindex.RevisionInfo
	for key, rev := range index.revisions {
		if key.internalID == internalID {
			out = append(out, rev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].RevisionID > out[j].RevisionID
	})
	return out, nil
}

// ListByStatus implements metaindex.DB.
func (index *Index) ListByStatus(ctx context.Context, status metaindex.EntityStatus, limit int) ([]metaindex.ListedEntity, error) {
	if err := ctx.Err(); err != nil {
		return nil, metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()

	var out []metaindex.ListedEntity
	for internalID, head := range index.heads {
		match := false
		switch status {
		case metaindex.StatusLocked:
			match = head.IsLocked
		case metaindex.StatusSemiProtected:
			match = head.IsSemiProtected
		case metaindex.StatusArchived:
			match = head.IsArchived
		case metaindex.StatusDangling:
			match = head.IsDangling
		default:
			return nil, metaindex.Error.New("unknown status %q", status)
		}
		if match {
			out = append(out, metaindex.ListedEntity{
				ExternalID:     index.reverse[internalID],
				HeadRevisionID: head.HeadRevisionID,
				Flags:          head.Flags,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListByEditType implements metaindex.DB.
func (index *Index) ListByEditType(ctx context.Context, editType string, limit int) ([]metaindex.RevisionListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, metaindex.Error.Wrap(err)
	}
	index.mu.Lock()
	defer index.mu.Unlock()

	var out []metaindex.RevisionListing
	for key, rev := range index.revisions {
		if rev.EditType == editType {
			out = append(out, metaindex.RevisionListing{
				ExternalID: index.reverse[key.internalID],
				RevisionID: rev.RevisionID,
				CreatedAt:  rev.CreatedAt,
				IsMassEdit: rev.IsMassEdit,
				EditType:   rev.EditType,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		if out[i].ExternalID != out[j].ExternalID {
			return out[i].ExternalID < out[j].ExternalID
		}
		return out[i].RevisionID > out[j].RevisionID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Ping implements metaindex.DB.
func (index *Index) Ping(ctx context.Context) error { return ctx.Err() }

// Close implements metaindex.DB.
func (index *Index) Close() error { return nil }
