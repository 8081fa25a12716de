// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package testindex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wikigraph/entitystore/metaindex"
)

func TestRegisterAndResolve(t *testing.T) {
	ctx := context.Background()
	index := New()

	_, ok, err := index.ResolveID(ctx, "Q42")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, index.RegisterEntity(ctx, "Q42", 101))

	id, ok, err := index.ResolveID(ctx, "Q42")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(101), id)

	err = index.RegisterEntity(ctx, "Q42", 102)
	require.True(t, metaindex.ErrAlreadyExists.Has(err))
}

func TestHeadLifecycle(t *testing.T) {
	ctx := context.Background()
	index := New()

	_, ok, err := index.GetHead(ctx, 101)
	require.NoError(t, err)
	require.False(t, ok)

	err = index.InsertHeadWithStatus(ctx, 101, 1, metaindex.Flags{IsSemiProtected: true})
	require.NoError(t, err)

	err = index.InsertHeadWithStatus(ctx, 101, 1, metaindex.Flags{})
	require.True(t, metaindex.ErrAlreadyExists.Has(err))

	head, ok, err := index.GetHead(ctx, 101)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), head.HeadRevisionID)
	require.True(t, head.IsSemiProtected)

	swapped, err := index.CASUpdateHead(ctx, 101, 1, 2, metaindex.Flags{})
	require.NoError(t, err)
	require.True(t, swapped)

	// Stale expectation loses.
	swapped, err = index.CASUpdateHead(ctx, 101, 1, 3, metaindex.Flags{})
	require.NoError(t, err)
	require.False(t, swapped)

	head, _, err = index.GetHead(ctx, 101)
	require.NoError(t, err)
	require.Equal(t, int64(2), head.HeadRevisionID)
	require.False(t, head.IsSemiProtected, "CAS replaces the flag snapshot")
}

func TestHardDelete(t *testing.T) {
	ctx := context.Background()
	index := New()

	require.NoError(t, index.InsertHeadWithStatus(ctx, 101, 1, metaindex.Flags{}))
	require.NoError(t, index.HardDeleteEntity(ctx, 101, 2))

	head, ok, err := index.GetHead(ctx, 101)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, head.IsDeleted)
	require.Equal(t, int64(2), head.HeadRevisionID)
}

func TestInsertRevisionIdempotent(t *testing.T) {
	ctx := context.Background()
	index := New()

	rev := metaindex.RevisionInfo{
		InternalID: 101, RevisionID: 1,
		CreatedAt: time.Now().UTC(), EditType: "manual-create",
	}
	require.NoError(t, index.InsertRevision(ctx, rev))
	require.NoError(t, index.InsertRevision(ctx, rev))

	history, err := index.GetHistory(ctx, 101)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	index := New()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, index.InsertRevision(ctx, metaindex.RevisionInfo{
			InternalID: 101, RevisionID: i,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	history, err := index.GetHistory(ctx, 101)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, int64(3), history[0].RevisionID)
	require.Equal(t, int64(1), history[2].RevisionID)
}

func TestRedirectEdges(t *testing.T) {
	ctx := context.Background()
	index := New()

	require.NoError(t, index.RegisterEntity(ctx, "Q100", 100))
	require.NoError(t, index.RegisterEntity(ctx, "Q42", 42))
	require.NoError(t, index.InsertHeadWithStatus(ctx, 100, 1, metaindex.Flags{}))
	require.NoError(t, index.InsertHeadWithStatus(ctx, 42, 1, metaindex.Flags{}))

	require.NoError(t, index.CreateRedirectEdge(ctx, 100, 42, "u"))
	err := index.CreateRedirectEdge(ctx, 100, 42, "u")
	require.True(t, metaindex.ErrAlreadyExists.Has(err))

	target := int64(42)
	require.NoError(t, index.SetRedirectTarget(ctx, 100, &target))

	got, err := index.GetRedirectTarget(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, "Q42", got)

	incoming, err := index.GetIncomingRedirects(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, []string{"Q100"}, incoming)

	// Clearing the pointer removes Q100 from the active incoming set.
	require.NoError(t, index.SetRedirectTarget(ctx, 100, nil))
	got, err = index.GetRedirectTarget(ctx, 100)
	require.NoError(t, err)
	require.Empty(t, got)
	incoming, err = index.GetIncomingRedirects(ctx, 42)
	require.NoError(t, err)
	require.Empty(t, incoming)
}

func TestListQueries(t *testing.T) {
	ctx := context.Background()
	index := New()

	require.NoError(t, index.RegisterEntity(ctx, "Q1", 1))
	require.NoError(t, index.RegisterEntity(ctx, "Q2", 2))
	require.NoError(t, index.InsertHeadWithStatus(ctx, 1, 1, metaindex.Flags{IsLocked: true}))
	require.NoError(t, index.InsertHeadWithStatus(ctx, 2, 1, metaindex.Flags{IsDangling: true}))

	locked, err := index.ListByStatus(ctx, metaindex.StatusLocked, 10)
	require.NoError(t, err)
	require.Len(t, locked, 1)
	require.Equal(t, "Q1", locked[0].ExternalID)

	dangling, err := index.ListByStatus(ctx, metaindex.StatusDangling, 10)
	require.NoError(t, err)
	require.Len(t, dangling, 1)
	require.Equal(t, "Q2", dangling[0].ExternalID)

	_, err = index.ListByStatus(ctx, "bogus", 10)
	require.Error(t, err)

	now := time.Now().UTC()
	require.NoError(t, index.InsertRevision(ctx, metaindex.RevisionInfo{
		InternalID: 1, RevisionID: 1, CreatedAt: now, EditType: "bot-import",
	}))
	require.NoError(t, index.InsertRevision(ctx, metaindex.RevisionInfo{
		InternalID: 2, RevisionID: 1, CreatedAt: now.Add(time.Second), EditType: "bot-import",
	}))

	revs, err := index.ListByEditType(ctx, "bot-import", 1)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	require.Equal(t, "Q2", revs[0].ExternalID, "newest first")
}
