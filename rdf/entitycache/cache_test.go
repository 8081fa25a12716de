// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package entitycache_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/wikigraph/entitystore/rdf"
	"github.com/wikigraph/entitystore/rdf/entitycache"
)

func newCache(t *testing.T) (context.Context, *entitycache.Cache) {
	ctx := context.Background()
	server := miniredis.RunT(t)

	cache, err := entitycache.Open(ctx, entitycache.Config{Address: server.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cache.Close()) })
	return ctx, cache
}

func TestLookupMiss(t *testing.T) {
	ctx, cache := newCache(t)

	_, found, err := cache.Lookup(ctx, "Q5")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStoreAndLookup(t *testing.T) {
	ctx, cache := newCache(t)

	want := rdf.Meta{
		Labels:       map[string]string{"en": "human", "de": "Mensch"},
		Descriptions: map[string]string{"en": "common name of Homo sapiens"},
	}
	require.NoError(t, cache.Store(ctx, "Q5", want))

	got, found, err := cache.Lookup(ctx, "Q5")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, want, got)
}

func TestInvalidate(t *testing.T) {
	ctx, cache := newCache(t)

	require.NoError(t, cache.Store(ctx, "Q5", rdf.Meta{Labels: map[string]string{"en": "human"}}))
	require.NoError(t, cache.Invalidate(ctx, "Q5"))

	_, found, err := cache.Lookup(ctx, "Q5")
	require.NoError(t, err)
	require.False(t, found)
}
