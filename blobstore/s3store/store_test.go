// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package s3store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wikigraph/entitystore/blobstore"
)

// openTestStore connects to the endpoint named by ENTITYSTORE_TEST_S3
// ("host:port,accessKey,secretKey"), skipping the test when unset.
func openTestStore(t *testing.T) (context.Context, *Store) {
	spec := os.Getenv("ENTITYSTORE_TEST_S3")
	if spec == "" {
		t.Skip("ENTITYSTORE_TEST_S3 not set")
	}
	parts := strings.SplitN(spec, ",", 3)
	require.Len(t, parts, 3, "ENTITYSTORE_TEST_S3 must be host:port,accessKey,secretKey")

	ctx := context.Background()
	store, err := Open(ctx, zaptest.NewLogger(t), Config{
		Endpoint:  parts[0],
		AccessKey: parts[1],
		SecretKey: parts[2],
		Bucket:    fmt.Sprintf("entitystore-test-%d", time.Now().UnixNano()),
		UseSSL:    false,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return ctx, store
}

func TestStoreRoundTrip(t *testing.T) {
	ctx, store := openTestStore(t)

	err := store.Write(ctx, "Q101", 1, []byte(`{"id":"Q1"}`), blobstore.StatePending)
	require.NoError(t, err)

	blob, err := store.Read(ctx, "Q101", 1)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":"Q1"}`), blob.Body)
	require.Equal(t, blobstore.StatePending, blob.State)

	require.NoError(t, store.MarkPublished(ctx, "Q101", 1))

	blob, err = store.Read(ctx, "Q101", 1)
	require.NoError(t, err)
	require.Equal(t, blobstore.StatePublished, blob.State)
	require.Equal(t, []byte(`{"id":"Q1"}`), blob.Body)
}

func TestStoreNotFound(t *testing.T) {
	ctx, store := openTestStore(t)

	_, err := store.Read(ctx, "Q999", 1)
	require.True(t, blobstore.ErrNotFound.Has(err))

	err = store.MarkPublished(ctx, "Q999", 1)
	require.True(t, blobstore.ErrNotFound.Has(err))
}

func TestStorePing(t *testing.T) {
	ctx, store := openTestStore(t)
	require.NoError(t, store.Ping(ctx))
}
