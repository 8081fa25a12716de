// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Package teststore implements an in-memory blob store for tests.
package teststore

import (
	"context"
	"sync"

	"github.com/wikigraph/entitystore/blobstore"
)

// Store is an in-memory blobstore.Store. Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	blobs map[string]blobstore.Blob

	// WriteHook, when set, runs after a successful Write while no lock is
	// held. Tests use it to interleave pipeline steps deterministically.
	WriteHook func(externalID string, revisionID int64)

	// FailWrites, when set, makes Write return this error.
	FailWrites error

	// FailReads, when set, makes Read return this error.
	FailReads error

	// FailMarkPublished, when set, makes MarkPublished return this error.
	FailMarkPublished error
}

// New constructs an empty store.
func New() *Store {
	return &Store{blobs: map[string]blobstore.Blob{}}
}

// Write implements blobstore.Store.
func (store *Store) Write(ctx context.Context, externalID string, revisionID int64, body []byte, state blobstore.PublicationState) error {
	if err := ctx.Err(); err != nil {
		return blobstore.Error.Wrap(err)
	}
	if store.FailWrites != nil {
		return blobstore.Error.Wrap(store.FailWrites)
	}

	store.mu.Lock()
	store.blobs[blobstore.Key(externalID, revisionID)] = blobstore.Blob{
		Body:  append([]byte(nil), body...),
		State: state,
	}
	store.mu.Unlock()

	if store.WriteHook != nil {
		store.WriteHook(externalID, revisionID)
	}
	return nil
}

// Read implements blobstore.Store.
func (store *Store) Read(ctx context.Context, externalID string, revisionID int64) (blobstore.Blob, error) {
	if err := ctx.Err(); err != nil {
		return blobstore.Blob{}, blobstore.Error.Wrap(err)
	}
	if store.FailReads != nil {
		return blobstore.Blob{}, blobstore.Error.Wrap(store.FailReads)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	blob, ok := store.blobs[blobstore.Key(externalID, revisionID)]
	if !ok {
		return blobstore.Blob{}, blobstore.ErrNotFound.New("%s/r%d", externalID, revisionID)
	}
	return blobstore.Blob{Body: append([]byte(nil), blob.Body...), State: blob.State}, nil
}

// MarkPublished implements blobstore.Store.
func (store *Store) MarkPublished(ctx context.Context, externalID string, revisionID int64) error {
	if err := ctx.Err(); err != nil {
		return blobstore.Error.Wrap(err)
	}
	if store.FailMarkPublished != nil {
		return blobstore.Error.Wrap(store.FailMarkPublished)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	key := blobstore.Key(externalID, revisionID)
	blob, ok := store.blobs[key]
	if !ok {
		return blobstore.ErrNotFound.New("%s/r%d", externalID, revisionID)
	}
	blob.State = blobstore.StatePublished
	store.blobs[key] = blob
	return nil
}

// Ping implements blobstore.Store.
func (store *Store) Ping(ctx context.Context) error { return ctx.Err() }

// Close implements blobstore.Store.
func (store *Store) Close() error { return nil }

// Len reports the number of stored blobs.
func (store *Store) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.blobs)
}
