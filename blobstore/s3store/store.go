// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Package s3store implements the revision blob store on S3-compatible
// object storage.
package s3store

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/wikigraph/entitystore/blobstore"
)

var (
	// Error is the s3store error class.
	Error = errs.Class("s3store")

	mon = monkit.Package()
)

// metadataKey is the user-metadata key carrying the publication state.
const metadataKey = "publication_state"

// Config holds connection settings for the blob store.
type Config struct {
	Endpoint  string `help:"S3 endpoint host:port" default:"localhost:9000"`
	AccessKey string `help:"S3 access key" default:""`
	SecretKey string `help:"S3 secret key" default:""`
	Bucket    string `help:"bucket holding revision blobs" default:"entity-revisions"`
	Region    string `help:"bucket region" default:""`
	UseSSL    bool   `help:"connect over TLS" default:"true"`
}

// Store is an S3-backed blobstore.Store.
type Store struct {
	log    *zap.Logger
	client *minio.Client
	bucket string
}

// Open connects to the object store and ensures the bucket exists.
func Open(ctx context.Context, log *zap.Logger, config Config) (*Store, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}

	store := &Store{log: log, client: client, bucket: config.Bucket}

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if !exists {
		err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{Region: config.Region})
		if err != nil {
			return nil, Error.Wrap(err)
		}
		log.Info("created bucket", zap.String("bucket", config.Bucket))
	}
	return store, nil
}

// Write implements blobstore.Store.
func (store *Store) Write(ctx context.Context, externalID string, revisionID int64, body []byte, state blobstore.PublicationState) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = store.client.PutObject(ctx, store.bucket, blobstore.Key(externalID, revisionID),
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{
			ContentType:  "application/json",
			UserMetadata: map[string]string{metadataKey: string(state)},
		})
	return Error.Wrap(err)
}

// Read implements blobstore.Store.
func (store *Store) Read(ctx context.Context, externalID string, revisionID int64) (_ blobstore.Blob, err error) {
	defer mon.Task()(&ctx)(&err)

	key := blobstore.Key(externalID, revisionID)
	obj, err := store.client.GetObject(ctx, store.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return blobstore.Blob{}, wrap(err, key)
	}
	defer func() { _ = obj.Close() }()

	info, err := obj.Stat()
	if err != nil {
		return blobstore.Blob{}, wrap(err, key)
	}
	body, err := io.ReadAll(obj)
	if err != nil {
		return blobstore.Blob{}, wrap(err, key)
	}
	return blobstore.Blob{Body: body, State: publicationState(info)}, nil
}

// MarkPublished implements blobstore.Store. It replaces the object's
// metadata with a server-side copy onto itself, leaving the body untouched.
func (store *Store) MarkPublished(ctx context.Context, externalID string, revisionID int64) (err error) {
	defer mon.Task()(&ctx)(&err)

	key := blobstore.Key(externalID, revisionID)
	_, err = store.client.CopyObject(ctx,
		minio.CopyDestOptions{
			Bucket:          store.bucket,
			Object:          key,
			ReplaceMetadata: true,
			UserMetadata:    map[string]string{metadataKey: string(blobstore.StatePublished)},
		},
		minio.CopySrcOptions{
			Bucket: store.bucket,
			Object: key,
		})
	return wrap(err, key)
}

// Ping implements blobstore.Store.
func (store *Store) Ping(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = store.client.BucketExists(ctx, store.bucket)
	return Error.Wrap(err)
}

// Close implements blobstore.Store.
func (store *Store) Close() error { return nil }

// publicationState extracts the state from object metadata. Gateways differ
// in how they case user-metadata keys, so the lookup is case-insensitive.
func publicationState(info minio.ObjectInfo) blobstore.PublicationState {
	for key, value := range info.UserMetadata {
		if strings.EqualFold(key, metadataKey) {
			return blobstore.PublicationState(value)
		}
	}
	if value := info.Metadata.Get("X-Amz-Meta-" + metadataKey); value != "" {
		return blobstore.PublicationState(value)
	}
	return blobstore.StatePending
}

func wrap(err error, key string) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return blobstore.ErrNotFound.New("%s", key)
	}
	return Error.Wrap(err)
}
