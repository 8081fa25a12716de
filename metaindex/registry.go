// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package metaindex

import (
	"context"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"

	"github.com/wikigraph/entitystore/internal/ulidflake"
)

var mon = monkit.Package()

// Registry allocates internal IDs and maintains the external mapping.
type Registry struct {
	log *zap.Logger
	db  DB
	gen *ulidflake.Generator
}

// NewRegistry constructs a registry over the index.
func NewRegistry(log *zap.Logger, db DB) *Registry {
	return &Registry{log: log, db: db, gen: ulidflake.New()}
}

// Resolve maps an external ID to its internal key, if registered.
func (registry *Registry) Resolve(ctx context.Context, externalID string) (_ int64, _ bool, err error) {
	defer mon.Task()(&ctx)(&err)
	return registry.db.ResolveID(ctx, externalID)
}

// ResolveOrRegister resolves the external ID, registering it with a fresh
// internal key if unknown. Two concurrent registrations of the same external
// ID yield exactly one mapping; the loser adopts the winner's key.
func (registry *Registry) ResolveOrRegister(ctx context.Context, externalID string) (internalID int64, created bool, err error) {
	defer mon.Task()(&ctx)(&err)

	internalID, ok, err := registry.db.ResolveID(ctx, externalID)
	if err != nil {
		return 0, false, err
	}
	if ok {
		return internalID, false, nil
	}

	internalID, err = registry.gen.Next()
	if err != nil {
		return 0, false, Error.Wrap(err)
	}
	err = registry.db.RegisterEntity(ctx, externalID, internalID)
	if err == nil {
		return internalID, true, nil
	}
	if !ErrAlreadyExists.Has(err) {
		return 0, false, err
	}

	// Lost the race; the winner's mapping must be visible now.
	internalID, ok, err = registry.db.ResolveID(ctx, externalID)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, Error.New("mapping for %s vanished after conflict", externalID)
	}
	registry.log.Debug("registration race lost",
		zap.String("external_id", externalID), zap.Int64("internal_id", internalID))
	return internalID, false, nil
}
