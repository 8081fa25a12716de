// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package pgindex

import (
	"context"

	"go.uber.org/zap"
)

// migration is one versioned schema step. Statements run inside a single
// transaction together with the version bookkeeping.
type migration struct {
	Version     int
	Description string
	Statements  []string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "initial schema",
		Statements: []string{
			`CREATE TABLE entity_id_mapping (
				external_id TEXT NOT NULL PRIMARY KEY,
				internal_id BIGINT NOT NULL UNIQUE
			)`,
			`CREATE TABLE entity_head (
				internal_id            BIGINT NOT NULL PRIMARY KEY,
				head_revision_id       BIGINT NOT NULL,
				is_semi_protected      BOOLEAN NOT NULL DEFAULT FALSE,
				is_locked              BOOLEAN NOT NULL DEFAULT FALSE,
				is_archived            BOOLEAN NOT NULL DEFAULT FALSE,
				is_dangling            BOOLEAN NOT NULL DEFAULT FALSE,
				is_mass_edit_protected BOOLEAN NOT NULL DEFAULT FALSE,
				is_deleted             BOOLEAN NOT NULL DEFAULT FALSE,
				is_redirect            BOOLEAN NOT NULL DEFAULT FALSE,
				redirects_to           BIGINT
			)`,
			`CREATE TABLE entity_revisions (
				internal_id  BIGINT NOT NULL,
				revision_id  BIGINT NOT NULL,
				created_at   TIMESTAMPTZ NOT NULL,
				is_mass_edit BOOLEAN NOT NULL DEFAULT FALSE,
				edit_type    TEXT NOT NULL DEFAULT '',
				PRIMARY KEY (internal_id, revision_id)
			)`,
			`CREATE TABLE entity_redirects (
				id               BIGSERIAL PRIMARY KEY,
				from_internal_id BIGINT NOT NULL,
				to_internal_id   BIGINT NOT NULL,
				created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
				created_by       TEXT NOT NULL DEFAULT '',
				UNIQUE (from_internal_id, to_internal_id)
			)`,
			`CREATE INDEX entity_redirects_from ON entity_redirects (from_internal_id)`,
			`CREATE INDEX entity_redirects_to ON entity_redirects (to_internal_id)`,
		},
	},
	{
		Version:     2,
		Description: "edit type listing index",
		Statements: []string{
			`CREATE INDEX entity_revisions_edit_type ON entity_revisions (edit_type, created_at DESC)`,
		},
	},
}

// MigrateToLatest applies all pending migrations in order.
func (db *DB) MigrateToLatest(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER NOT NULL PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return Error.Wrap(err)
	}

	var current int
	err = db.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return Error.Wrap(err)
	}

	for _, step := range migrations {
		if step.Version <= current {
			continue
		}

		tx, err := db.db.BeginTx(ctx, nil)
		if err != nil {
			return Error.Wrap(err)
		}
		for _, stmt := range step.Statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return Error.New("migration %d (%s): %w", step.Version, step.Description, err)
			}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1)`, step.Version)
		if err != nil {
			_ = tx.Rollback()
			return Error.Wrap(err)
		}
		if err := tx.Commit(); err != nil {
			return Error.Wrap(err)
		}
		db.log.Info("applied migration",
			zap.Int("version", step.Version),
			zap.String("description", step.Description))
	}
	return nil
}
