// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Package pgindex implements the metadata index on PostgreSQL.
package pgindex

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

var (
	// Error is the pgindex error class.
	Error = errs.Class("pgindex")

	mon = monkit.Package()
)

// Config holds connection settings for the metadata index.
type Config struct {
	URL          string `help:"postgres connection string" default:"postgres://localhost/entitystore?sslmode=disable"`
	MaxOpenConns int    `help:"maximum open connections" default:"25"`
	MaxIdleConns int    `help:"maximum idle connections" default:"5"`
}

// DB is a PostgreSQL-backed metaindex.DB.
type DB struct {
	log *zap.Logger
	db  *sql.DB
}

// Open connects to the database and applies pending migrations.
func Open(ctx context.Context, log *zap.Logger, config Config) (*DB, error) {
	handle, err := sql.Open("pgx", config.URL)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	handle.SetMaxOpenConns(config.MaxOpenConns)
	handle.SetMaxIdleConns(config.MaxIdleConns)

	db := &DB{log: log, db: handle}
	if err := db.MigrateToLatest(ctx); err != nil {
		return nil, errs.Combine(err, handle.Close())
	}
	return db, nil
}

// Ping implements metaindex.DB.
func (db *DB) Ping(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)
	return Error.Wrap(db.db.PingContext(ctx))
}

// Close implements metaindex.DB.
func (db *DB) Close() error {
	return Error.Wrap(db.db.Close())
}

// uniqueViolation is the postgres error code for unique-constraint
// violations.
const uniqueViolation = "23505"

// isUniqueViolation reports whether the error is a unique-constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
