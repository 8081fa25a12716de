// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package revision

import "github.com/zeebo/errs"

var (
	// Error is the default revision error class, used for io-errors and
	// internal failures.
	Error = errs.Class("revision")

	// ErrNotFound marks unknown external IDs, missing revisions, and
	// revert attempts on non-redirects.
	ErrNotFound = errs.Class("not found")

	// ErrGone marks hard-deleted entities; terminal.
	ErrGone = errs.Class("gone")

	// ErrForbidden marks protection-policy denials.
	ErrForbidden = errs.Class("forbidden")

	// ErrConflict marks CAS failures and duplicate redirects; the caller
	// retries with a fresh read.
	ErrConflict = errs.Class("conflict")

	// ErrLocked marks redirect-specific denials: source or target deleted,
	// locked, or archived.
	ErrLocked = errs.Class("locked")

	// ErrBadRequest marks malformed input: missing id, self-redirect.
	ErrBadRequest = errs.Class("bad request")
)
