// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package revision

import "github.com/wikigraph/entitystore/metaindex"

// RequestFlags is the caller-supplied context a protection decision needs.
// The caller is trusted to supply IsNotAutoconfirmedUser.
type RequestFlags struct {
	IsMassEdit             bool
	IsNotAutoconfirmedUser bool
}

// Admit decides whether a write against the given head flags is allowed.
// Pure; rules apply in order, first match wins. Callers skip it entirely for
// new entities.
func Admit(current metaindex.Flags, request RequestFlags) error {
	switch {
	case current.IsArchived:
		return ErrForbidden.New("archived")
	case current.IsLocked:
		return ErrForbidden.New("locked")
	case current.IsMassEditProtected && request.IsMassEdit:
		return ErrForbidden.New("mass-edits-blocked")
	case current.IsSemiProtected && request.IsNotAutoconfirmedUser:
		return ErrForbidden.New("semi-protected")
	}
	return nil
}
