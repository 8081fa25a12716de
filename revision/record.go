// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Package revision implements the revision-control pipeline: identity
// resolution, content-hash idempotency, protection admission, the two-phase
// blob-write plus metadata-CAS commit, and the redirect and delete
// lifecycles built on it.
package revision

import (
	"bytes"
	"encoding/json"
	"io"
	"time"
)

// SchemaVersion is the current revision record schema.
const SchemaVersion = 1

// Edit types recorded on revisions. The set is open: callers may pass
// cleanup-* and migration-* kinds; "" means unspecified.
const (
	EditBotImport        = "bot-import"
	EditBotCleanup       = "bot-cleanup"
	EditBotMerge         = "bot-merge"
	EditBotSplit         = "bot-split"
	EditManualCreate     = "manual-create"
	EditManualUpdate     = "manual-update"
	EditManualCorrection = "manual-correction"
	EditSoftDelete       = "soft-delete"
	EditHardDelete       = "hard-delete"
	EditUndelete         = "undelete"
	EditRedirectCreate   = "redirect-create"
	EditRedirectRevert   = "redirect-revert"
	EditLockAdded        = "lock-added"
	EditLockRemoved      = "lock-removed"
	EditSemiProtAdded    = "semi-protection-added"
	EditSemiProtRemoved  = "semi-protection-removed"
	EditArchiveAdded     = "archive-added"
	EditArchiveRemoved   = "archive-removed"
	EditMassProtAdded    = "mass-protection-added"
	EditMassProtRemoved  = "mass-protection-removed"
)

// Record is the full revision document stored in the blob store.
type Record struct {
	SchemaVersion       int            `json:"schema_version"`
	RevisionID          int64          `json:"revision_id"`
	CreatedAt           time.Time      `json:"created_at"`
	CreatedBy           string         `json:"created_by"`
	IsMassEdit          bool           `json:"is_mass_edit"`
	EditType            string         `json:"edit_type"`
	EntityType          string         `json:"entity_type"`
	IsSemiProtected     bool           `json:"is_semi_protected"`
	IsLocked            bool           `json:"is_locked"`
	IsArchived          bool           `json:"is_archived"`
	IsDangling          bool           `json:"is_dangling"`
	IsMassEditProtected bool           `json:"is_mass_edit_protected"`
	IsDeleted           bool           `json:"is_deleted"`
	IsRedirect          bool           `json:"is_redirect"`
	Entity              map[string]any `json:"entity"`
	ContentHash         uint64         `json:"content_hash"`
	RedirectsTo         string         `json:"redirects_to,omitempty"`
}

// EncodeRecord serialises a record for blob storage.
func EncodeRecord(rec Record) ([]byte, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return body, nil
}

// DecodeRecord parses a stored record. Numeric literals inside the entity
// document stay json.Number so re-serialisation round-trips exactly.
func DecodeRecord(body []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var rec Record
	if err := dec.Decode(&rec); err != nil && err != io.EOF {
		return Record{}, Error.New("decode record: %w", err)
	}
	return rec, nil
}
