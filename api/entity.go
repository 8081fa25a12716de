// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wikigraph/entitystore/entity"
	"github.com/wikigraph/entitystore/metaindex"
	"github.com/wikigraph/entitystore/revision"
)

// EntityResponse is the JSON shape of a stored entity head.
type EntityResponse struct {
	ID                  string         `json:"id"`
	RevisionID          int64          `json:"revision_id"`
	Data                map[string]any `json:"data"`
	IsSemiProtected     bool           `json:"is_semi_protected"`
	IsLocked            bool           `json:"is_locked"`
	IsArchived          bool           `json:"is_archived"`
	IsDangling          bool           `json:"is_dangling"`
	IsMassEditProtected bool           `json:"is_mass_edit_protected"`
}

func entityResponse(res revision.Result) EntityResponse {
	return EntityResponse{
		ID:                  res.ExternalID,
		RevisionID:          res.RevisionID,
		Data:                res.Document,
		IsSemiProtected:     res.Flags.IsSemiProtected,
		IsLocked:            res.Flags.IsLocked,
		IsArchived:          res.Flags.IsArchived,
		IsDangling:          res.Flags.IsDangling,
		IsMassEditProtected: res.Flags.IsMassEditProtected,
	}
}

// documentFields are the create-request keys copied into the stored entity
// document; everything else on the request is write metadata.
var documentFields = []string{"id", "type", "labels", "descriptions", "aliases", "claims", "sitelinks"}

func (server *Server) createEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	defer mon.Task()(&ctx)(&err)

	body, err := entity.DecodeDocument(r.Body)
	if err != nil {
		sendJSONError(w, "invalid json", err.Error(), http.StatusBadRequest)
		return
	}

	doc := map[string]any{}
	for _, field := range documentFields {
		if v, ok := body[field]; ok {
			doc[field] = v
		}
	}

	req := revision.WriteRequest{
		Document:               doc,
		CreatedBy:              stringField(body, "created_by"),
		EditType:               stringField(body, "edit_type"),
		IsMassEdit:             boolField(body, "is_mass_edit"),
		IsNotAutoconfirmedUser: boolField(body, "is_not_autoconfirmed_user"),
		IsSemiProtected:        boolField(body, "is_semi_protected"),
		IsLocked:               boolField(body, "is_locked"),
		IsArchived:             boolField(body, "is_archived"),
		IsDangling:             boolField(body, "is_dangling"),
		IsMassEditProtected:    boolField(body, "is_mass_edit_protected"),
	}
	req.ExternalID = stringField(body, "id")

	res, err := server.service.Put(ctx, req)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, entityResponse(res))
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func (server *Server) getEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	defer mon.Task()(&ctx)(&err)

	res, err := server.service.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, entityResponse(res))
}

func (server *Server) deleteEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	defer mon.Task()(&ctx)(&err)

	var body struct {
		DeleteType string `json:"delete_type"`
		CreatedBy  string `json:"created_by"`
	}
	if err := decodeJSON(r, &body); err != nil {
		sendJSONError(w, "invalid json", err.Error(), http.StatusBadRequest)
		return
	}

	res, err := server.service.Delete(ctx, mux.Vars(r)["id"], revision.DeleteType(body.DeleteType), body.CreatedBy)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"id":          res.ExternalID,
		"revision_id": res.RevisionID,
		"delete_type": res.DeleteType,
		"is_deleted":  res.IsDeleted,
	})
}

type historyEntry struct {
	RevisionID int64     `json:"revision_id"`
	CreatedAt  time.Time `json:"created_at"`
	IsMassEdit bool      `json:"is_mass_edit"`
	EditType   string    `json:"edit_type"`
}

func (server *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	defer mon.Task()(&ctx)(&err)

	history, err := server.service.History(ctx, mux.Vars(r)["id"])
	if err != nil {
		sendError(w, err)
		return
	}

	entries := make([]historyEntry, 0, len(history))
	for _, info := range history {
		entries = append(entries, historyEntry{
			RevisionID: info.RevisionID,
			CreatedAt:  info.CreatedAt,
			IsMassEdit: info.IsMassEdit,
			EditType:   info.EditType,
		})
	}
	sendJSON(w, http.StatusOK, entries)
}

func revisionVar(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["rev"], 10, 64)
}

func (server *Server) getRevision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	defer mon.Task()(&ctx)(&err)

	rev, err := revisionVar(r)
	if err != nil {
		sendJSONError(w, "invalid revision", err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := server.service.GetRevision(ctx, mux.Vars(r)["id"], rev)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, doc)
}

func (server *Server) getRawRevision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	defer mon.Task()(&ctx)(&err)

	rev, err := revisionVar(r)
	if err != nil {
		sendJSONError(w, "invalid revision", err.Error(), http.StatusBadRequest)
		return
	}
	rec, err := server.service.GetRaw(ctx, mux.Vars(r)["id"], rev)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, rec)
}

func (server *Server) listEntities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	defer mon.Task()(&ctx)(&err)

	query := r.URL.Query()
	limit := parseLimit(r)

	if editType := query.Get("edit_type"); editType != "" {
		listings, err := server.service.ListByEditType(ctx, editType, limit)
		if err != nil {
			sendError(w, err)
			return
		}
		out := make([]map[string]any, 0, len(listings))
		for _, l := range listings {
			out = append(out, map[string]any{
				"id":           l.ExternalID,
				"revision_id":  l.RevisionID,
				"created_at":   l.CreatedAt,
				"is_mass_edit": l.IsMassEdit,
				"edit_type":    l.EditType,
			})
		}
		sendJSON(w, http.StatusOK, out)
		return
	}

	status := metaindex.EntityStatus(query.Get("status"))
	switch status {
	case metaindex.StatusLocked, metaindex.StatusSemiProtected, metaindex.StatusArchived, metaindex.StatusDangling:
	default:
		sendJSONError(w, "bad request", "unknown status "+string(status), http.StatusBadRequest)
		return
	}

	listed, err := server.service.ListByStatus(ctx, status, limit)
	if err != nil {
		sendError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(listed))
	for _, l := range listed {
		out = append(out, map[string]any{
			"id":                     l.ExternalID,
			"head_revision_id":       l.HeadRevisionID,
			"is_semi_protected":      l.IsSemiProtected,
			"is_locked":              l.IsLocked,
			"is_archived":            l.IsArchived,
			"is_dangling":            l.IsDangling,
			"is_mass_edit_protected": l.IsMassEditProtected,
		})
	}
	sendJSON(w, http.StatusOK, out)
}
