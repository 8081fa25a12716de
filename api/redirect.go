// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// RedirectResponse is the JSON shape of a created redirect.
type RedirectResponse struct {
	RedirectFromID string    `json:"redirect_from_id"`
	RedirectToID   string    `json:"redirect_to_id"`
	RevisionID     int64     `json:"revision_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (server *Server) createRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	defer mon.Task()(&ctx)(&err)

	var body struct {
		RedirectFromID string `json:"redirect_from_id"`
		RedirectToID   string `json:"redirect_to_id"`
		CreatedBy      string `json:"created_by"`
	}
	if err := decodeJSON(r, &body); err != nil {
		sendJSONError(w, "invalid json", err.Error(), http.StatusBadRequest)
		return
	}

	res, err := server.service.CreateRedirect(ctx, body.RedirectFromID, body.RedirectToID, body.CreatedBy)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, RedirectResponse{
		RedirectFromID: res.RedirectFromID,
		RedirectToID:   res.RedirectToID,
		RevisionID:     res.RevisionID,
		CreatedAt:      res.CreatedAt,
	})
}

func (server *Server) revertRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	defer mon.Task()(&ctx)(&err)

	var body struct {
		RevertToRevisionID int64  `json:"revert_to_revision_id"`
		RevertReason       string `json:"revert_reason"`
		CreatedBy          string `json:"created_by"`
	}
	if err := decodeJSON(r, &body); err != nil {
		sendJSONError(w, "invalid json", err.Error(), http.StatusBadRequest)
		return
	}

	res, err := server.service.RevertRedirect(ctx, mux.Vars(r)["id"], body.RevertToRevisionID, body.CreatedBy)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, entityResponse(res))
}
