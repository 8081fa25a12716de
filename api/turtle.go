// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wikigraph/entitystore/entity"
	"github.com/wikigraph/entitystore/rdf"
)

func (server *Server) getTurtle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	defer mon.Task()(&ctx)(&err)

	file := mux.Vars(r)["file"]
	id, ok := strings.CutSuffix(file, ".ttl")
	if !ok || id == "" {
		sendJSONError(w, "bad request", "expected <entity-id>.ttl", http.StatusBadRequest)
		return
	}

	res, err := server.service.Get(ctx, id)
	if err != nil {
		sendError(w, err)
		return
	}

	ent, err := entity.ParseDocument(res.Document)
	if err != nil {
		sendJSONError(w, "unparseable entity document", err.Error(), http.StatusInternalServerError)
		return
	}

	history, err := server.service.History(ctx, id)
	if err != nil {
		sendError(w, err)
		return
	}
	dataset := rdf.DatasetMeta{RevisionID: res.RevisionID}
	if len(history) > 0 {
		dataset.Modified = history[0].CreatedAt
	}

	incoming, err := server.service.IncomingRedirects(ctx, id)
	if err != nil {
		sendError(w, err)
		return
	}

	turtle, err := server.serializer.Serialize(ctx, ent, dataset, incoming)
	if err != nil {
		sendError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/turtle; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(turtle))
}
