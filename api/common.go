// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Package api implements the HTTP surface of the entity store.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/zeebo/errs"

	"github.com/wikigraph/entitystore/revision"
)

// decodeJSON decodes a request body, rejecting trailing garbage.
func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(v); err != nil {
		return err
	}
	if decoder.More() {
		return Error.New("unexpected trailing data")
	}
	return nil
}

// Error is the default error class for api package.
var Error = errs.Class("api")

// sendJSONError writes a JSON error to response output stream.
func sendJSONError(w http.ResponseWriter, errMsg, detail string, statusCode int) {
	errStr := struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}{
		Error:  errMsg,
		Detail: detail,
	}
	body, err := json.Marshal(errStr)
	if err != nil {
		http.Error(w, errMsg, statusCode)
		return
	}
	sendJSONData(w, statusCode, body)
}

// sendJSONData writes JSON data to response output stream.
func sendJSONData(w http.ResponseWriter, statusCode int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)
}

// sendJSON marshals v and writes it with the given status code.
func sendJSON(w http.ResponseWriter, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		sendJSONError(w, "json encoding failed", err.Error(), http.StatusInternalServerError)
		return
	}
	sendJSONData(w, statusCode, data)
}

// sendError maps a service error onto the HTTP status taxonomy.
func sendError(w http.ResponseWriter, err error) {
	switch {
	case revision.ErrBadRequest.Has(err):
		sendJSONError(w, "bad request", err.Error(), http.StatusBadRequest)
	case revision.ErrForbidden.Has(err):
		sendJSONError(w, "forbidden", err.Error(), http.StatusForbidden)
	case revision.ErrNotFound.Has(err):
		sendJSONError(w, "not found", err.Error(), http.StatusNotFound)
	case revision.ErrConflict.Has(err):
		sendJSONError(w, "conflict", err.Error(), http.StatusConflict)
	case revision.ErrGone.Has(err):
		sendJSONError(w, "gone", err.Error(), http.StatusGone)
	case revision.ErrLocked.Has(err):
		sendJSONError(w, "locked", err.Error(), http.StatusLocked)
	default:
		sendJSONError(w, "internal server error", err.Error(), http.StatusInternalServerError)
	}
}
