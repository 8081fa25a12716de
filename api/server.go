// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wikigraph/entitystore/rdf"
	"github.com/wikigraph/entitystore/revision"
)

var mon = monkit.Package()

// Config defines configuration for the API server.
type Config struct {
	Address      string        `help:"http listening address" default:":8080"`
	ReadTimeout  time.Duration `help:"maximum duration for reading a request" default:"30s"`
	WriteTimeout time.Duration `help:"maximum duration for writing a response" default:"30s"`
}

// Server exposes the entity store over HTTP.
type Server struct {
	log *zap.Logger

	listener net.Listener
	server   http.Server

	service    *revision.Service
	serializer *rdf.Serializer
}

// NewServer constructs the API server on the given listener.
func NewServer(log *zap.Logger, listener net.Listener, service *revision.Service, serializer *rdf.Serializer, config Config) *Server {
	server := &Server{
		log:        log,
		listener:   listener,
		service:    service,
		serializer: serializer,
	}
	server.server = http.Server{
		Handler:      server.Router(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return server
}

// Router builds the route table. Exposed so tests can drive handlers through
// httptest without a listener.
func (server *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", server.health).Methods("GET")
	router.HandleFunc("/entity", server.createEntity).Methods("POST")
	router.HandleFunc("/entity/{id}", server.getEntity).Methods("GET")
	router.HandleFunc("/entity/{id}", server.deleteEntity).Methods("DELETE")
	router.HandleFunc("/entity/{id}/history", server.getHistory).Methods("GET")
	router.HandleFunc("/entity/{id}/revision/{rev}", server.getRevision).Methods("GET")
	router.HandleFunc("/raw/{id}/{rev}", server.getRawRevision).Methods("GET")
	router.HandleFunc("/redirects", server.createRedirect).Methods("POST")
	router.HandleFunc("/entities/{id}/revert-redirect", server.revertRedirect).Methods("POST")
	router.HandleFunc("/entities", server.listEntities).Methods("GET")
	router.HandleFunc("/wiki/Special:EntityData/{file}", server.getTurtle).Methods("GET")
	return router
}

// Run starts the server and blocks until ctx is cancelled.
func (server *Server) Run(ctx context.Context) error {
	if server.listener == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	var group errgroup.Group
	group.Go(func() error {
		<-ctx.Done()
		return Error.Wrap(server.server.Shutdown(context.Background()))
	})
	group.Go(func() error {
		defer cancel()
		err := server.server.Serve(server.listener)
		if errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
			err = nil
		}
		return Error.Wrap(err)
	})
	return group.Wait()
}

// Close stops the server.
func (server *Server) Close() error {
	return Error.Wrap(server.server.Close())
}

func (server *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	defer mon.Task()(&ctx)(&err)

	blobErr, indexErr := server.service.Health(ctx)

	status := "ok"
	code := http.StatusOK
	if blobErr != nil || indexErr != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	sendJSON(w, code, map[string]string{
		"status":         status,
		"blob_store":     healthString(blobErr),
		"metadata_index": healthString(indexErr),
	})
}

func healthString(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func parseLimit(r *http.Request) int {
	const (
		defaultLimit = 100
		maxLimit     = 1000
	)
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
