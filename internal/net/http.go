// Package net exposes the schematic runtime over HTTP: a health probe, a
// diagnostics snapshot, the Prometheus scrape endpoint and the websocket
// spawn stream.
package net

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// HandlerConfig carries the collaborators the HTTP surface serves.
type HandlerConfig struct {
	Logger      *log.Logger
	AccessLog   io.Writer
	Metrics     http.Handler
	Gateway     *SpawnGateway
	Diagnostics func() any
}

// NewHandler assembles the router. Every route is wrapped in panic recovery;
// access logging is enabled when an AccessLog writer is supplied.
func NewHandler(cfg HandlerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	if cfg.Diagnostics != nil {
		r.HandleFunc("/diagnostics", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(cfg.Diagnostics()); err != nil {
				logger.Printf("failed to encode diagnostics: %v", err)
			}
		}).Methods(http.MethodGet)
	}

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	if cfg.Gateway != nil {
		r.HandleFunc("/ws", cfg.Gateway.HandleWS)
	}

	var handler http.Handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger}),
	)(r)
	if cfg.AccessLog != nil {
		handler = handlers.LoggingHandler(cfg.AccessLog, handler)
	}
	return handler
}

type recoveryLogger struct {
	logger *log.Logger
}

func (l recoveryLogger) Println(args ...interface{}) {
	if l.logger != nil {
		l.logger.Println(args...)
	}
}
