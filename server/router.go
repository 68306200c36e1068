// Package server exposes the station over HTTP: the dashboard page, the
// latest-reading JSON endpoint, ingest statistics, and a websocket feed that
// pushes each new reading to connected clients.
package server

import (
	"time"

	"github.com/gorilla/mux"

	"github.com/luhtfiimanal/go-radar-station/station"
)

// Server bundles the shared state the handlers read from.
type Server struct {
	snapshot *station.Snapshot
	stats    *station.Stats
	hub      *Hub
	now      func() time.Time
}

func New(snapshot *station.Snapshot, stats *station.Stats, hub *Hub) *Server {
	return &Server{
		snapshot: snapshot,
		stats:    stats,
		hub:      hub,
		now:      time.Now,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/data", s.handleData).Methods("GET")
	r.HandleFunc("/stats", s.handleStats).Methods("GET")
	r.HandleFunc("/health", handleHealth).Methods("GET")
	r.HandleFunc("/ws", s.hub.HandleWS).Methods("GET")

	return r
}
