package server

import (
	_ "embed"
	"encoding/json"
	"log"
	"net/http"
)

//go:embed index.html
var indexPage []byte

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexPage)
}

// handleData returns the latest Reading. It never errors: before the first
// successful parse the zero-valued reading is served.
func (s *Server) handleData(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.snapshot.Latest()); err != nil {
		log.Printf("encode /data response: %v", err)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.stats.Snapshot(s.now())); err != nil {
		log.Printf("encode /stats response: %v", err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
