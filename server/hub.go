package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/luhtfiimanal/go-radar-station/station"
)

// Hub fans each published Reading out to connected websocket clients.
// A client that cannot keep up is dropped rather than allowed to stall the
// feed; the HTTP /data endpoint remains the catch-up path.
type Hub struct {
	upgrader  websocket.Upgrader
	broadcast chan station.Reading

	mu      sync.Mutex
	clients map[*websocket.Conn]string // conn -> client id
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		broadcast: make(chan station.Reading, 100),
		clients:   make(map[*websocket.Conn]string),
	}
}

// Notify implements station.Notifier. If the broadcast buffer is full the
// reading is dropped; the reader loop must never block on slow clients.
func (h *Hub) Notify(r station.Reading) {
	select {
	case h.broadcast <- r:
	default:
	}
}

// Run delivers broadcast readings to every connected client until the
// broadcast channel is closed. Meant to run as a goroutine.
func (h *Hub) Run() {
	for reading := range h.broadcast {
		payload, err := json.Marshal(reading)
		if err != nil {
			log.Printf("marshal reading: %v", err)
			continue
		}

		h.mu.Lock()
		for conn, id := range h.clients {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("ws client %s write failed, dropping: %v", id, err)
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.mu.Unlock()
	}
}

// HandleWS upgrades the request and registers the client for broadcasts.
// Client messages are read and discarded; the read loop only exists to
// detect disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	h.mu.Lock()
	h.clients[conn] = id
	h.mu.Unlock()
	log.Printf("ws client %s connected from %s", id, conn.RemoteAddr())

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			log.Printf("ws client %s disconnected", id)
			return
		}
	}
}
