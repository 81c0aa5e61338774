package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains the set of connected observers and fans the full worker
// record mapping out to all of them. There is no per-observer backlog: a
// publish reaches whoever is connected and ready at that moment, and a slow
// observer whose buffer is full is dropped rather than queued behind.
type Hub struct {
	// Registered observer connections
	clients map[*Client]bool

	// Outbound payloads to fan out
	broadcast chan []byte

	// Register requests from new connections
	register chan *Client

	// Unregister requests from closing connections
	unregister chan *Client

	// Mutex for thread-safe client map access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("✅ [WEBSOCKET] Observer connected (%s), total: %d", client.remoteAddr, h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("🔴 [WEBSOCKET] Observer disconnected (%s), remaining: %d", client.remoteAddr, len(h.clients))
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Observer can't keep up, drop it
					close(client.send)
					delete(h.clients, client)
					log.Printf("⚠️ Observer buffer full, disconnecting: %s", client.remoteAddr)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish sends the given payload to every connected observer. Delivery is
// best-effort and at-most-once; observers that are not ready are skipped.
func (h *Hub) Publish(data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("❌ Failed to marshal broadcast payload: %v", err)
		return
	}
	h.broadcast <- payload
}

// Register adds an observer connection to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes an observer connection from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of connected observers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
