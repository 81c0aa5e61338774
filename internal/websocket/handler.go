package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"worktrack-backend/internal/models"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Restrict in production
		return true
	},
}

// SnapshotLoader provides the current full worker record mapping.
type SnapshotLoader interface {
	AllRecords(ctx context.Context) (models.RecordMap, error)
}

// HandleWebSocket upgrades the HTTP connection and registers the observer.
// The observer immediately receives the full current mapping once, then only
// future updates. The push channel itself is unauthenticated.
func HandleWebSocket(hub *Hub, store SnapshotLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("❌ WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(conn, hub)

		// Stage the current snapshot before the pumps start so the observer
		// sees the full mapping before any incremental publishes.
		records, err := store.AllRecords(r.Context())
		if err != nil {
			log.Printf("❌ Failed to load snapshot for new observer: %v", err)
		} else if payload, err := json.Marshal(records); err != nil {
			log.Printf("❌ Failed to marshal snapshot: %v", err)
		} else {
			client.queue(payload)
		}

		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
