package client

import (
	"context"
	"log"
	"time"

	"worktrack-backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// PushListener maintains the long-lived push channel from the server. Every
// message is the full worker record mapping; the local view is replaced
// wholesale, never reconciled. On any disconnect the listener reconnects
// with exponential backoff and re-receives the full snapshot, so observers
// eventually see current state without diff replay.
type PushListener struct {
	url      string
	onUpdate func(models.RecordMap)
	dialer   *websocket.Dialer
}

func NewPushListener(wsURL string, onUpdate func(models.RecordMap)) *PushListener {
	return &PushListener{
		url:      wsURL,
		onUpdate: onUpdate,
		dialer:   websocket.DefaultDialer,
	}
}

// Run blocks until the context is cancelled, reconnecting as needed.
func (l *PushListener) Run(ctx context.Context) {
	backoff := initialBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
		if err != nil {
			log.Printf("❌ Push channel dial failed: %v (retrying in %s)", err, backoff)
			if !sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

		log.Println("✅ Connected to push channel")
		backoff = initialBackoff

		l.readLoop(ctx, conn)
		conn.Close()

		if ctx.Err() != nil {
			return
		}
		if !sleep(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff)
	}
}

func (l *PushListener) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock the read when the caller gives up
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var records models.RecordMap
		if err := conn.ReadJSON(&records); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("⚠️ Push channel closed unexpectedly: %v", err)
			}
			return
		}
		l.onUpdate(records)
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
