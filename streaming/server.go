// Package streaming broadcasts tick metrics to connected websocket clients
// as a backtest runs, so a dashboard can follow along live instead of
// waiting for the final report.
package streaming

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"quoteforge/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Broadcaster fans out published tick metrics to every currently
// connected websocket client. A slow or dead client is dropped rather
// than allowed to block the others.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

// NewBroadcaster builds an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*websocket.Conn]chan []byte)}
}

// Handler upgrades the request to a websocket and registers the
// connection to receive future Publish calls until it disconnects.
func (b *Broadcaster) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("streaming: upgrade failed: %v", err)
		return
	}

	out := make(chan []byte, 32)
	b.mu.Lock()
	b.clients[conn] = out
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.clients, conn)
		b.mu.Unlock()
		conn.Close()
	}()

	for msg := range out {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Publish encodes a tick metric as JSON and sends it to every connected
// client. Clients whose outbound buffer is full are dropped.
func (b *Broadcaster) Publish(tick metrics.TickMetric) {
	payload, err := json.Marshal(tick)
	if err != nil {
		log.Printf("streaming: marshal tick: %v", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn, ch := range b.clients {
		select {
		case ch <- payload:
		default:
			delete(b.clients, conn)
			close(ch)
			conn.Close()
		}
	}
}

// ClientCount reports the number of currently connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}
