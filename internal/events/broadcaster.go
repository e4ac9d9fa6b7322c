package events

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Broadcaster fans settlement events out to websocket subscribers.
type Broadcaster struct {
	clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	upgrader websocket.Upgrader
}

// DefaultBroadcaster is the process-wide event fan-out used by Emit.
var DefaultBroadcaster = NewBroadcaster()

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Broadcast sends the event to every connected subscriber, dropping
// connections that fail to write.
func (b *Broadcaster) Broadcast(event SettlementEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	msg, err := json.Marshal(event)
	if err != nil {
		log.Errorf("Failed to marshal settlement event: %v", err)
		return
	}

	for c := range b.clients {
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Warnf("Websocket write error, dropping subscriber: %v", err)
			c.Close()
			delete(b.clients, c)
		}
	}
}

// Handler upgrades the request and registers the connection as a subscriber.
func (b *Broadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Errorf("Websocket upgrade error: %v", err)
			return
		}

		b.mu.Lock()
		b.clients[conn] = struct{}{}
		b.mu.Unlock()

		// Read loop keeps the connection alive and detects disconnects
		go func() {
			defer func() {
				b.mu.Lock()
				delete(b.clients, conn)
				b.mu.Unlock()
				conn.Close()
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}
}
