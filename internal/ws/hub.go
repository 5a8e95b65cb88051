package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"omezka-shop-api/internal/cache"
	"omezka-shop-api/internal/model"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// Hub broadcasts shop updates to connected websocket clients. In Redis
// deployments it bridges the pub/sub channel so that every server process
// pushes the same payloads; without Redis it is used as the Notifier
// directly.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader

	// writeMu serializes broadcasts; gorilla connections do not allow
	// concurrent writers.
	writeMu sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The browser client connects cross-origin from the game frontend.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler upgrades the request and keeps the connection registered until
// the client goes away. Clients only listen; inbound frames are discarded.
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub] Upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("[Hub] Client connected (%d total)", n)

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("[Hub] Client disconnected (%d total)", n)
}

// Broadcast writes a raw payload to every connected client. Slow or dead
// clients are dropped rather than blocking the fan-out.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.drop(conn)
		}
	}
}

// PublishShopUpdate implements cache.Notifier by broadcasting directly to
// local clients. Used when no Redis channel is available.
func (h *Hub) PublishShopUpdate(ctx context.Context, entries []model.ShopEntry) error {
	payload, err := json.Marshal(cache.ShopUpdate{Event: "shop_update", Products: entries})
	if err != nil {
		return err
	}
	h.Broadcast(payload)
	return nil
}

// RunBridge forwards messages from a Redis subscription to local clients
// until the context is cancelled.
func (h *Hub) RunBridge(ctx context.Context, sub *redis.PubSub) {
	defer sub.Close()
	ch := sub.Channel()
	log.Printf("[Hub] Redis bridge started")

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				log.Printf("[Hub] Redis bridge channel closed")
				return
			}
			h.Broadcast([]byte(msg.Payload))
		case <-ctx.Done():
			log.Printf("[Hub] Redis bridge stopped")
			return
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
