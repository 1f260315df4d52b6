package notifications

import (
	"context"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// pushConn is the slice of a websocket connection the hub needs. Delivery
// can be tested against it without opening a socket.
type pushConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub tracks each user's open websocket connections and fans incoming
// notification events out to them. A user may hold several connections at
// once (multiple tabs, devices).
type Hub struct {
	mu       sync.RWMutex
	sessions map[uint]map[pushConn]struct{}
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[uint]map[pushConn]struct{})}
}

// Register adds a connection to the user's session set.
func (h *Hub) Register(userID uint, conn pushConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[userID]
	if !ok {
		set = make(map[pushConn]struct{})
		h.sessions[userID] = set
	}
	set[conn] = struct{}{}
}

// Unregister removes a connection; the user's entry goes away with its last
// connection.
func (h *Hub) Unregister(userID uint, conn pushConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[userID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.sessions, userID)
	}
}

// Broadcast writes payload to every connection the user holds. A connection
// that fails the write is assumed dead: it is unregistered and closed so the
// hub does not keep retrying a gone peer.
func (h *Hub) Broadcast(userID uint, payload string) {
	h.mu.RLock()
	targets := make([]pushConn, 0, len(h.sessions[userID]))
	for conn := range h.sessions[userID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
			log.Printf("dropping websocket for user %d after write error: %v", userID, err)
			h.Unregister(userID, conn)
			_ = conn.Close()
		}
	}
}

// ConnectionCount reports how many connections a user currently holds.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

// StartWiring subscribes the hub to the notifier's per-user channels and
// forwards each event to the addressed user's connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		userID, ok := ParseUserChannel(channel)
		if !ok {
			log.Printf("ignoring message on unrecognized channel %q", channel)
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown closes every registered connection.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.sessions {
		for conn := range set {
			if err := conn.Close(); err != nil {
				log.Printf("websocket close error for user %d: %v", userID, err)
			}
		}
		delete(h.sessions, userID)
	}
	return nil
}
