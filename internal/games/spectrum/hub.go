// internal/games/spectrum/hub.go

package spectrum

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
)

// Hub keeps the open game sockets grouped into one room per session
type Hub struct {
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// called when a user's last socket leaves a room
	onLeave func(sessionID string, userID int64)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		ctx:        ctx,
		cancel:     cancel,
		log:        log.With("component", "spectrum_hub"),
	}
}

// OnLeave sets the callback for a user's last socket leaving a room. Set it before Run.
func (h *Hub) OnLeave(fn func(sessionID string, userID int64)) {
	h.onLeave = fn
}

func (h *Hub) Run() {
	h.wg.Add(1)
	defer h.wg.Done()
	defer h.cleanup()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	h.log.Debug("game socket connected", "user_id", client.userID, "total_clients", total)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if !h.clients[client] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	sessionID, last := h.leaveLocked(client)
	total := len(h.clients)
	h.mu.Unlock()

	client.close()
	h.log.Debug("game socket disconnected", "user_id", client.userID, "total_clients", total)
	if last && h.onLeave != nil {
		h.onLeave(sessionID, client.userID)
	}
}

// Join moves the client into a session room. It reports the room the client left when it
// was the user's last socket there.
func (h *Hub) Join(client *Client, sessionID string) (left string, wasLast bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client.sessionID == sessionID {
		return "", false
	}
	left, wasLast = h.leaveLocked(client)
	members, ok := h.rooms[sessionID]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[sessionID] = members
	}
	members[client] = true
	client.sessionID = sessionID
	return left, wasLast
}

func (h *Hub) leaveLocked(client *Client) (string, bool) {
	sessionID := client.sessionID
	if sessionID == "" {
		return "", false
	}
	client.sessionID = ""
	members := h.rooms[sessionID]
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, sessionID)
	}
	for other := range members {
		if other.userID == client.userID {
			return sessionID, false
		}
	}
	return sessionID, true
}

// Broadcast sends to every socket in the room
func (h *Hub) Broadcast(sessionID string, env Envelope) {
	h.deliver(sessionID, env, func(*Client) bool { return true })
}

// SendTo sends to the sockets one participant has in the room
func (h *Hub) SendTo(sessionID string, userID int64, env Envelope) {
	h.deliver(sessionID, env, func(c *Client) bool { return c.userID == userID })
}

// Connected reports whether the user has a socket in the room
func (h *Hub) Connected(sessionID string, userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[sessionID] {
		if c.userID == userID {
			return true
		}
	}
	return false
}

func (h *Hub) deliver(sessionID string, env Envelope, match func(*Client) bool) {
	data, err := json.Marshal(env)
	if err != nil {
		h.log.Error("failed to marshal game event", "type", env.Type, "error", err.Error())
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[sessionID] {
		if !match(c) {
			continue
		}
		select {
		case c.send <- data:
		default:
			// slow consumer
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	default:
		go h.leave(c)
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	for client := range h.clients {
		client.close()
	}
	h.clients = make(map[*Client]bool)
	h.rooms = make(map[string]map[*Client]bool)
	h.mu.Unlock()
}

// Shutdown closes every socket and stops Run
func (h *Hub) Shutdown() {
	h.cancel()
	h.wg.Wait()
}

// ActiveConnections is the number of open sockets
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Room returns the session the client is joined to
func (h *Hub) Room(c *Client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.sessionID
}
