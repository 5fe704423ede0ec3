// Package realtime fans out change notifications to websocket clients
// watching a project.
package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Event is pushed to every client of a project after a change.
type Event struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	ProjectID string `json:"projectId"`
	Resource  string `json:"resource,omitempty"`
	ID        string `json:"id,omitempty"`
}

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v interface{}) error
	Close() error
}

// Hub tracks the clients of each project. Writes to one connection are
// serialized by its own lock.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[Conn]*sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[Conn]*sync.Mutex)}
}

func (h *Hub) Register(projectID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[projectID] == nil {
		h.clients[projectID] = make(map[Conn]*sync.Mutex)
	}
	h.clients[projectID][c] = &sync.Mutex{}
}

func (h *Hub) Unregister(projectID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[projectID]; exists {
		delete(clients, c)

		if len(clients) == 0 {
			delete(h.clients, projectID)
		}
	}
}

// Count returns the number of clients watching projectID.
func (h *Hub) Count(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[projectID])
}

// Broadcast sends ev to the project's clients. Clients that fail to receive
// it are dropped and closed.
func (h *Hub) Broadcast(ev Event) {
	if h == nil {
		return
	}

	type client struct {
		conn Conn
		mu   *sync.Mutex
	}

	h.mu.RLock()
	clients := make([]client, 0, len(h.clients[ev.ProjectID]))
	for c, mu := range h.clients[ev.ProjectID] {
		clients = append(clients, client{c, mu})
	}
	h.mu.RUnlock()

	for _, cl := range clients {
		if err := send(cl.conn, cl.mu, ev); err != nil {
			log.Printf("Failed to broadcast refresh to client: %v", err)
			h.Unregister(ev.ProjectID, cl.conn)
			cl.conn.Close()
		}
	}
}

func send(c Conn, mu *sync.Mutex, ev Event) error {
	mu.Lock()
	defer mu.Unlock()

	if err := c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.WriteJSON(ev)
}

// Refresh broadcasts a change of resource id within projectID.
func (h *Hub) Refresh(projectID, resource, id string) {
	h.Broadcast(Event{
		Type:      "refresh",
		Message:   "Project data updated",
		ProjectID: projectID,
		Resource:  resource,
		ID:        id,
	})
}

var _ Conn = (*websocket.Conn)(nil)
