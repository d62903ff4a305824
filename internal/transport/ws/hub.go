package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Message types
const (
	MsgApplicabilityUpdated MessageType = "applicability_updated"
	MsgCatalogReloaded      MessageType = "catalog_reloaded"
	MsgProjectDeleted       MessageType = "project_deleted"
	MsgError                MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans project events out to watching WebSocket connections
type Hub struct {
	// Project -> watching connections
	projects map[string]map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string

	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

// Connection represents a WebSocket connection watching one project
type Connection struct {
	ProjectID string
	Send      chan []byte
}

// NewConnection creates a connection with a buffered send queue
func NewConnection(projectID string) *Connection {
	return &Connection{
		ProjectID: projectID,
		Send:      make(chan []byte, 256),
	}
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	ProjectID string // Empty means every connection
	Message   *Message
}

// NewHub creates a new WebSocket hub and starts its loop
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		projects:   make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		disconnect: make(chan string),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case conn := <-h.register:
			if h.projects[conn.ProjectID] == nil {
				h.projects[conn.ProjectID] = make(map[*Connection]struct{})
			}
			h.projects[conn.ProjectID][conn] = struct{}{}
			h.logger.Debug("watcher connected", zap.String("project_id", conn.ProjectID))

		case conn := <-h.unregister:
			h.remove(conn)

		case projectID := <-h.disconnect:
			for conn := range h.projects[projectID] {
				h.remove(conn)
			}

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Error("failed to encode message", zap.Error(err))
				continue
			}
			if msg.ProjectID != "" {
				h.deliver(h.projects[msg.ProjectID], data)
				continue
			}
			for _, conns := range h.projects {
				h.deliver(conns, data)
			}

		case <-h.done:
			for _, conns := range h.projects {
				for conn := range conns {
					close(conn.Send)
				}
			}
			h.projects = nil
			return
		}
	}
}

func (h *Hub) remove(conn *Connection) {
	conns, ok := h.projects[conn.ProjectID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	close(conn.Send)
	if len(conns) == 0 {
		delete(h.projects, conn.ProjectID)
	}
	h.logger.Debug("watcher disconnected", zap.String("project_id", conn.ProjectID))
}

func (h *Hub) deliver(conns map[*Connection]struct{}, data []byte) {
	for conn := range conns {
		select {
		case conn.Send <- data:
		default:
			// Drop message if buffer full
		}
	}
}

// Register adds a connection. It reports false once the hub is closed.
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a connection and closes its send queue
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// BroadcastToProject sends a message to a project's watchers (implements service.Broadcaster)
func (h *Hub) BroadcastToProject(projectID string, msgType string, payload interface{}) {
	h.send(projectID, msgType, payload)
}

// BroadcastToAll sends a message to every watcher (implements service.Broadcaster)
func (h *Hub) BroadcastToAll(msgType string, payload interface{}) {
	h.send("", msgType, payload)
}

// DisconnectProject closes every connection watching a project (implements service.Broadcaster)
func (h *Hub) DisconnectProject(projectID string) {
	select {
	case h.disconnect <- projectID:
	case <-h.done:
	}
}

func (h *Hub) send(projectID, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{
		ProjectID: projectID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}:
	case <-h.done:
	}
}

// Close stops the hub and closes every connection's send queue
func (h *Hub) Close() {
	h.once.Do(func() { close(h.done) })
	<-h.stopped
}
