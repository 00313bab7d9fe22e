// Package websocket delivers task events to the live connections of the
// task's owner.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"task-management/internal/service"
	"task-management/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// broadcastBuffer bounds queued events; Publish drops when it is full.
const broadcastBuffer = 256

// Conn is the part of *websocket.Conn the hub uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one connection registered under its owner.
type Client struct {
	Conn  Conn
	Owner uuid.UUID
	mu    sync.Mutex
}

type message struct {
	owner uuid.UUID
	data  []byte
}

// Hub keeps connections grouped by owner. Only Run touches the client map.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        *logger.Loggers
}

var _ service.Notifier = (*Hub)(nil)

func NewHub(log *logger.Loggers) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves register, unregister and broadcast until ctx is done, then
// closes every remaining connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			if h.clients[client.Owner] == nil {
				h.clients[client.Owner] = make(map[*Client]bool)
			}
			h.clients[client.Owner][client] = true
		case client := <-h.unregister:
			h.remove(client)
		case msg := <-h.broadcast:
			for client := range h.clients[msg.owner] {
				client.mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, msg.data)
				client.mu.Unlock()
				if err != nil {
					h.log.Error.Error("Websocket write failed", zap.String("user_id", msg.owner.String()), zap.Error(err))
					h.remove(client)
				}
			}
		case <-ctx.Done():
			for _, owned := range h.clients {
				for client := range owned {
					_ = client.Conn.Close()
				}
			}
			h.clients = nil
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	owned, ok := h.clients[client.Owner]
	if !ok || !owned[client] {
		return
	}
	delete(owned, client)
	if len(owned) == 0 {
		delete(h.clients, client.Owner)
	}
	_ = client.Conn.Close()
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues event for owner's connections. It never blocks: when the
// hub is stopped or its queue is full the event is dropped.
func (h *Hub) Publish(owner uuid.UUID, event service.TaskEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error.Error("Error encoding task event", zap.Error(err))
		return
	}
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- message{owner: owner, data: data}:
	default:
		h.log.System.Warn("Task event dropped", zap.String("user_id", owner.String()), zap.String("type", string(event.Type)))
	}
}

// Serve registers conn for owner and blocks until the peer goes away.
// Incoming messages are read and discarded.
func (h *Hub) Serve(conn Conn, owner uuid.UUID) {
	client := &Client{Conn: conn, Owner: owner}
	h.Register(client)
	defer h.Unregister(client)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
