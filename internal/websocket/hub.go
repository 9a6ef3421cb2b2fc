package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"festivalpulse/internal/infrastructure"
)

// Message type constants
const (
	TypeConnection = "connection"
	TypeDataUpdate = "data_update"
	TypeError      = "error"
)

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger

	totalConnections int64
	messagesSent     int64

	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub's main loop in its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run processes register, unregister and broadcast events
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := contextForClient(client)
			h.logger.InfoContext(ctx, "client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			connMsg := map[string]interface{}{
				"type": TypeConnection,
				"data": map[string]interface{}{
					"status":    "connected",
					"client_id": client.id,
				},
				"timestamp": time.Now().Format(time.RFC3339),
			}

			if jsonData, err := json.Marshal(connMsg); err == nil {
				select {
				case client.send <- jsonData:
				default:
					h.logger.WarnContext(ctx, "failed to send connection message, client buffer full",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()

				h.logger.InfoContext(contextForClient(client), "client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				select {
				case client.send <- message:
					h.messagesSent++
				default:
					// Send buffer full, drop the client
					h.mu.Lock()
					close(client.send)
					delete(h.clients, client)
					h.mu.Unlock()

					h.logger.WarnContext(contextForClient(client), "client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}
		}
	}
}

// Stop shuts down the hub loop
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	close(h.quit)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastDataUpdate notifies all clients that a session's dataset changed
func (h *Hub) BroadcastDataUpdate(reason string, posts int) {
	h.broadcastJSON(map[string]interface{}{
		"type": TypeDataUpdate,
		"data": map[string]interface{}{
			"reason": reason,
			"posts":  posts,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Hub) broadcastJSON(message map[string]interface{}) {
	jsonData, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("error marshaling message",
			slog.String("error", err.Error()))
		return
	}

	h.broadcast <- jsonData
}

func contextForClient(c *Client) context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}
