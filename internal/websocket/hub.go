package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"popdash/internal/infrastructure"
)

// Message types
const (
	TypeConnection = "connection"
	TypeDataUpdate = "data_update"
	TypeHeartbeat  = "heartbeat"
)

const broadcastBuffer = 64

// Message is the envelope of every server message
type Message struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
	TraceID   string `json:"trace_id,omitempty"`
}

// DataUpdate tells the dashboard to re-fetch one chart
type DataUpdate struct {
	Chart  string `json:"chart"`
	Source string `json:"source,omitempty"`
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	totalConnections int64
	messagesSent     int64
	messagesDropped  int64

	quit    chan struct{}
	done    chan struct{}
	running bool
	stopped bool
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in a goroutine. Calling Start twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running || h.stopped {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

// run owns the client set; clients are only added, removed and closed here.
func (h *Hub) run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub shut down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalConnections++
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.context()
			infrastructure.RecordWebSocketClients(ctx, h.metrics, 1)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.sendTo(client, h.encode(Message{
				Type: TypeConnection,
				Data: map[string]string{
					"status":    "connected",
					"client_id": client.id,
				},
				TraceID: client.traceID,
			}))

		case client := <-h.unregister:
			h.remove(client, "Client unregistered")

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			failed := 0
			for _, client := range clients {
				if !h.sendTo(client, message) {
					failed++
					h.remove(client, "Client send buffer full, disconnecting")
				}
			}

			h.logger.Debug("Broadcast message",
				slog.Int("client_count", len(clients)),
				slog.Int("failed", failed),
				slog.Int("message_size", len(message)))
		}
	}
}

// sendTo queues message for client without blocking
func (h *Hub) sendTo(client *Client, message []byte) bool {
	if message == nil {
		return true
	}
	select {
	case client.send <- message:
		h.mu.Lock()
		h.messagesSent++
		h.mu.Unlock()
		return true
	default:
		return false
	}
}

func (h *Hub) remove(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	infrastructure.RecordWebSocketClients(ctx, h.metrics, -1)
	h.logger.InfoContext(ctx, reason,
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

func (h *Hub) encode(msg Message) []byte {
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", msg.Type))
		return nil
	}
	return data
}

// Broadcast sends a message of the given type to every client. Messages are
// dropped when the hub is not running or its queue is full.
func (h *Hub) Broadcast(messageType string, data any) {
	h.BroadcastWithTrace(context.Background(), messageType, data)
}

// BroadcastWithTrace is Broadcast with the trace ID of ctx attached
func (h *Hub) BroadcastWithTrace(ctx context.Context, messageType string, data any) {
	payload := h.encode(Message{
		Type:    messageType,
		Data:    data,
		TraceID: infrastructure.GetTraceID(ctx),
	})
	if payload == nil {
		return
	}

	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if !running {
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.mu.Lock()
		h.messagesDropped++
		h.mu.Unlock()
		h.logger.WarnContext(ctx, "Broadcast queue full, message dropped",
			slog.String("message_type", messageType))
	}
}

// BroadcastDataUpdate tells dashboards that chartID has new data
func (h *Hub) BroadcastDataUpdate(ctx context.Context, chartID, source string) {
	h.BroadcastWithTrace(ctx, TypeDataUpdate, DataUpdate{Chart: chartID, Source: source})
}

// Register adds a client. It returns false when the hub is not running.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every client and waits for the hub loop to exit
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	wasRunning := h.running
	h.running = false
	h.stopped = true
	h.mu.Unlock()

	close(h.quit)
	if wasRunning {
		<-h.done
	}
}

// Running reports whether the hub loop is active
func (h *Hub) Running() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

// GetHubMetrics returns counters for the health endpoint
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"messages_dropped":  h.messagesDropped,
	}
}
