package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/didikala/backend/internal/domain/ordering"
	"github.com/didikala/backend/internal/domain/shared"
	"github.com/didikala/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID     string
	UserID string
	Chan   chan SSEMessage
	Done   chan struct{}
}

// SSEMessage represents a message to be sent to SSE clients
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// OrderStreamHandler fans order lifecycle events out to connected SSE
// clients. It subscribes to the event bus as a regular handler; delivery to
// clients is best-effort and a slow client loses messages rather than
// blocking the broadcast.
type OrderStreamHandler struct {
	BaseHandler
	logger     *zap.Logger
	clients    sync.Map // map[string]*SSEClient
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	started    bool
	startMu    sync.Mutex
	maxClients int
	bufferSize int
}

// OrderStreamOption is a functional option for configuring the handler
type OrderStreamOption func(*OrderStreamHandler)

// WithStreamLogger sets the logger for the handler
func WithStreamLogger(logger *zap.Logger) OrderStreamOption {
	return func(h *OrderStreamHandler) {
		h.logger = logger
	}
}

// WithStreamHeartbeat sets the heartbeat interval
func WithStreamHeartbeat(interval time.Duration) OrderStreamOption {
	return func(h *OrderStreamHandler) {
		h.heartbeat = interval
	}
}

// WithStreamMaxClients sets the maximum number of concurrent SSE clients
func WithStreamMaxClients(max int) OrderStreamOption {
	return func(h *OrderStreamHandler) {
		h.maxClients = max
	}
}

// WithStreamBufferSize sets the per-client message buffer size
func WithStreamBufferSize(size int) OrderStreamOption {
	return func(h *OrderStreamHandler) {
		h.bufferSize = size
	}
}

// NewOrderStreamHandler creates a new SSE handler for order events
func NewOrderStreamHandler(opts ...OrderStreamOption) *OrderStreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &OrderStreamHandler{
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 10000,
		bufferSize: 100,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// EventTypes returns the event types this handler subscribes to
func (h *OrderStreamHandler) EventTypes() []string {
	return []string{
		ordering.EventOrderCreated,
		ordering.EventOrderUpdated,
		ordering.EventOrderDeleted,
	}
}

// Handle converts a domain event into its wire payload and broadcasts it
func (h *OrderStreamHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	var payload any

	switch e := event.(type) {
	case *ordering.OrderCreatedEvent:
		payload = toOrderResponse(e.Order)
	case *ordering.OrderUpdatedEvent:
		payload = struct {
			OrderID  int64                 `json:"orderID"`
			IsActive *bool                 `json:"isActive,omitempty"`
			Items    []ordering.ItemChange `json:"items"`
		}{
			OrderID:  e.OrderID,
			IsActive: e.IsActive,
			Items:    e.Items,
		}
	case *ordering.OrderDeletedEvent:
		payload = struct {
			OrderID int64 `json:"orderID"`
		}{OrderID: e.OrderID}
	default:
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	h.broadcast(SSEMessage{
		Event: event.EventType(),
		Data:  string(data),
		ID:    event.EventID().String(),
	})
	return nil
}

// Start begins the heartbeat loop
func (h *OrderStreamHandler) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return fmt.Errorf("SSE handler already started")
	}

	go h.sendHeartbeats()

	h.started = true
	h.logger.Info("order stream handler started")
	return nil
}

// Stop disconnects all clients and stops the handler
func (h *OrderStreamHandler) Stop() {
	h.cancel()

	h.clients.Range(func(key, value any) bool {
		if client, ok := value.(*SSEClient); ok {
			close(client.Done)
		}
		return true
	})

	h.logger.Info("order stream handler stopped")
}

// broadcast sends a message to all connected clients
func (h *OrderStreamHandler) broadcast(msg SSEMessage) {
	h.clients.Range(func(key, value any) bool {
		client, ok := value.(*SSEClient)
		if !ok {
			return true
		}

		select {
		case client.Chan <- msg:
			h.logger.Debug("sent SSE message to client",
				zap.String("client_id", client.ID),
				zap.String("event", msg.Event))
		default:
			// Channel full, client might be slow
			h.logger.Warn("client channel full, dropping message",
				zap.String("client_id", client.ID))
		}
		return true
	})
}

// sendHeartbeats periodically sends heartbeat messages to keep connections alive
func (h *OrderStreamHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.broadcast(SSEMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
		}
	}
}

// Stream handles GET /api/v1/orders/stream
func (h *OrderStreamHandler) Stream(c *gin.Context) {
	if h.maxClients > 0 && h.GetClientCount() >= h.maxClients {
		c.JSON(503, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MAX_CONNECTIONS_REACHED",
				"message": "Maximum number of SSE connections reached",
			},
		})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	userID := middleware.GetJWTUserID(c)

	client := &SSEClient{
		ID:     uuid.New().String(),
		UserID: userID,
		Chan:   make(chan SSEMessage, h.bufferSize),
		Done:   make(chan struct{}),
	}

	h.clients.Store(client.ID, client)
	// The channel is never closed: a broadcast may have loaded the client
	// before the delete and a send on a closed channel would panic. Once the
	// client is out of the map the channel is simply garbage-collected.
	defer h.clients.Delete(client.ID)

	h.logger.Info("SSE client connected",
		zap.String("client_id", client.ID),
		zap.String("user_id", userID))

	h.sendEvent(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":"%s","timestamp":%d}`, client.ID, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()

	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("SSE client disconnected",
				zap.String("client_id", client.ID))
			return
		case <-client.Done:
			h.logger.Info("SSE client disconnected (done signal)",
				zap.String("client_id", client.ID))
			return
		case <-h.ctx.Done():
			h.logger.Info("SSE handler stopped, disconnecting client",
				zap.String("client_id", client.ID))
			return
		case msg := <-client.Chan:
			h.sendEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// sendEvent writes an SSE event to the response writer
func (h *OrderStreamHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}

// GetClientCount returns the number of connected SSE clients
func (h *OrderStreamHandler) GetClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

var _ shared.EventHandler = (*OrderStreamHandler)(nil)
