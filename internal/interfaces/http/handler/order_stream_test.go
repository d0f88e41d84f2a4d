package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/didikala/backend/internal/domain/ordering"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamContext(t *testing.T, ctx context.Context) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/orders/stream", nil).WithContext(ctx)
	return c, w
}

func TestStreamRegistersAndUnregistersClient(t *testing.T) {
	h := NewOrderStreamHandler()
	require.NoError(t, h.Start())
	defer h.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	c, w := newStreamContext(t, ctx)

	done := make(chan struct{})
	go func() {
		h.Stream(c)
		close(done)
	}()

	require.Eventually(t, func() bool { return h.GetClientCount() == 1 },
		time.Second, time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, 0, h.GetClientCount())
	assert.Contains(t, w.Body.String(), "event: connected")
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
}

// A broadcast that loaded a client from the map just before the client
// disconnected may still send on its channel. The channel therefore stays
// open after disconnect; sending into it must never panic.
func TestStreamDisconnectedClientChannelStaysOpen(t *testing.T) {
	h := NewOrderStreamHandler(WithStreamHeartbeat(5 * time.Millisecond))
	require.NoError(t, h.Start())
	defer h.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	c, _ := newStreamContext(t, ctx)

	done := make(chan struct{})
	go func() {
		h.Stream(c)
		close(done)
	}()

	require.Eventually(t, func() bool { return h.GetClientCount() == 1 },
		time.Second, time.Millisecond)

	var client *SSEClient
	h.clients.Range(func(_, value any) bool {
		client = value.(*SSEClient)
		return false
	})
	require.NotNil(t, client)

	cancel()
	<-done
	require.Equal(t, 0, h.GetClientCount())

	require.NotPanics(t, func() {
		select {
		case client.Chan <- SSEMessage{Event: "heartbeat", Data: "{}"}:
		default:
		}
	})
}

func TestStreamRejectsWhenFull(t *testing.T) {
	h := NewOrderStreamHandler(WithStreamMaxClients(1))
	require.NoError(t, h.Start())
	defer h.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c1, _ := newStreamContext(t, ctx)

	done := make(chan struct{})
	go func() {
		h.Stream(c1)
		close(done)
	}()
	require.Eventually(t, func() bool { return h.GetClientCount() == 1 },
		time.Second, time.Millisecond)

	c2, w2 := newStreamContext(t, context.Background())
	h.Stream(c2)

	assert.Equal(t, http.StatusServiceUnavailable, w2.Code)
	assert.Contains(t, w2.Body.String(), "MAX_CONNECTIONS_REACHED")

	cancel()
	<-done
}

func TestStreamHandlerBroadcastsOrderEvents(t *testing.T) {
	h := NewOrderStreamHandler()
	require.NoError(t, h.Start())
	defer h.Stop()

	client := &SSEClient{
		ID:   "test-client",
		Chan: make(chan SSEMessage, 10),
		Done: make(chan struct{}),
	}
	h.clients.Store(client.ID, client)
	defer h.clients.Delete(client.ID)

	err := h.Handle(context.Background(), ordering.NewOrderDeletedEvent(42))
	require.NoError(t, err)

	select {
	case msg := <-client.Chan:
		assert.Equal(t, ordering.EventOrderDeleted, msg.Event)
		assert.JSONEq(t, `{"orderID":42}`, msg.Data)
		assert.NotEmpty(t, msg.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast message")
	}
}
