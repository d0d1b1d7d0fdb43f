package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/api/middleware"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/catalog"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/desktop"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/persist"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/tracing"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func dial(t *testing.T) (*websocket.Conn, *desktop.Manager, *monitoring.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := desktop.NewManager(desktop.Options{
		Catalog:       catalog.New(catalog.BuiltinManifest()),
		Store:         persist.NewMemoryStore(),
		AutosaveDelay: time.Hour,
	}, nil)
	t.Cleanup(manager.Close)

	metrics := monitoring.NewMetricsWithRegistry(prometheus.NewRegistry())
	tracer := tracing.New("test", zap.NewNop())
	t.Cleanup(tracer.Close)
	handler := NewHandler(manager, nil, nil).WithMetrics(metrics).WithTracer(tracer)

	router := gin.New()
	router.GET("/stream", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, middleware.LocalUserID)
		c.Set(middleware.ContextIdentity, middleware.LocalIdentity)
	}, handler.HandleConnection)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var hello Reply
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, TypeSystem, hello.Type)
	return conn, manager, metrics
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg types.WSMessage) Reply {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	var reply Reply
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestStreamAppliesMessagesInOrder(t *testing.T) {
	conn, _, metrics := dial(t)

	reply := roundTrip(t, conn, types.WSMessage{Type: "open", WindowID: "notepad"})
	assert.Equal(t, TypeFrames, reply.Type)
	assert.True(t, reply.Handled)
	require.NotNil(t, reply.Desktop)
	require.Len(t, reply.Desktop.Frames, 1)
	start := reply.Desktop.Frames[0].Position

	roundTrip(t, conn, types.WSMessage{Type: "pointer", Pointer: &types.PointerRequest{
		Kind: "down", WindowID: "notepad", Target: "title", X: start.X + 5, Y: start.Y + 5,
	}})
	reply = roundTrip(t, conn, types.WSMessage{Type: "pointer", Pointer: &types.PointerRequest{
		Kind: "move", X: start.X + 25, Y: start.Y + 45,
	}})
	assert.True(t, reply.Desktop.Frames[0].Dragging)
	assert.Equal(t, types.WindowPosition{X: start.X + 20, Y: start.Y + 40}, reply.Desktop.Frames[0].Position)

	reply = roundTrip(t, conn, types.WSMessage{Type: "pointer", Pointer: &types.PointerRequest{Kind: "up"}})
	assert.False(t, reply.Desktop.Frames[0].Dragging)

	reply = roundTrip(t, conn, types.WSMessage{Type: "key", Key: &types.KeyRequest{Key: "Escape"}})
	assert.True(t, reply.Handled)
	assert.Empty(t, reply.Desktop.Frames)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WSConnections))
}

func TestStreamErrorsAndPing(t *testing.T) {
	conn, _, _ := dial(t)

	reply := roundTrip(t, conn, types.WSMessage{Type: "ping"})
	assert.Equal(t, TypePong, reply.Type)

	reply = roundTrip(t, conn, types.WSMessage{Type: "pointer"})
	assert.Equal(t, TypeError, reply.Type)
	assert.Equal(t, errMissingPayload.Error(), reply.Message)

	reply = roundTrip(t, conn, types.WSMessage{Type: "teleport"})
	assert.Equal(t, TypeError, reply.Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, TypeError, reply.Type)

	reply = roundTrip(t, conn, types.WSMessage{Type: "open", WindowID: "secretRoom"})
	assert.False(t, reply.Handled, "hidden apps stay closed until unlocked")
}

func TestStreamFollowsReleasedDesktop(t *testing.T) {
	conn, manager, _ := dial(t)

	roundTrip(t, conn, types.WSMessage{Type: "open", WindowID: "notepad"})
	stale, ok := manager.Lookup(middleware.LocalUserID)
	require.True(t, ok)

	require.True(t, manager.Release(middleware.LocalUserID))
	reply := roundTrip(t, conn, types.WSMessage{Type: "open", WindowID: "terminal"})
	assert.True(t, reply.Handled)

	live, ok := manager.Lookup(middleware.LocalUserID)
	require.True(t, ok)
	assert.NotSame(t, stale, live)
	assert.True(t, live.Registry().IsOpen("terminal"))
	assert.False(t, stale.Registry().IsOpen("terminal"))
}

func TestMessagesAreTraced(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := tracing.New("test", zap.New(core))

	manager := desktop.NewManager(desktop.Options{
		Catalog:       catalog.New(catalog.BuiltinManifest()),
		Store:         persist.NewMemoryStore(),
		AutosaveDelay: time.Hour,
	}, nil)
	defer manager.Close()

	handler := NewHandler(manager, nil, nil).WithTracer(tracer)
	d := manager.Get(middleware.LocalUserID, middleware.LocalIdentity)

	ok := handler.traced(context.Background(), d, types.WSMessage{Type: "open", WindowID: "terminal"})
	assert.Equal(t, TypeFrames, ok.Type)
	bad := handler.traced(context.Background(), d, types.WSMessage{Type: "teleport"})
	assert.Equal(t, TypeError, bad.Type)

	// Close drains the collector
	tracer.Close()

	completed := logs.FilterMessage("span completed").FilterField(zap.String("operation", "ws.open"))
	assert.Equal(t, 1, completed.Len())
	failed := logs.FilterMessage("span failed").FilterField(zap.String("operation", "ws.teleport"))
	assert.Equal(t, 1, failed.Len())
}
