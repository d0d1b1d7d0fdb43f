package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/api/middleware"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/desktop"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/launcher"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/surface"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/tracing"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxMessageSize = 64 * 1024
	readTimeout    = 5 * time.Minute
	writeTimeout   = 10 * time.Second
)

// Message types sent by the server
const (
	TypeFrames = "frames"
	TypePong   = "pong"
	TypeError  = "error"
	TypeSystem = "system"
)

var (
	errMissingPayload = errors.New("missing payload")
	errUnknownType    = errors.New("unknown message type")
)

// Reply is one server to client message
type Reply struct {
	Type    string        `json:"type"`
	Handled bool          `json:"handled,omitempty"`
	Desktop *desktop.View `json:"desktop,omitempty"`
	Message string        `json:"message,omitempty"`
}

// Handler streams desktop events over a WebSocket. Each connection applies
// the client's messages one at a time in arrival order and answers every
// message with the rendered frames.
type Handler struct {
	desktops *desktop.Manager
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. An empty origins list accepts
// any origin.
func NewHandler(desktops *desktop.Manager, logger *zap.Logger, origins []string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return &Handler{
		desktops: desktops,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// WithMetrics adds metrics tracking to the handler
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// WithTracer records each applied message as a span under the upgrade
// request's trace
func (h *Handler) WithTracer(tracer *tracing.Tracer) *Handler {
	h.tracer = tracer
	return h
}

// HandleConnection handles WebSocket upgrade and messages. It must run
// behind the auth middleware.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	userID, identity := middleware.UserID(c), middleware.Identity(c)
	d := h.desktops.Get(userID, identity)
	logger := h.logger.With(zap.String("user_id", userID))
	logger.Debug("WebSocket connected")

	conn.SetReadLimit(maxMessageSize)

	view := d.View()
	if err := h.send(conn, Reply{Type: TypeSystem, Message: "connected", Desktop: &view}); err != nil {
		return
	}

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			if h.sendError(conn, "invalid message") != nil {
				return
			}
			continue
		}
		h.record("in", msg.Type)

		// The desktop is released on sign-out; later messages go to the
		// user's live one
		if d.Closed() {
			d = h.desktops.Get(userID, identity)
		}
		reply := h.traced(c.Request.Context(), d, msg)
		if err := h.send(conn, reply); err != nil {
			logger.Debug("WebSocket write failed", zap.Error(err))
			return
		}
	}
}

// traced runs handle inside a span named after the message type
func (h *Handler) traced(ctx context.Context, d *desktop.Desktop, msg types.WSMessage) Reply {
	var reply Reply
	tracing.Trace(ctx, h.tracer, "ws."+msg.Type, func(context.Context) error {
		reply = h.handle(d, msg)
		if reply.Type == TypeError {
			return errors.New(reply.Message)
		}
		return nil
	})
	return reply
}

// handle applies one message and builds the reply
func (h *Handler) handle(d *desktop.Desktop, msg types.WSMessage) Reply {
	if msg.Type == "ping" {
		return Reply{Type: TypePong}
	}

	handled, err := apply(d, msg)
	if err != nil {
		return Reply{Type: TypeError, Message: err.Error()}
	}

	view := d.View()
	return Reply{Type: TypeFrames, Handled: handled, Desktop: &view}
}

// apply runs msg against d and reports whether it changed anything
func apply(d *desktop.Desktop, msg types.WSMessage) (bool, error) {
	switch msg.Type {
	case "sync":
		return false, nil
	case "pointer":
		if msg.Pointer == nil {
			return false, errMissingPayload
		}
		return d.Pointer(surface.EventFromRequest(*msg.Pointer)), nil
	case "key":
		if msg.Key == nil {
			return false, errMissingPayload
		}
		return d.Key(launcher.KeyFromRequest(*msg.Key)), nil
	case "open":
		return d.Open(msg.WindowID), nil
	case "close":
		return d.CloseWindow(msg.WindowID), nil
	case "toggle":
		return d.Toggle(msg.WindowID), nil
	case "minimize":
		return d.Minimize(msg.WindowID), nil
	case "focus":
		return d.Focus(msg.WindowID), nil
	}
	return false, errUnknownType
}

func (h *Handler) send(conn *websocket.Conn, reply Reply) error {
	data, err := sonic.Marshal(reply)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	h.record("out", reply.Type)
	return nil
}

func (h *Handler) sendError(conn *websocket.Conn, message string) error {
	return h.send(conn, Reply{Type: TypeError, Message: message})
}

func (h *Handler) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}
