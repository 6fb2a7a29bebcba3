package realtime

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler upgrades HTTP requests to relay connections
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	baseCtx  context.Context
}

// NewHandler creates a Handler accepting browser connections from the given
// origins. An empty list accepts any origin.
func NewHandler(ctx context.Context, hub *Hub, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Handler{
		hub:     hub,
		baseCtx: ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// RegisterRoutes mounts the websocket endpoint
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.ServeWS)
}

// ServeWS upgrades the connection and starts its pumps. Authentication
// happens afterwards through the presence-join event.
func (h *Handler) ServeWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.hub.log.Debug("websocket upgrade failed", zap.Error(err))
		return nil
	}

	client := newClient(h.hub, conn)
	h.hub.attach(client)

	go client.writePump()
	go client.readPump(h.baseCtx)
	return nil
}
