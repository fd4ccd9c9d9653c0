package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/notifications"
)

// socketConn wraps a gorilla connection with a write mutex. The hub and the
// read loop both write frames, and gorilla allows one concurrent writer.
type socketConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *socketConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *socketConn) Close() error {
	return c.conn.Close()
}

var _ notifications.Conn = (*socketConn)(nil)

// WebSocketServer upgrades business clients onto the notification hub and
// services their inbound frames.
type WebSocketServer struct {
	hub      *notifications.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketServer creates the WebSocket endpoint backed by the hub.
func NewWebSocketServer(hub *notifications.Hub, logger *slog.Logger) *WebSocketServer {
	return &WebSocketServer{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With("component", "websocket"),
	}
}

// RegisterRoutes mounts the WebSocket endpoint on the echo instance.
func (s *WebSocketServer) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/notifications", s.Notifications)
}

// clientFrame is an inbound message from a connected client.
type clientFrame struct {
	Type           string `json:"type"`
	NotificationID string `json:"notification_id,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// Notifications handles GET /ws/notifications?business_id=...&user_id=...
// It upgrades the connection, registers it with the hub, and serves the
// client's frames until the connection drops.
func (s *WebSocketServer) Notifications(ctx echo.Context) error {
	businessID, err := kernel.UUIDFromString(ctx.QueryParam("business_id"))
	if err != nil {
		return writeBadRequest(ctx, "invalid business_id")
	}
	userID := ctx.QueryParam("user_id")
	if userID == "" {
		return writeBadRequest(ctx, "user_id is required")
	}

	conn, err := s.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}

	wrapped := &socketConn{conn: conn}
	s.hub.Connect(businessID, userID, wrapped)

	go s.readLoop(businessID, userID, wrapped)
	return nil
}

func (s *WebSocketServer) readLoop(businessID kernel.UUID, userID string, conn *socketConn) {
	defer s.hub.Disconnect(businessID, userID)

	for {
		_, raw, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket closed unexpectedly",
					"business_id", businessID, "user_id", userID, "error", err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}

		switch frame.Type {
		case "ping":
			if err := conn.WriteJSON(map[string]string{"type": "pong"}); err != nil {
				return
			}
		case "mark_read":
			notificationID, err := kernel.UUIDFromString(frame.NotificationID)
			if err != nil {
				continue
			}
			if err := s.hub.MarkRead(businessID, notificationID); err != nil {
				s.logger.Debug("mark_read for unknown notification",
					"business_id", businessID, "notification_id", frame.NotificationID)
			}
		case "request_history":
			s.hub.SendHistory(businessID, userID, frame.Limit)
		}
	}
}
