package notifications

import (
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const (
	// DefaultHistoryLimit bounds each business's retained notification history.
	DefaultHistoryLimit = 100

	// DefaultReplayCount is how many recent notifications a fresh connection
	// receives on connect.
	DefaultReplayCount = 10
)

// Notification is a single customer-facing event for a business. It lives
// only in the hub's in-memory history; it is never persisted.
type Notification struct {
	ID         kernel.UUID
	BusinessID kernel.UUID
	Type       string
	Title      string
	Message    string
	Payload    map[string]any
	Priority   string
	CreatedAt  time.Time
	Read       bool
}

// Conn is a live outbound channel to one connected client. The hub only
// writes; reading and connection upkeep belong to the transport layer.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// room holds one business's live connections and bounded history. The pair
// is mutated under a single lock so every broadcast observes a consistent
// snapshot of both.
type room struct {
	mu      sync.Mutex
	conns   map[string]Conn
	history []Notification
}

// Hub is the per-business notification registry: it tracks live connections
// keyed by (businessID, userID), keeps a bounded FIFO history per business,
// and fans notifications out to every live connection of the business.
//
// Histories survive disconnection: a business with zero live connections
// keeps its history until the process exits.
type Hub struct {
	mu    sync.RWMutex
	rooms map[kernel.UUID]*room

	historyLimit int
	replayCount  int
	logger       *slog.Logger
}

// NewHub creates a hub with the given per-business history capacity and
// connect-time replay count. Non-positive values fall back to the defaults.
func NewHub(historyLimit int, replayCount int, logger *slog.Logger) *Hub {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if replayCount <= 0 {
		replayCount = DefaultReplayCount
	}

	return &Hub{
		rooms:        make(map[kernel.UUID]*room),
		historyLimit: historyLimit,
		replayCount:  replayCount,
		logger:       logger.With("component", "notification_hub"),
	}
}

// connectionEstablishedFrame acknowledges a successful connection.
type connectionEstablishedFrame struct {
	Type        string    `json:"type"`
	BusinessID  string    `json:"business_id"`
	UserID      string    `json:"user_id"`
	ConnectedAt time.Time `json:"connected_at"`
}

// notificationWire is the JSON shape notifications take on the wire.
type notificationWire struct {
	ID         string         `json:"id"`
	BusinessID string         `json:"business_id"`
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Payload    map[string]any `json:"payload,omitempty"`
	Priority   string         `json:"priority"`
	CreatedAt  time.Time      `json:"created_at"`
	Read       bool           `json:"read"`
}

func toWire(n Notification) notificationWire {
	return notificationWire{
		ID:         n.ID.String(),
		BusinessID: n.BusinessID.String(),
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		Payload:    n.Payload,
		Priority:   n.Priority,
		CreatedAt:  n.CreatedAt,
		Read:       n.Read,
	}
}

func toWireList(history []Notification) []notificationWire {
	out := make([]notificationWire, 0, len(history))
	for _, n := range history {
		out = append(out, toWire(n))
	}
	return out
}

// notificationFrame carries one broadcast notification.
type notificationFrame struct {
	Type         string           `json:"type"`
	Notification notificationWire `json:"notification"`
}

// recentNotificationsFrame carries the connect-time replay or a requested
// history slice.
type recentNotificationsFrame struct {
	Type          string             `json:"type"`
	Notifications []notificationWire `json:"notifications"`
}

// Connect registers the channel for (businessID, userID), replacing and
// closing any previous channel of that user. The new channel immediately
// receives an acknowledgment frame and the last replay-count entries of the
// business's history.
func (h *Hub) Connect(businessID kernel.UUID, userID string, conn Conn) {
	r := h.room(businessID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.conns[userID]; ok {
		_ = previous.Close()
	}
	r.conns[userID] = conn // replaces any previous channel of this user

	ack := connectionEstablishedFrame{
		Type:        "connection_established",
		BusinessID:  businessID.String(),
		UserID:      userID,
		ConnectedAt: time.Now().UTC(),
	}
	if err := conn.WriteJSON(ack); err != nil {
		h.evictLocked(r, userID)
		return
	}

	replay := lastN(r.history, h.replayCount)
	if err := conn.WriteJSON(recentNotificationsFrame{
		Type:          "recent_notifications",
		Notifications: toWireList(replay),
	}); err != nil {
		h.evictLocked(r, userID)
	}
}

// Disconnect removes and closes the user's channel. The business's history
// is retained regardless of live connections.
func (h *Hub) Disconnect(businessID kernel.UUID, userID string) {
	h.mu.RLock()
	r, ok := h.rooms[businessID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	h.evictLocked(r, userID)
}

// Send appends the notification to its business's history, evicting the
// oldest entry when the capacity is reached, then broadcasts it to every
// live connection of that business. A failed write evicts only the failing
// connection; the broadcast continues and is never retried.
func (h *Hub) Send(notification Notification) {
	r := h.room(notification.BusinessID)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, notification)
	if len(r.history) > h.historyLimit {
		r.history = r.history[len(r.history)-h.historyLimit:]
	}

	frame := notificationFrame{Type: "notification", Notification: toWire(notification)}
	for userID, conn := range r.conns {
		if err := conn.WriteJSON(frame); err != nil {
			h.logger.Warn("dropping dead notification channel",
				"business_id", notification.BusinessID, "user_id", userID, "error", err)
			h.evictLocked(r, userID)
		}
	}
}

// MarkRead flags the notification as read in its business's history.
// Returns errs.ErrObjectNotFound if the notification is not in the retained
// window.
func (h *Hub) MarkRead(businessID kernel.UUID, notificationID kernel.UUID) error {
	h.mu.RLock()
	r, ok := h.rooms[businessID]
	h.mu.RUnlock()
	if !ok {
		return errs.NewObjectNotFoundError("notificationID", notificationID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.history {
		if r.history[i].ID.IsEqual(notificationID) {
			r.history[i].Read = true
			return nil
		}
	}
	return errs.NewObjectNotFoundError("notificationID", notificationID)
}

// History returns up to limit of the business's most recent notifications in
// chronological order. A non-positive limit returns the full retained window.
func (h *Hub) History(businessID kernel.UUID, limit int) []Notification {
	h.mu.RLock()
	r, ok := h.rooms[businessID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.history) {
		limit = len(r.history)
	}
	return lastN(r.history, limit)
}

// SendHistory writes up to limit of the business's most recent notifications
// to the given user's live connection as a recent_notifications frame. A
// user without a live connection is a no-op.
func (h *Hub) SendHistory(businessID kernel.UUID, userID string, limit int) {
	h.mu.RLock()
	r, ok := h.rooms[businessID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[userID]
	if !ok {
		return
	}

	if limit <= 0 || limit > len(r.history) {
		limit = len(r.history)
	}
	if err := conn.WriteJSON(recentNotificationsFrame{
		Type:          "recent_notifications",
		Notifications: toWireList(lastN(r.history, limit)),
	}); err != nil {
		h.evictLocked(r, userID)
	}
}

// ConnectionCount reports the number of live connections for the business.
func (h *Hub) ConnectionCount(businessID kernel.UUID) int {
	h.mu.RLock()
	r, ok := h.rooms[businessID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// room returns the business's room, creating it on first use.
func (h *Hub) room(businessID kernel.UUID) *room {
	h.mu.RLock()
	r, ok := h.rooms[businessID]
	h.mu.RUnlock()
	if ok {
		return r
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok = h.rooms[businessID]; ok {
		return r
	}
	r = &room{conns: make(map[string]Conn)}
	h.rooms[businessID] = r
	return r
}

// evictLocked closes and removes one connection. Callers hold the room lock.
func (h *Hub) evictLocked(r *room, userID string) {
	conn, ok := r.conns[userID]
	if !ok {
		return
	}
	_ = conn.Close()
	delete(r.conns, userID)
}

// lastN copies the trailing n entries of history.
func lastN(history []Notification, n int) []Notification {
	if n > len(history) {
		n = len(history)
	}
	out := make([]Notification, n)
	copy(out, history[len(history)-n:])
	return out
}
