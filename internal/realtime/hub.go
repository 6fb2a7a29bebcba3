// Package realtime relays presence, chat, typing, read receipts and call
// invites between connected users over websockets. Delivery is best-effort:
// events for users that are not present, or whose send buffer is full, are
// dropped. Persistent state lives behind the REST API.
package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/onyxdrift/backend/internal/auth"
	"github.com/onyxdrift/backend/internal/metrics"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/presence"
	"github.com/onyxdrift/backend/internal/repositories"
)

const defaultEventTimeout = 5 * time.Second

// MessageStore is the persistence the relay needs for receipts and deletion.
// MarkSeen must reject callers outside the message's conversation or community.
type MessageStore interface {
	MarkSeen(ctx context.Context, messageID, userID string) (*models.Message, error)
	DeleteForEveryone(ctx context.Context, messageID, userID string) (*models.Message, error)
	Audience(ctx context.Context, msg *models.Message) ([]string, error)
}

// Hub owns every local connection and routes events between them through the
// presence directory
type Hub struct {
	directory presence.Directory
	store     MessageStore
	verifier  auth.Verifier
	log       *zap.Logger

	eventTimeout time.Duration

	mu    sync.RWMutex
	conns map[string]*Client
}

// NewHub creates a Hub
func NewHub(directory presence.Directory, store MessageStore, verifier auth.Verifier, log *zap.Logger) *Hub {
	return &Hub{
		directory:    directory,
		store:        store,
		verifier:     verifier,
		log:          log.Named("realtime"),
		eventTimeout: defaultEventTimeout,
		conns:        make(map[string]*Client),
	}
}

func (h *Hub) attach(c *Client) {
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
	metrics.ActiveConnections.Inc()
	h.log.Debug("connection opened", zap.String("conn_id", c.id))
}

func (h *Hub) disconnect(c *Client) {
	h.mu.Lock()
	_, known := h.conns[c.id]
	delete(h.conns, c.id)
	h.mu.Unlock()
	if !known {
		return
	}
	metrics.ActiveConnections.Dec()
	c.close()

	wasRegistered := c.state == stateRegistered
	c.state = stateDisconnected
	if !wasRegistered {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.eventTimeout)
	defer cancel()
	userID, ok, err := h.directory.Unregister(ctx, c.id)
	if err != nil {
		h.log.Error("presence unregister failed", zap.String("conn_id", c.id), zap.Error(err))
		return
	}
	h.log.Info("user left", zap.String("user_id", c.userID), zap.String("conn_id", c.id))
	if ok {
		h.log.Debug("route removed", zap.String("user_id", userID))
		h.broadcastPresence(ctx)
	}
}

// Shutdown closes every local connection and forgets their routes
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.conns))
	for _, c := range h.conns {
		clients = append(clients, c)
	}
	h.conns = make(map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
		if _, _, err := h.directory.Unregister(ctx, c.id); err != nil {
			h.log.Warn("presence unregister failed during shutdown", zap.String("conn_id", c.id), zap.Error(err))
		}
		metrics.ActiveConnections.Dec()
	}
	h.log.Info("realtime hub stopped", zap.Int("closed", len(clients)))
}

func (h *Hub) dispatch(parent context.Context, c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
		h.reply(c, EventError, ErrorPayload{Message: "malformed event"})
		metrics.RecordRelay("unknown", metrics.OutcomeRejected)
		return
	}

	if c.state != stateRegistered && env.Event != EventPresenceJoin {
		h.reply(c, EventError, ErrorPayload{Event: env.Event, Message: "join presence first"})
		metrics.RecordRelay(env.Event, metrics.OutcomeRejected)
		return
	}

	ctx, cancel := context.WithTimeout(parent, h.eventTimeout)
	defer cancel()

	var err error
	switch env.Event {
	case EventPresenceJoin:
		err = h.handleJoin(ctx, c, env.Data)
	case EventMessageSend:
		err = h.handleMessageSend(ctx, c, env.Data)
	case EventTypingStart, EventTypingStop:
		err = h.handleTyping(ctx, c, env.Event, env.Data)
	case EventMessageSeen:
		err = h.handleSeen(ctx, c, env.Data)
	case EventMessageDelete:
		err = h.handleDelete(ctx, c, env.Data)
	case EventCallInvite:
		err = h.handleCallInvite(ctx, c, env.Data)
	case EventCallReject:
		err = h.handleCallReject(ctx, c, env.Data)
	case EventPing:
		h.reply(c, EventPong, struct{}{})
	default:
		err = errUnknownEvent
	}

	if err != nil {
		h.log.Debug("event rejected",
			zap.String("event", env.Event),
			zap.String("conn_id", c.id),
			zap.Error(err),
		)
		metrics.RecordRelay(env.Event, metrics.OutcomeRejected)
		h.reply(c, EventError, ErrorPayload{Event: env.Event, Message: clientMessage(err)})
	}
}

var (
	errUnknownEvent = errors.New("unknown event")
	errBadPayload   = errors.New("invalid payload")
)

func clientMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return "unauthorized"
	case errors.Is(err, repositories.ErrForbidden):
		return "forbidden"
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, repositories.ErrInvalidID):
		return "not found"
	case errors.Is(err, errBadPayload), errors.Is(err, errUnknownEvent):
		return err.Error()
	default:
		return "internal error"
	}
}

func decode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return errBadPayload
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errBadPayload
	}
	return nil
}

func (h *Hub) handleJoin(ctx context.Context, c *Client, data []byte) error {
	var p PresenceJoin
	if err := decode(data, &p); err != nil {
		return err
	}
	id, err := h.verifier.Verify(ctx, p.Token)
	if err != nil {
		return err
	}

	if c.state == stateRegistered && c.userID != id.Subject {
		if _, _, err := h.directory.Unregister(ctx, c.id); err != nil {
			return err
		}
	}
	evicted, err := h.directory.Register(ctx, id.Subject, c.id)
	if err != nil {
		return err
	}
	c.userID = id.Subject
	c.state = stateRegistered

	fields := []zap.Field{zap.String("user_id", id.Subject), zap.String("conn_id", c.id)}
	if evicted != "" {
		fields = append(fields, zap.String("evicted_conn_id", evicted))
	}
	h.log.Info("user joined", fields...)
	metrics.RecordRelay(EventPresenceJoin, metrics.OutcomeDelivered)

	h.broadcastPresence(ctx)
	return nil
}

func (h *Hub) handleMessageSend(ctx context.Context, c *Client, data []byte) error {
	var p MessageSend
	if err := decode(data, &p); err != nil || p.ReceiverID == "" {
		return errBadPayload
	}
	h.deliver(ctx, p.ReceiverID, EventMessageReceive, MessageReceive{SenderID: c.userID, Message: p.Message})
	return nil
}

func (h *Hub) handleTyping(ctx context.Context, c *Client, event string, data []byte) error {
	var p Typing
	if err := decode(data, &p); err != nil || p.ReceiverID == "" {
		return errBadPayload
	}
	h.deliver(ctx, p.ReceiverID, event, Typing{SenderID: c.userID, ConversationID: p.ConversationID})
	return nil
}

func (h *Hub) handleSeen(ctx context.Context, c *Client, data []byte) error {
	var p MessageSeen
	if err := decode(data, &p); err != nil || p.MessageID == "" {
		return errBadPayload
	}
	msg, err := h.store.MarkSeen(ctx, p.MessageID, c.userID)
	if err != nil {
		return err
	}
	seenAt, ok := msg.SeenAtBy(c.userID)
	if !ok {
		// the caller sent this message; nobody to notify
		return nil
	}
	h.deliver(ctx, msg.SenderID, EventMessageSeen, SeenReceipt{MessageID: p.MessageID, UserID: c.userID, SeenAt: seenAt})
	return nil
}

func (h *Hub) handleDelete(ctx context.Context, c *Client, data []byte) error {
	var p MessageDelete
	if err := decode(data, &p); err != nil || p.MessageID == "" {
		return errBadPayload
	}
	msg, err := h.store.DeleteForEveryone(ctx, p.MessageID, c.userID)
	if err != nil {
		return err
	}
	deleted := MessageDeleted{MessageID: p.MessageID}
	switch {
	case msg.ConversationID != nil:
		deleted.ConversationID = msg.ConversationID.Hex()
	case msg.CommunityID != nil:
		deleted.CommunityID = msg.CommunityID.Hex()
	}

	members, err := h.store.Audience(ctx, msg)
	if err != nil {
		return err
	}
	frame, err := encode(EventMessageDeleted, deleted)
	if err != nil {
		return err
	}
	for _, member := range members {
		if member != c.userID {
			h.deliverFrame(ctx, member, EventMessageDeleted, frame)
		}
	}
	return nil
}

func (h *Hub) handleCallInvite(ctx context.Context, c *Client, data []byte) error {
	var p CallInvite
	if err := decode(data, &p); err != nil || p.ReceiverID == "" || p.RoomID == "" {
		return errBadPayload
	}
	h.deliver(ctx, p.ReceiverID, EventCallIncoming, CallIncoming{
		CallerID:   c.userID,
		CallerName: p.CallerName,
		RoomID:     p.RoomID,
		CallType:   p.CallType,
	})
	return nil
}

func (h *Hub) handleCallReject(ctx context.Context, c *Client, data []byte) error {
	var p CallReject
	if err := decode(data, &p); err != nil || p.ReceiverID == "" {
		return errBadPayload
	}
	h.deliver(ctx, p.ReceiverID, EventCallRejected, CallRejected{UserID: c.userID})
	return nil
}

// Notify pushes a persisted notification to its recipient if present
func (h *Hub) Notify(ctx context.Context, n *models.Notification) {
	h.deliver(ctx, n.RecipientID, EventNotification, n)
}

// PublishCommunityMessage pushes a persisted community message to every
// present member except its sender
func (h *Hub) PublishCommunityMessage(ctx context.Context, members []string, msg *models.Message) {
	frame, err := encode(EventCommunityMessage, msg)
	if err != nil {
		h.log.Error("encode community message", zap.Error(err))
		return
	}
	for _, member := range members {
		if member == msg.SenderID {
			continue
		}
		h.deliverFrame(ctx, member, EventCommunityMessage, frame)
	}
}

// deliver routes one event to userID. Offline users and full buffers drop it.
func (h *Hub) deliver(ctx context.Context, userID, event string, payload interface{}) {
	frame, err := encode(event, payload)
	if err != nil {
		h.log.Error("encode event", zap.String("event", event), zap.Error(err))
		metrics.RecordRelay(event, metrics.OutcomeError)
		return
	}
	h.deliverFrame(ctx, userID, event, frame)
}

func (h *Hub) deliverFrame(ctx context.Context, userID, event string, frame []byte) {
	connID, ok, err := h.directory.Lookup(ctx, userID)
	if err != nil {
		h.log.Warn("presence lookup failed", zap.String("user_id", userID), zap.Error(err))
		metrics.RecordRelay(event, metrics.OutcomeError)
		return
	}
	if !ok {
		metrics.RecordRelay(event, metrics.OutcomeOffline)
		return
	}

	h.mu.RLock()
	target := h.conns[connID]
	h.mu.RUnlock()
	if target == nil {
		metrics.RecordRelay(event, metrics.OutcomeOffline)
		return
	}
	if !target.enqueue(frame) {
		h.log.Debug("send buffer full, event dropped",
			zap.String("event", event),
			zap.String("user_id", userID),
		)
		metrics.RecordRelay(event, metrics.OutcomeDropped)
		return
	}
	metrics.RecordRelay(event, metrics.OutcomeDelivered)
}

func (h *Hub) broadcastPresence(ctx context.Context) {
	users, err := h.directory.ListActive(ctx)
	if err != nil {
		h.log.Warn("presence list failed", zap.Error(err))
		return
	}
	metrics.PresentUsers.Set(float64(len(users)))

	frame, err := encode(EventPresenceList, PresenceList{Users: users})
	if err != nil {
		h.log.Error("encode presence list", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.conns {
		c.enqueue(frame)
	}
}

func (h *Hub) reply(c *Client, event string, payload interface{}) {
	frame, err := encode(event, payload)
	if err != nil {
		h.log.Error("encode reply", zap.String("event", event), zap.Error(err))
		return
	}
	c.enqueue(frame)
}
