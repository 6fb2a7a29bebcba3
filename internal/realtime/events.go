package realtime

import (
	"time"

	json "github.com/goccy/go-json"
)

// Inbound events
const (
	EventPresenceJoin  = "presence-join"
	EventMessageSend   = "message-send"
	EventTypingStart   = "typing-start"
	EventTypingStop    = "typing-stop"
	EventMessageSeen   = "message-seen"
	EventMessageDelete = "message-delete"
	EventCallInvite    = "call-invite"
	EventCallReject    = "call-reject"
	EventPing          = "ping"
)

// Outbound events
const (
	EventPresenceList     = "presence-list"
	EventMessageReceive   = "message-receive"
	EventMessageDeleted   = "message-deleted"
	EventCallIncoming     = "call-incoming"
	EventCallRejected     = "call-rejected"
	EventNotification     = "notification"
	EventCommunityMessage = "community-message"
	EventPong             = "pong"
	EventError            = "error"
)

// Envelope is the frame exchanged in both directions
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type PresenceJoin struct {
	Token string `json:"token"`
}

type PresenceList struct {
	Users []string `json:"users"`
}

type MessageSend struct {
	ReceiverID string          `json:"receiver_id"`
	Message    json.RawMessage `json:"message"`
}

type MessageReceive struct {
	SenderID string          `json:"sender_id"`
	Message  json.RawMessage `json:"message"`
}

// Typing is used for both directions. Inbound carries the receiver,
// outbound carries the sender.
type Typing struct {
	ReceiverID     string `json:"receiver_id,omitempty"`
	SenderID       string `json:"sender_id,omitempty"`
	ConversationID string `json:"conversation_id"`
}

type MessageSeen struct {
	MessageID string `json:"message_id"`
}

type SeenReceipt struct {
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	SeenAt    time.Time `json:"seen_at"`
}

// MessageDelete names the message only; recipients come from its conversation
type MessageDelete struct {
	MessageID string `json:"message_id"`
}

type MessageDeleted struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id,omitempty"`
	CommunityID    string `json:"community_id,omitempty"`
}

type CallInvite struct {
	ReceiverID string `json:"receiver_id"`
	RoomID     string `json:"room_id"`
	CallerName string `json:"caller_name"`
	CallType   string `json:"call_type,omitempty"`
}

type CallIncoming struct {
	CallerID   string `json:"caller_id"`
	CallerName string `json:"caller_name"`
	RoomID     string `json:"room_id"`
	CallType   string `json:"call_type,omitempty"`
}

type CallReject struct {
	ReceiverID string `json:"receiver_id"`
}

type CallRejected struct {
	UserID string `json:"user_id"`
}

type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

func encode(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
