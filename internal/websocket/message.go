package websocket

import (
	"encoding/json"
	"time"

	"devconnector-server/internal/domain"
)

type MessageType string

const (
	TypePostCreated     MessageType = "post_created"
	TypePostDeleted     MessageType = "post_deleted"
	TypeLikesUpdated    MessageType = "likes_updated"
	TypeCommentsUpdated MessageType = "comments_updated"
	TypePing            MessageType = "ping"
	TypePong            MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type PostDeletedPayload struct {
	PostID string `json:"id"`
}

type LikesPayload struct {
	PostID string        `json:"id"`
	Likes  []domain.Like `json:"likes"`
}

type CommentsPayload struct {
	PostID   string           `json:"id"`
	Comments []domain.Comment `json:"comments"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
