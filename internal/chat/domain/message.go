package domain

import "time"

// MessageType message type tag
type MessageType string

const (
	// MessageTypeText user text message
	MessageTypeText MessageType = "text"
	// MessageTypeSystem join / leave notices
	MessageTypeSystem MessageType = "system"
)

// MessageTypes every accepted message type
var MessageTypes = []string{string(MessageTypeText), string(MessageTypeSystem)}

// Message 聊天訊息, immutable once saved
type Message struct {
	ID          string      `json:"id"`
	Content     string      `json:"content"`
	UserID      string      `json:"user_id"`
	UserName    string      `json:"user_name"`
	Room        string      `json:"room"`
	Timestamp   time.Time   `json:"timestamp"`
	MessageType MessageType `json:"message_type"`
	// server assigned
	CreatedAt time.Time `json:"created_at,omitempty"`
}
