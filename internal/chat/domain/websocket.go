package domain

// Action websocket request / room event action
type Action string

const (
	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// GetMessages websocket action get_messages
	GetMessages Action = "get_messages"
	// GetUsers websocket action get_users
	GetUsers Action = "get_users"

	// NotifyMessage room event: new message
	NotifyMessage Action = "notify_message"
	// UserJoined room event: user joined the room
	UserJoined Action = "user_joined"
	// UserStatus room event: user went online / offline
	UserStatus Action = "user_status"
)

// RoomChannel pub/sub channel of a room
func RoomChannel(room string) string {
	return "chat:room:" + room
}

// RoomEvent published on RoomChannel
type RoomEvent struct {
	Action  Action   `json:"action"`
	Room    string   `json:"room"`
	Message *Message `json:"message,omitempty"`
	User    *User    `json:"user,omitempty"`
}

// WSRequest websocket Request
type WSRequest struct {
	Action      string `json:"action"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	Limit       int    `json:"limit"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Response converts the event into the websocket frame pushed to clients
func (e RoomEvent) Response() WSResponse {
	payload := map[string]interface{}{"room": e.Room}
	if e.Message != nil {
		payload["message"] = e.Message
	}
	if e.User != nil {
		payload["user"] = e.User
	}
	return WSResponse{
		Action:  string(e.Action),
		Success: true,
		Payload: payload,
	}
}
