package domain

import "time"

// DefaultRoom room used when none is given
const DefaultRoom = "general"

// User 聊天室使用者
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Room     string `json:"room"`
	IsOnline bool   `json:"is_online"`
	IsActive bool   `json:"is_active"`
	// server assigned
	CreatedAt time.Time `json:"created_at,omitempty"`
	LastSeen  time.Time `json:"last_seen,omitempty"`
}
