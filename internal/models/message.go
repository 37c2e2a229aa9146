package models

import "time"

// ChatMessage is a single stored chat turn. Rows are append-only; nothing in
// the service mutates a turn after it has been written.

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the two storable roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type ChatMessage struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
