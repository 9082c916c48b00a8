package audit

import "time"

// Action names a user-directory event worth recording.
type Action string

const (
	ActionUserCreated    Action = "user_created"
	ActionUserUpdated    Action = "user_updated"
	ActionUserDeleted    Action = "user_deleted"
	ActionLoginSucceeded Action = "login_succeeded"
	ActionLoginFailed    Action = "login_failed"
	ActionLogout         Action = "logout"
)

// Event is emitted from handlers after an operation completes. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Action    Action    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	Nickname  string    `json:"nickname,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
