package outbox

import (
	"encoding/json"
	"time"
)

// Action is the kind of mutation an operation replays against the server.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Operation is a durable intent to mutate server state.
// Payload holds the survey snapshot taken at enqueue time and is empty for deletes.
type Operation struct {
	ID             int64           `json:"id"`
	Action         Action          `json:"action"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	LocalID        string          `json:"local_id"`
	ServerID       string          `json:"server_id,omitempty"`
	EnqueuedAt     time.Time       `json:"enqueued_at"`
	Synced         bool            `json:"synced"`
	SyncedAt       *time.Time      `json:"synced_at,omitempty"`
	Attempts       int             `json:"attempts"`
	LastError      string          `json:"last_error,omitempty"`
	ServerResponse json.RawMessage `json:"server_response,omitempty"`
}
