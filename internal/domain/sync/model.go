package sync

import (
	"encoding/json"
	"time"
)

// Status is what subscribers receive on every broadcast.
type Status string

const (
	StatusSyncing Status = "syncing"
	StatusSynced  Status = "synced"
	StatusError   Status = "error"
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

type Event struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Details   *Details  `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Outcome is the result of one sync cycle.
type Outcome string

const (
	OutcomeSuccess           Outcome = "success"
	OutcomePartial           Outcome = "partial"
	OutcomeSkipped           Outcome = "skipped"
	OutcomeOffline           Outcome = "offline"
	OutcomeServerUnreachable Outcome = "server_unreachable"
	OutcomeError             Outcome = "error"
)

// Reachability combines the network signal with the server probe.
type Reachability string

const (
	ReachOnline            Reachability = "online"
	ReachOffline           Reachability = "offline"
	ReachServerUnreachable Reachability = "server_unreachable"
)

type OperationError struct {
	OperationID int64  `json:"operation_id"`
	LocalID     string `json:"local_id"`
	Action      string `json:"action"`
	Error       string `json:"error"`
	StatusCode  int    `json:"status_code,omitempty"`
}

// Details counts a drain. Skipped operations are included in Success.
// Deferred operations belong to a record whose earlier operation failed in the
// same drain; they stay queued untouched.
type Details struct {
	Total    int              `json:"total"`
	Success  int              `json:"success"`
	Failed   int              `json:"failed"`
	Skipped  int              `json:"skipped"`
	Deferred int              `json:"deferred"`
	Errors   []OperationError `json:"errors,omitempty"`
}

type Result struct {
	Status       Outcome   `json:"status"`
	Message      string    `json:"message,omitempty"`
	Details      Details   `json:"details"`
	AuthRequired bool      `json:"auth_required,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

type FullSyncResult struct {
	Pulled int     `json:"pulled"`
	Push   *Result `json:"push"`
}

type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogPartial LogStatus = "partial"
	LogError   LogStatus = "error"
)

type LogEntry struct {
	ID        int64     `json:"id"`
	Status    LogStatus `json:"status"`
	Message   string    `json:"message"`
	Details   Details   `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

type StorageStats struct {
	TotalSurveys      int `json:"total_surveys"`
	UnsyncedSurveys   int `json:"unsynced_surveys"`
	PendingOperations int `json:"pending_operations"`
	TotalLogs         int `json:"total_logs"`
}

type StatusReport struct {
	Online            bool         `json:"online"`
	Syncing           bool         `json:"syncing"`
	AuthPaused        bool         `json:"auth_paused"`
	PendingOperations int          `json:"pending_operations"`
	LastSync          *time.Time   `json:"last_sync,omitempty"`
	Stats             StorageStats `json:"stats"`
	RecentLogs        []LogEntry   `json:"recent_logs"`
}

// SchemaBlob is a cached form schema or translation bundle.
type SchemaBlob struct {
	Name      string          `json:"name"`
	Version   string          `json:"version,omitempty"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}
