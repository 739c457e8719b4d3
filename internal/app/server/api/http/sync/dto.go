package sync

import (
	"sampark/internal/domain/sync"
)

type resultOutput struct {
	Body sync.Result
}

type fullOutput struct {
	Body sync.FullSyncResult
}

type batchInput struct {
	Body batchRequest
}

type batchRequest struct {
	IDs []string `json:"ids,omitempty" doc:"Surveys to send; empty sends every unsynced survey"`
}

type batchOutput struct {
	Body sync.BatchResponse
}

type statusOutput struct {
	Body sync.StatusReport
}

type logsInput struct {
	Limit int `query:"limit" default:"50" minimum:"1" maximum:"500"`
}

type logsOutput struct {
	Body logsResponse
}

type logsResponse struct {
	Logs []sync.LogEntry `json:"logs"`
}

type clearOutput struct {
	Body clearResponse
}

type clearResponse struct {
	Status  string `json:"status" example:"Ok"`
	Removed int64  `json:"removed"`
}

type eventsInput struct{}
