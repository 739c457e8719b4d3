package sync

import (
	"encoding/json"

	"sampark/internal/domain/survey"
)

type BatchRequest struct {
	Surveys []survey.Wire `json:"surveys"`
}

type BatchResponse struct {
	Status      string   `json:"status"`
	SyncedCount int      `json:"synced_count"`
	FailedCount int      `json:"failed_count"`
	Conflicts   []string `json:"conflicts"`
	Message     string   `json:"message"`
}

type SchemaEntry struct {
	SchemaID  string           `json:"schema_id"`
	Version   string           `json:"version"`
	Schema    json.RawMessage  `json:"schema"`
	UpdatedAt survey.Timestamp `json:"updated_at"`
}

type SchemasResponse struct {
	Schemas     map[string]SchemaEntry `json:"schemas"`
	Version     string                 `json:"version"`
	LastUpdated *survey.Timestamp      `json:"last_updated"`
}
