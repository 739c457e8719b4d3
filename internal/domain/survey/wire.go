package survey

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp decodes RFC 3339 as well as the naive ISO-8601 form the server
// emits for UTC datetimes.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t *Timestamp) Ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("timestamp: unsupported format %q", s)
}

// Wire is the survey body exchanged with the remote API. It has no local-only
// fields (local id, synced flags, draft flag, autosave stamp).
type Wire struct {
	SurveyID    string `json:"survey_id,omitempty"`
	PanchayatID string `json:"panchayat_id,omitempty"`
	VillageName string `json:"village_name,omitempty"`

	Modules

	CompletionPercentage int        `json:"completion_percentage"`
	IsComplete           bool       `json:"is_complete"`
	SyncStatus           SyncStatus `json:"sync_status,omitempty"`

	CreatedAt       Timestamp `json:"created_at,omitzero"`
	UpdatedAt       Timestamp `json:"updated_at,omitzero"`
	ClientTimestamp Timestamp `json:"client_timestamp,omitzero"`
	ServerTimestamp Timestamp `json:"server_timestamp,omitzero"`
}

func (s *Survey) ToWire() Wire {
	return Wire{
		SurveyID:             s.RemoteID(),
		PanchayatID:          s.PanchayatID,
		VillageName:          s.VillageName,
		Modules:              s.Modules,
		CompletionPercentage: s.CompletionPercentage,
		IsComplete:           s.IsComplete,
		CreatedAt:            NewTimestamp(s.CreatedAt),
		UpdatedAt:            NewTimestamp(s.UpdatedAt),
		ClientTimestamp:      NewTimestamp(s.ClientTimestamp),
	}
}

// ToSurvey builds a synced snapshot from a server body.
func (w Wire) ToSurvey() Survey {
	s := Survey{
		ServerID:             w.SurveyID,
		PanchayatID:          w.PanchayatID,
		VillageName:          w.VillageName,
		Modules:              w.Modules,
		CompletionPercentage: w.CompletionPercentage,
		IsComplete:           w.IsComplete,
		CreatedAt:            w.CreatedAt.Time,
		UpdatedAt:            w.UpdatedAt.Time,
		ClientTimestamp:      w.ClientTimestamp.Time,
		ServerTimestamp:      w.ServerTimestamp.Ptr(),
		Synced:               true,
		SyncStatus:           StatusSynced,
	}
	if w.SurveyID != "" {
		s.LocalID = LocalIDForServer(w.SurveyID)
	}
	return s
}
