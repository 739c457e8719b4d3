package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"sampark/internal/domain/survey"
	"sampark/internal/infrastructure/storage"
)

const surveyColumns = `id, local_id, survey_id, client_survey_id, panchayat_id, village_name, modules,
	completion_percentage, is_complete, is_draft, synced, synced_at, sync_status,
	deleted, created_at, updated_at, client_timestamp, server_timestamp`

type surveyRow struct {
	ID                   int64          `db:"id"`
	LocalID              string         `db:"local_id"`
	SurveyID             sql.NullString `db:"survey_id"`
	ClientSurveyID       sql.NullString `db:"client_survey_id"`
	PanchayatID          string         `db:"panchayat_id"`
	VillageName          string         `db:"village_name"`
	Modules              string         `db:"modules"`
	CompletionPercentage int            `db:"completion_percentage"`
	IsComplete           bool           `db:"is_complete"`
	IsDraft              bool           `db:"is_draft"`
	Synced               bool           `db:"synced"`
	SyncedAt             sql.NullTime   `db:"synced_at"`
	SyncStatus           string         `db:"sync_status"`
	Deleted              bool           `db:"deleted"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
	ClientTimestamp      time.Time      `db:"client_timestamp"`
	ServerTimestamp      sql.NullTime   `db:"server_timestamp"`
}

func toSurveyRow(s *survey.Survey) (*surveyRow, error) {
	modules, err := encodeModules(s.Modules)
	if err != nil {
		return nil, err
	}

	status := s.SyncStatus
	if status == "" {
		status = survey.StatusPending
	}

	return &surveyRow{
		ID:                   s.StorageKey,
		LocalID:              s.LocalID,
		SurveyID:             nullString(s.ServerID),
		ClientSurveyID:       nullString(s.ClientSurveyID),
		PanchayatID:          s.PanchayatID,
		VillageName:          s.VillageName,
		Modules:              modules,
		CompletionPercentage: s.CompletionPercentage,
		IsComplete:           s.IsComplete,
		IsDraft:              s.IsDraft,
		Synced:               s.Synced,
		SyncedAt:             nullTime(s.SyncedAt),
		SyncStatus:           string(status),
		Deleted:              s.Deleted,
		CreatedAt:            s.CreatedAt.UTC(),
		UpdatedAt:            s.UpdatedAt.UTC(),
		ClientTimestamp:      s.ClientTimestamp.UTC(),
		ServerTimestamp:      nullTime(s.ServerTimestamp),
	}, nil
}

func (r *surveyRow) toSurvey() (*survey.Survey, error) {
	var modules survey.Modules
	if r.Modules != "" {
		if err := json.Unmarshal([]byte(r.Modules), &modules); err != nil {
			return nil, fmt.Errorf("%w: survey %s modules: %v", storage.ErrSerialization, r.LocalID, err)
		}
	}

	s := &survey.Survey{
		StorageKey:           r.ID,
		ServerID:             r.SurveyID.String,
		ClientSurveyID:       r.ClientSurveyID.String,
		LocalID:              r.LocalID,
		PanchayatID:          r.PanchayatID,
		VillageName:          r.VillageName,
		Modules:              modules,
		CompletionPercentage: r.CompletionPercentage,
		IsComplete:           r.IsComplete,
		IsDraft:              r.IsDraft,
		Synced:               r.Synced,
		SyncStatus:           survey.SyncStatus(r.SyncStatus),
		Deleted:              r.Deleted,
		CreatedAt:            r.CreatedAt.UTC(),
		UpdatedAt:            r.UpdatedAt.UTC(),
		ClientTimestamp:      r.ClientTimestamp.UTC(),
	}
	if r.SyncedAt.Valid {
		t := r.SyncedAt.Time.UTC()
		s.SyncedAt = &t
	}
	if r.ServerTimestamp.Valid {
		t := r.ServerTimestamp.Time.UTC()
		s.ServerTimestamp = &t
	}
	return s, nil
}

func toSurveys(rows []surveyRow) ([]survey.Survey, error) {
	out := make([]survey.Survey, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toSurvey()
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

// encodeModules rejects anything but flat JSON scalars inside a module.
func encodeModules(m survey.Modules) (string, error) {
	for name, data := range m.ByName() {
		for field, v := range data {
			if !isScalar(v) {
				return "", fmt.Errorf("%w: %s.%s holds %T", storage.ErrSerialization, name, field, v)
			}
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrSerialization, err)
	}
	return string(b), nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, json.Number,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
