package survey

import (
	"time"
)

type SyncStatus string

const (
	StatusPending  SyncStatus = "pending"
	StatusSynced   SyncStatus = "synced"
	StatusConflict SyncStatus = "conflict"
	StatusFailed   SyncStatus = "failed"
)

// ModuleData is one survey module: field name to a JSON scalar.
type ModuleData map[string]any

// Module names as they appear on the wire.
const (
	ModuleBasicInfo       = "basic_info"
	ModuleInfrastructure  = "infrastructure"
	ModuleSanitation      = "sanitation"
	ModuleConnectivity    = "connectivity"
	ModuleLandForest      = "land_forest"
	ModuleElectricity     = "electricity"
	ModuleWasteManagement = "waste_management"
)

// ModuleNames lists survey modules in form order.
var ModuleNames = []string{
	ModuleBasicInfo,
	ModuleInfrastructure,
	ModuleSanitation,
	ModuleConnectivity,
	ModuleLandForest,
	ModuleElectricity,
	ModuleWasteManagement,
}

type Modules struct {
	BasicInfo       ModuleData `json:"basic_info,omitempty"`
	Infrastructure  ModuleData `json:"infrastructure,omitempty"`
	Sanitation      ModuleData `json:"sanitation,omitempty"`
	Connectivity    ModuleData `json:"connectivity,omitempty"`
	LandForest      ModuleData `json:"land_forest,omitempty"`
	Electricity     ModuleData `json:"electricity,omitempty"`
	WasteManagement ModuleData `json:"waste_management,omitempty"`
}

// ByName returns modules keyed by wire name, skipping empty ones.
func (m Modules) ByName() map[string]ModuleData {
	out := make(map[string]ModuleData, len(ModuleNames))
	for _, name := range ModuleNames {
		if data := m.get(name); data != nil {
			out[name] = data
		}
	}
	return out
}

// Merge overrides every module present in patch.
func (m Modules) Merge(patch Modules) Modules {
	for _, name := range ModuleNames {
		if data := patch.get(name); data != nil {
			m.set(name, data)
		}
	}
	return m
}

func (m Modules) get(name string) ModuleData {
	switch name {
	case ModuleBasicInfo:
		return m.BasicInfo
	case ModuleInfrastructure:
		return m.Infrastructure
	case ModuleSanitation:
		return m.Sanitation
	case ModuleConnectivity:
		return m.Connectivity
	case ModuleLandForest:
		return m.LandForest
	case ModuleElectricity:
		return m.Electricity
	case ModuleWasteManagement:
		return m.WasteManagement
	}
	return nil
}

func (m *Modules) set(name string, data ModuleData) {
	switch name {
	case ModuleBasicInfo:
		m.BasicInfo = data
	case ModuleInfrastructure:
		m.Infrastructure = data
	case ModuleSanitation:
		m.Sanitation = data
	case ModuleConnectivity:
		m.Connectivity = data
	case ModuleLandForest:
		m.LandForest = data
	case ModuleElectricity:
		m.Electricity = data
	case ModuleWasteManagement:
		m.WasteManagement = data
	}
}

// Survey is the local snapshot of a panchayat survey.
//
// LocalID is stable for the record's lifetime. ServerID stays empty until the
// server acknowledges a create. ClientSurveyID is minted once at creation and
// offered as survey_id on every create attempt. StorageKey is the store's own
// primary key.
type Survey struct {
	StorageKey     int64  `json:"-"`
	ServerID       string `json:"survey_id,omitempty"`
	ClientSurveyID string `json:"client_survey_id,omitempty"`
	LocalID        string `json:"local_id,omitempty"`
	PanchayatID    string `json:"panchayat_id,omitempty"`
	VillageName    string `json:"village_name,omitempty"`

	Modules

	CompletionPercentage int  `json:"completion_percentage"`
	IsComplete           bool `json:"is_complete"`

	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ClientTimestamp time.Time  `json:"client_timestamp"`
	ServerTimestamp *time.Time `json:"server_timestamp,omitempty"`

	Synced     bool       `json:"synced"`
	SyncedAt   *time.Time `json:"synced_at,omitempty"`
	SyncStatus SyncStatus `json:"sync_status,omitempty"`
	IsDraft    bool       `json:"is_draft"`

	// Deleted marks a tombstone waiting for its delete operation to reach the server.
	Deleted bool `json:"-"`
}

// Key is the identity used to pair local and remote copies.
func (s *Survey) Key() string {
	if id := s.RemoteID(); id != "" {
		return id
	}
	return s.LocalID
}

// RemoteID is the survey_id the server knows or will know the record by.
func (s *Survey) RemoteID() string {
	if s.ServerID != "" {
		return s.ServerID
	}
	return s.ClientSurveyID
}

// Acknowledged reports whether the server has confirmed a create of the record.
func (s *Survey) Acknowledged() bool {
	return s.ServerID != ""
}

// SetCompletion keeps IsComplete consistent with the percentage.
func (s *Survey) SetCompletion(pct int) {
	s.CompletionPercentage = pct
	s.IsComplete = pct == 100
}

func (s *Survey) Validate() error {
	if s.CompletionPercentage < 0 || s.CompletionPercentage > 100 {
		return ErrInvalidCompletion
	}
	if s.IsComplete != (s.CompletionPercentage == 100) {
		return ErrInvalidCompletion
	}
	return nil
}

// Filter is an equality predicate over indexed survey fields.
type Filter struct {
	PanchayatID string
	ServerID    string
	Synced      *bool
	// IncludeDeleted also returns tombstones waiting for their delete to sync.
	IncludeDeleted bool
}

// Input carries user edits. Zero values leave the stored field untouched on update.
type Input struct {
	PanchayatID          string     `json:"panchayat_id,omitempty"`
	VillageName          string     `json:"village_name,omitempty"`
	Modules                         // flattened module payloads
	CompletionPercentage *int       `json:"completion_percentage,omitempty"`
	IsDraft              *bool      `json:"is_draft,omitempty"`
	ClientTimestamp      *time.Time `json:"client_timestamp,omitempty"`
}
