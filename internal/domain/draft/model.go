package draft

import (
	"time"

	"sampark/internal/domain/survey"
)

// Draft is the autosaved form state of a survey, kept apart from the record itself.
type Draft struct {
	SurveyID             string    `json:"survey_id"`
	VillageName          string    `json:"village_name,omitempty"`
	CompletionPercentage *int      `json:"completion_percentage,omitempty"`
	LastAutoSave         time.Time `json:"last_auto_save"`

	survey.Modules
}

// Payload is what the form hands over on every autosave tick.
type Payload struct {
	VillageName          string `json:"village_name,omitempty"`
	CompletionPercentage *int   `json:"completion_percentage,omitempty"`

	survey.Modules
}

// Input turns the draft into a regular survey edit.
func (d *Draft) Input() survey.Input {
	final := false
	return survey.Input{
		VillageName:          d.VillageName,
		Modules:              d.Modules,
		CompletionPercentage: d.CompletionPercentage,
		IsDraft:              &final,
	}
}
