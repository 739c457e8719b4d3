package survey

import (
	"sampark/internal/domain/survey"
)

type listInput struct {
	PanchayatID string `query:"panchayat_id" doc:"Only surveys of this panchayat"`
	Synced      string `query:"synced" enum:"true,false" doc:"Filter by local sync flag"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Surveys []survey.Merged `json:"surveys"`
	Count   int             `json:"count"`
}

type findInput struct {
	ID string `path:"id" doc:"Local id or server survey_id"`
}

type findOutput struct {
	Body survey.Merged
}

type createInput struct {
	Body survey.Input
}

type updateInput struct {
	ID   string `path:"id" doc:"Local id or server survey_id"`
	Body survey.Input
}

type output struct {
	Body response
}

type response struct {
	Status string         `json:"status" example:"Ok"`
	Survey *survey.Survey `json:"survey,omitempty"`
}

type deleteInput struct {
	ID string `path:"id"`
}

type deleteOutput struct {
	Body deleteResponse
}

type deleteResponse struct {
	Status  string `json:"status" example:"Ok"`
	Message string `json:"message"`
}
