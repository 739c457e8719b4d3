package draft

import (
	"sampark/internal/domain/draft"
	"sampark/internal/domain/survey"
)

type getInput struct {
	ID string `path:"id" doc:"Survey local id or survey_id"`
}

type draftOutput struct {
	Body draft.Draft
}

type saveInput struct {
	ID   string `path:"id"`
	Body draft.Payload
}

type finalizeInput struct {
	ID string `path:"id"`
}

type finalizeOutput struct {
	Body finalizeResponse
}

type finalizeResponse struct {
	Status string         `json:"status" example:"Ok"`
	Survey *survey.Survey `json:"survey"`
}
