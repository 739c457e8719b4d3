package schema

import "sampark/internal/domain/sync"

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Schemas []sync.SchemaBlob `json:"schemas"`
}

type getInput struct {
	Name string `path:"name" example:"basic_info"`
}

type getOutput struct {
	Body sync.SchemaBlob
}
