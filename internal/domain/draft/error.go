package draft

import "errors"

var (
	ErrEmptySurveyID = errors.New("draft requires a survey id")
	ErrNotFound      = errors.New("draft not found")
)
