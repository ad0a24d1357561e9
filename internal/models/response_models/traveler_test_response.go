package response_models

import "rumbo/internal/models/db_models"

type QuestionOptionResponse struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
}

type QuestionResponse struct {
	ID          string                   `json:"id"`
	Text        string                   `json:"text"`
	Order       int                      `json:"order"`
	Category    string                   `json:"category,omitempty"`
	MultiSelect bool                     `json:"multi_select"`
	Options     []QuestionOptionResponse `json:"options"`
}

type TravelerTypeResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Preferences db_models.Preferences `json:"preferences"`
}

type TravelerTestResponse struct {
	TestID       string               `json:"test_id"`
	CompletedAt  int64                `json:"completed_at"`
	TravelerType TravelerTypeResponse `json:"traveler_type"`
	Scores       map[string]int       `json:"scores"`
}

type StartedTestResponse struct {
	TestID    string `json:"test_id"`
	StartedAt int64  `json:"started_at"`
}
