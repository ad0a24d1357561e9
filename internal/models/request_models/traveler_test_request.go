package request_models

import "encoding/json"

// AnswerSelection accepts either a single option id or a list of option ids,
// so single- and multi-select questions share one submission shape.
type AnswerSelection []string

func (a *AnswerSelection) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = AnswerSelection{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*a = many
	return nil
}

type SubmitTestRequest struct {
	Answers map[string]AnswerSelection `json:"answers" binding:"required"`
}

type StartTestRequest struct {
	UserID string `json:"user_id"`
}
