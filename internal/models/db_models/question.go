package db_models

import "github.com/google/uuid"

type Question struct {
	BaseModel
	Text        string `gorm:"check:trim(text) <> ''"`
	Order       int    `gorm:"column:question_order"`
	Category    string
	MultiSelect bool

	Options []QuestionOption
}

type QuestionOption struct {
	BaseModel
	QuestionID  uuid.UUID
	Text        string `gorm:"check:trim(text) <> ''"`
	Description string

	Scores []QuestionOptionScore
}

// QuestionOptionScore is the weight an option contributes to a traveler type.
// Edits to scores do not re-classify already completed tests; recorded
// verdicts keep the weights that were live at submission time.
type QuestionOptionScore struct {
	BaseModel
	QuestionOptionID uuid.UUID `gorm:"uniqueIndex:idx_option_type"`
	TravelerTypeID   uuid.UUID `gorm:"uniqueIndex:idx_option_type"`
	Score            int       `gorm:"check:score >= -10 AND score <= 10"`
}
