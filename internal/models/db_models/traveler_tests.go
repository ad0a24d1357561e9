package db_models

import "github.com/google/uuid"

type UserTravelerTest struct {
	BaseModel
	// Partial unique index: at most one active test per user, enforced by
	// the database rather than a count-then-insert read.
	UserID         uuid.UUID  `gorm:"uniqueIndex:idx_active_test_per_user,where:completed_at IS NULL AND deleted_at IS NULL"`
	TravelerTypeID *uuid.UUID `gorm:"constraint:OnDelete:RESTRICT"`
	StartedAt      int64
	CompletedAt    *int64 `gorm:"check:completed_at IS NULL OR completed_at >= started_at"`

	Answers []UserAnswer
}

type UserAnswer struct {
	BaseModel
	UserTravelerTestID uuid.UUID
	QuestionOptionID   uuid.UUID
}
