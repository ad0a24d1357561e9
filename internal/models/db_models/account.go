package db_models

import "github.com/google/uuid"

type Account struct {
	BaseModel
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	DisplayName  string
	Role         string

	TravelerTypeID *uuid.UUID
	Preferences    *Preferences `gorm:"serializer:json"`
}
