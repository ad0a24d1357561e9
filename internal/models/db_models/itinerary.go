package db_models

import (
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

const (
	ItineraryStatusDraft     = "draft"
	ItineraryStatusConfirmed = "confirmed"

	VisibilityPrivate  = "private"
	VisibilityUnlisted = "unlisted"
	VisibilityPublic   = "public"
)

type Itinerary struct {
	BaseModel
	UserID    *uuid.UUID
	SessionID *uuid.UUID
	Slug      *string `gorm:"uniqueIndex"`
	TripName  string
	Status    string `gorm:"default:draft"`
	Visibility string `gorm:"default:private"`

	DetailsItinerary Trip `gorm:"serializer:json"`

	// Free-floating reference, no FK in the live schema.
	TransportationID *uuid.UUID

	Accommodations []Accommodation
}

const (
	AccommodationStatusDraft     = "draft"
	AccommodationStatusConfirmed = "confirmed"
	AccommodationStatusDeleted   = "deleted"
)

type Accommodation struct {
	BaseModel
	ItineraryID uuid.UUID `gorm:"uniqueIndex:idx_itinerary_url"`
	City        string
	URL         string `gorm:"uniqueIndex:idx_itinerary_url"`
	Provider    string
	Status      string   `gorm:"default:draft"`
	ImgURLs     []string `gorm:"serializer:json"`
}

// ItineraryEmbedding stores a vector of the trip summary for similar-trip
// lookups.
type ItineraryEmbedding struct {
	BaseModel
	ItineraryID uuid.UUID       `gorm:"uniqueIndex"`
	Embedding   pgvector.Vector `gorm:"type:vector(1536)"`
}
