package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/utils"
)

type SimilarItinerary struct {
	ItineraryID uuid.UUID
	TripName    string
	Distance    float64
}

type ItineraryRepository interface {
	Create(ctx context.Context, itinerary *db_models.Itinerary) error
	GetByID(ctx context.Context, id uuid.UUID) (*db_models.Itinerary, error)
	UpdateTrip(ctx context.Context, id uuid.UUID, trip db_models.Trip) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	SaveEmbedding(ctx context.Context, itineraryID uuid.UUID, embedding pgvector.Vector) error
	FindSimilar(ctx context.Context, embedding pgvector.Vector, limit int) ([]SimilarItinerary, error)
}

func NewItineraryRepository(db *gorm.DB) ItineraryRepository {
	return &itineraryRepository{db: db}
}

type itineraryRepository struct {
	db *gorm.DB
}

func (r *itineraryRepository) Create(ctx context.Context, itinerary *db_models.Itinerary) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(itinerary).Error
	})
}

func (r *itineraryRepository) GetByID(ctx context.Context, id uuid.UUID) (*db_models.Itinerary, error) {
	var itinerary db_models.Itinerary
	err := r.db.WithContext(ctx).
		Preload("Accommodations").
		Where("id = ?", id).
		First(&itinerary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &itinerary, nil
}

func (r *itineraryRepository) UpdateTrip(ctx context.Context, id uuid.UUID, trip db_models.Trip) error {
	res := r.db.WithContext(ctx).
		Model(&db_models.Itinerary{}).
		Where("id = ?", id).
		Update("details_itinerary", trip)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *itineraryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).
		Model(&db_models.Itinerary{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *itineraryRepository) SaveEmbedding(ctx context.Context, itineraryID uuid.UUID, embedding pgvector.Vector) error {
	existing := db_models.ItineraryEmbedding{}
	err := r.db.WithContext(ctx).Where("itinerary_id = ?", itineraryID).First(&existing).Error
	if err == nil {
		return r.db.WithContext(ctx).
			Model(&existing).
			Update("embedding", embedding).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.WithContext(ctx).Create(&db_models.ItineraryEmbedding{
		ItineraryID: itineraryID,
		Embedding:   embedding,
	}).Error
}

func (r *itineraryRepository) FindSimilar(ctx context.Context, embedding pgvector.Vector, limit int) ([]SimilarItinerary, error) {
	if limit <= 0 {
		limit = 5
	}

	var rows []SimilarItinerary
	err := r.db.WithContext(ctx).Raw(`
		SELECT i.id AS itinerary_id, i.trip_name, ie.embedding <-> ? AS distance
		FROM itinerary_embeddings ie
		JOIN itineraries i ON i.id = ie.itinerary_id AND i.deleted_at IS NULL
		WHERE i.visibility IN ('unlisted', 'public')
		ORDER BY distance ASC
		LIMIT ?`, embedding, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
