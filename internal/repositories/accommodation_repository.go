package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/utils"
)

type AccommodationRepository interface {
	Create(ctx context.Context, accommodation *db_models.Accommodation) error
	ListByItinerary(ctx context.Context, itineraryID uuid.UUID) ([]db_models.Accommodation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

func NewAccommodationRepository(db *gorm.DB) AccommodationRepository {
	return &accommodationRepository{db: db}
}

type accommodationRepository struct {
	db *gorm.DB
}

func (r *accommodationRepository) Create(ctx context.Context, accommodation *db_models.Accommodation) error {
	err := r.db.WithContext(ctx).Create(accommodation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.ErrConcurrency
		}
		return err
	}
	return nil
}

func (r *accommodationRepository) ListByItinerary(ctx context.Context, itineraryID uuid.UUID) ([]db_models.Accommodation, error) {
	var accommodations []db_models.Accommodation
	err := r.db.WithContext(ctx).
		Where("itinerary_id = ? AND status <> ?", itineraryID, db_models.AccommodationStatusDeleted).
		Find(&accommodations).Error
	if err != nil {
		return nil, err
	}
	return accommodations, nil
}

func (r *accommodationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).
		Model(&db_models.Accommodation{}).
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
