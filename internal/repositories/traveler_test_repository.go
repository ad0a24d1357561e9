package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/utils"
)

type TravelerTestRepository interface {
	ListQuestions(ctx context.Context) ([]db_models.Question, error)
	GetQuestionsByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.Question, error)
	GetScoresForOptions(ctx context.Context, optionIDs []uuid.UUID) ([]db_models.QuestionOptionScore, error)
	ListTravelerTypes(ctx context.Context) ([]db_models.TravelerType, error)
	GetTravelerType(ctx context.Context, id uuid.UUID) (*db_models.TravelerType, error)

	StartTest(ctx context.Context, userID uuid.UUID) (*db_models.UserTravelerTest, error)
	GetTest(ctx context.Context, testID uuid.UUID) (*db_models.UserTravelerTest, error)
	GetActiveAnswers(ctx context.Context, testID uuid.UUID) ([]db_models.UserAnswer, error)

	// CompleteTest atomically replaces the test's answers, records the
	// verdict and propagates it to the account.
	CompleteTest(ctx context.Context, testID uuid.UUID, optionIDs []uuid.UUID, winner uuid.UUID, prefs db_models.Preferences) error
}

func NewTravelerTestRepository(db *gorm.DB) TravelerTestRepository {
	return &travelerTestRepository{db: db}
}

type travelerTestRepository struct {
	db *gorm.DB
}

func (r *travelerTestRepository) ListQuestions(ctx context.Context) ([]db_models.Question, error) {
	var questions []db_models.Question
	err := r.db.WithContext(ctx).
		Preload("Options").
		Order("question_order asc").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *travelerTestRepository) GetQuestionsByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.Question, error) {
	var questions []db_models.Question
	err := r.db.WithContext(ctx).
		Preload("Options").
		Where("id IN ?", ids).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *travelerTestRepository) GetScoresForOptions(ctx context.Context, optionIDs []uuid.UUID) ([]db_models.QuestionOptionScore, error) {
	var scores []db_models.QuestionOptionScore
	err := r.db.WithContext(ctx).
		Where("question_option_id IN ?", optionIDs).
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *travelerTestRepository) ListTravelerTypes(ctx context.Context) ([]db_models.TravelerType, error) {
	var types []db_models.TravelerType
	if err := r.db.WithContext(ctx).Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *travelerTestRepository) GetTravelerType(ctx context.Context, id uuid.UUID) (*db_models.TravelerType, error) {
	var t db_models.TravelerType
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *travelerTestRepository) StartTest(ctx context.Context, userID uuid.UUID) (*db_models.UserTravelerTest, error) {
	var test *db_models.UserTravelerTest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&db_models.UserTravelerTest{}).
			Where("user_id = ? AND completed_at IS NULL", userID).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return utils.ErrConcurrency
		}

		test = &db_models.UserTravelerTest{
			UserID:    userID,
			StartedAt: time.Now().Unix(),
		}
		// The partial unique index on user_id catches the race the count
		// above cannot see under READ COMMITTED.
		if err := tx.Create(test).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.ErrConcurrency
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return test, nil
}

func (r *travelerTestRepository) GetTest(ctx context.Context, testID uuid.UUID) (*db_models.UserTravelerTest, error) {
	var test db_models.UserTravelerTest
	err := r.db.WithContext(ctx).Where("id = ?", testID).First(&test).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &test, nil
}

func (r *travelerTestRepository) GetActiveAnswers(ctx context.Context, testID uuid.UUID) ([]db_models.UserAnswer, error) {
	var answers []db_models.UserAnswer
	err := r.db.WithContext(ctx).
		Where("user_traveler_test_id = ?", testID).
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *travelerTestRepository) CompleteTest(ctx context.Context, testID uuid.UUID, optionIDs []uuid.UUID, winner uuid.UUID, prefs db_models.Preferences) error {
	now := time.Now().Unix()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var test db_models.UserTravelerTest
		if err := tx.Where("id = ?", testID).First(&test).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrNotFound
			}
			return err
		}

		// Guarded update: losing a completion race leaves zero rows.
		res := tx.Model(&db_models.UserTravelerTest{}).
			Where("id = ? AND completed_at IS NULL", testID).
			Updates(map[string]interface{}{
				"completed_at":     now,
				"traveler_type_id": winner,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrConcurrency
		}

		// Soft-invalidate the previous answer set, then insert the new one.
		if err := tx.Where("user_traveler_test_id = ?", testID).
			Delete(&db_models.UserAnswer{}).Error; err != nil {
			return err
		}
		answers := make([]db_models.UserAnswer, 0, len(optionIDs))
		for _, optionID := range optionIDs {
			answers = append(answers, db_models.UserAnswer{
				UserTravelerTestID: testID,
				QuestionOptionID:   optionID,
			})
		}
		if err := tx.Create(&answers).Error; err != nil {
			return err
		}

		return tx.Model(&db_models.Account{}).
			Where("id = ?", test.UserID).
			Updates(db_models.Account{TravelerTypeID: &winner, Preferences: &prefs}).Error
	})
}
