package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PredictionRepository interface {
	Create(ctx context.Context, prediction *entity.Prediction) error
	GetByID(ctx context.Context, id string) (*entity.Prediction, error)
	GetExpired(ctx context.Context, now time.Time) ([]entity.Prediction, error)
	MarkProcessed(ctx context.Context, id string) error

	CreateProtagonist(ctx context.Context, protagonist *entity.Protagonist) error
	GetProtagonists(ctx context.Context, predictionID string) ([]entity.Protagonist, error)
	SetProtagonistResult(ctx context.Context, predictionID, playerID string, result int64) error
}

type predictionRepository struct{}

func NewPredictionRepository() *predictionRepository {
	return &predictionRepository{}
}

func (r *predictionRepository) Create(ctx context.Context, prediction *entity.Prediction) error {
	return xcontext.DB(ctx).Create(prediction).Error
}

func (r *predictionRepository) GetByID(ctx context.Context, id string) (*entity.Prediction, error) {
	var result entity.Prediction
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *predictionRepository) GetExpired(
	ctx context.Context, now time.Time,
) ([]entity.Prediction, error) {
	var result []entity.Prediction
	err := xcontext.DB(ctx).
		Where("ends_at <= ? AND processed = ?", now, false).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// MarkProcessed flips the processed flag exactly once. It returns
// gorm.ErrRecordNotFound when the prediction is unknown or already
// processed, which is the guard against paying out twice.
func (r *predictionRepository) MarkProcessed(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Prediction{}).
		Where("id=? AND processed=?", id, false).
		Update("processed", true)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *predictionRepository) CreateProtagonist(
	ctx context.Context, protagonist *entity.Protagonist,
) error {
	return xcontext.DB(ctx).Create(protagonist).Error
}

func (r *predictionRepository) GetProtagonists(
	ctx context.Context, predictionID string,
) ([]entity.Protagonist, error) {
	var result []entity.Protagonist
	if err := xcontext.DB(ctx).Find(&result, "prediction_id=?", predictionID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *predictionRepository) SetProtagonistResult(
	ctx context.Context, predictionID, playerID string, result int64,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Protagonist{}).
		Where("prediction_id=? AND player_id=?", predictionID, playerID).
		Update("result", sql.NullInt64{Int64: result, Valid: true})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
