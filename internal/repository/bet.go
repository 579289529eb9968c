package repository

import (
	"context"

	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/pkg/xcontext"
)

type BetRepository interface {
	Create(ctx context.Context, bet *entity.Bet) error
	Get(ctx context.Context, playerID, predictionID string) (*entity.Bet, error)
	GetByPredictionID(ctx context.Context, predictionID string) ([]entity.Bet, error)
}

type betRepository struct{}

func NewBetRepository() *betRepository {
	return &betRepository{}
}

func (r *betRepository) Create(ctx context.Context, bet *entity.Bet) error {
	return xcontext.DB(ctx).Create(bet).Error
}

func (r *betRepository) Get(ctx context.Context, playerID, predictionID string) (*entity.Bet, error) {
	var result entity.Bet
	err := xcontext.DB(ctx).Where("player_id=? AND prediction_id=?", playerID, predictionID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *betRepository) GetByPredictionID(
	ctx context.Context, predictionID string,
) ([]entity.Bet, error) {
	var result []entity.Bet
	err := xcontext.DB(ctx).Where("prediction_id=?", predictionID).
		Order("created_at ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
