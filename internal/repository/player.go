package repository

import (
	"context"

	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/pkg/xcontext"
)

type PlayerRepository interface {
	Create(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Player, error)
	GetByGameID(ctx context.Context, gameID string) (*entity.Player, error)
}

type playerRepository struct{}

func NewPlayerRepository() *playerRepository {
	return &playerRepository{}
}

func (r *playerRepository) Create(ctx context.Context, player *entity.Player) error {
	return xcontext.DB(ctx).Create(player).Error
}

func (r *playerRepository) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	var result entity.Player
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *playerRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Player, error) {
	var result []entity.Player
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *playerRepository) GetByGameID(ctx context.Context, gameID string) (*entity.Player, error) {
	var result entity.Player
	if err := xcontext.DB(ctx).Take(&result, "game_id=?", gameID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}
