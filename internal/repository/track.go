package repository

import (
	"context"

	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/pkg/xcontext"
)

type TrackRepository interface {
	Create(ctx context.Context, track *entity.Track) error
	GetByID(ctx context.Context, id string) (*entity.Track, error)
	GetByGameID(ctx context.Context, gameID string) (*entity.Track, error)
}

type trackRepository struct{}

func NewTrackRepository() *trackRepository {
	return &trackRepository{}
}

func (r *trackRepository) Create(ctx context.Context, track *entity.Track) error {
	return xcontext.DB(ctx).Create(track).Error
}

func (r *trackRepository) GetByID(ctx context.Context, id string) (*entity.Track, error) {
	var result entity.Track
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *trackRepository) GetByGameID(ctx context.Context, gameID string) (*entity.Track, error) {
	var result entity.Track
	if err := xcontext.DB(ctx).Take(&result, "game_id=?", gameID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}
