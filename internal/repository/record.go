package repository

import (
	"context"
	"errors"
	"time"

	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecordRepository interface {
	Create(ctx context.Context, records []entity.RaceRecord) error

	// GetFirstIngestedAfter returns the earliest record of a player on a
	// track that was ingested strictly after the given time, or nil when no
	// such record exists.
	GetFirstIngestedAfter(
		ctx context.Context, playerID, trackID string, after time.Time,
	) (*entity.RaceRecord, error)

	UpsertActivity(ctx context.Context, playerID, trackID string, playedAt time.Time) error

	// HasActivityAfter reports whether any of the players played the track
	// strictly after the given time.
	HasActivityAfter(
		ctx context.Context, playerIDs []string, trackID string, after time.Time,
	) (bool, error)
}

type recordRepository struct{}

func NewRecordRepository() *recordRepository {
	return &recordRepository{}
}

func (r *recordRepository) Create(ctx context.Context, records []entity.RaceRecord) error {
	if len(records) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Create(&records).Error
}

func (r *recordRepository) GetFirstIngestedAfter(
	ctx context.Context, playerID, trackID string, after time.Time,
) (*entity.RaceRecord, error) {
	var result entity.RaceRecord
	err := xcontext.DB(ctx).
		Where("player_id=? AND track_id=? AND created_at > ?", playerID, trackID, after).
		Order("created_at ASC").
		Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &result, nil
}

func (r *recordRepository) UpsertActivity(
	ctx context.Context, playerID, trackID string, playedAt time.Time,
) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "player_id"},
				{Name: "track_id"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_played_at": playedAt,
			}),
		}).Create(&entity.PlayActivity{
		PlayerID:     playerID,
		TrackID:      trackID,
		LastPlayedAt: playedAt,
	}).Error
}

func (r *recordRepository) HasActivityAfter(
	ctx context.Context, playerIDs []string, trackID string, after time.Time,
) (bool, error) {
	if len(playerIDs) == 0 {
		return false, nil
	}

	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.PlayActivity{}).
		Where("player_id IN (?) AND track_id=? AND last_played_at > ?", playerIDs, trackID, after).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
