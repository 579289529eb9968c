package repository

import (
	"context"
	"errors"

	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type MemberRepository interface {
	Create(ctx context.Context, member *entity.Member) error
	Get(ctx context.Context, playerID, communityID string) (*entity.Member, error)
	GetByCommunityID(ctx context.Context, communityID string) ([]entity.Member, error)
	IncreasePoints(ctx context.Context, playerID, communityID string, points int64) error
	DecreasePoints(ctx context.Context, playerID, communityID string, points int64) error
}

type memberRepository struct{}

func NewMemberRepository() *memberRepository {
	return &memberRepository{}
}

func (r *memberRepository) Create(ctx context.Context, member *entity.Member) error {
	return xcontext.DB(ctx).Create(member).Error
}

func (r *memberRepository) Get(ctx context.Context, playerID, communityID string) (*entity.Member, error) {
	var result entity.Member
	err := xcontext.DB(ctx).Where("player_id=? AND community_id=?", playerID, communityID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *memberRepository) GetByCommunityID(ctx context.Context, communityID string) ([]entity.Member, error) {
	var result []entity.Member
	if err := xcontext.DB(ctx).Find(&result, "community_id=?", communityID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *memberRepository) IncreasePoints(
	ctx context.Context, playerID, communityID string, points int64,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Member{}).
		Where("player_id=? AND community_id=?", playerID, communityID).
		Update("points", gorm.Expr("points+?", points))

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// DecreasePoints refuses to take the balance below zero: no row is updated
// when the member holds fewer points than requested.
func (r *memberRepository) DecreasePoints(
	ctx context.Context, playerID, communityID string, points int64,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Member{}).
		Where("player_id=? AND community_id=? AND points >= ?", playerID, communityID, points).
		Update("points", gorm.Expr("points-?", points))

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
