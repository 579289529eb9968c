package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/internal/repository"
	"github.com/trackpredict/backend/pkg/testutil"
	"gorm.io/gorm"
)

func Test_predictionRepository_MarkProcessed(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	predictionRepo := repository.NewPredictionRepository()
	prediction := testutil.SamplePrediction(ctx, "prediction1", entity.Versus)

	require.NoError(t, predictionRepo.MarkProcessed(ctx, prediction.ID))

	// The second flip must fail, it is the guard against double payouts.
	err := predictionRepo.MarkProcessed(ctx, prediction.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = predictionRepo.MarkProcessed(ctx, "never-existed")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_predictionRepository_GetExpired(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	predictionRepo := repository.NewPredictionRepository()

	expired := testutil.SamplePrediction(ctx, "expired", entity.Versus)
	processed := testutil.SamplePrediction(ctx, "processed", entity.Guess)
	require.NoError(t, predictionRepo.MarkProcessed(ctx, processed.ID))

	require.NoError(t, predictionRepo.Create(ctx, &entity.Prediction{
		Base:        entity.Base{ID: "running"},
		CommunityID: testutil.Community1.ID,
		TrackID:     testutil.Track1.ID,
		Type:        entity.Versus,
		EntryFee:    10,
		ClosesAt:    time.Now().Add(time.Hour),
		EndsAt:      time.Now().Add(2 * time.Hour),
	}))

	pending, err := predictionRepo.GetExpired(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, expired.ID, pending[0].ID)
}

func Test_memberRepository_DecreasePoints(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	memberRepo := repository.NewMemberRepository()

	require.NoError(t, memberRepo.DecreasePoints(
		ctx, testutil.Player1.ID, testutil.Community1.ID, 400))

	// The balance is 600 now, an oversized stake must not go through.
	err := memberRepo.DecreasePoints(ctx, testutil.Player1.ID, testutil.Community1.ID, 700)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	member, err := memberRepo.Get(ctx, testutil.Player1.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.EqualValues(t, 600, member.Points)
}
