package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/internal/model"
	"github.com/trackpredict/backend/internal/repository"
	"github.com/trackpredict/backend/pkg/testutil"
	"github.com/trackpredict/backend/pkg/xcontext"
)

func newPredictionDomain() *predictionDomain {
	return NewPredictionDomain(
		repository.NewPredictionRepository(),
		repository.NewBetRepository(),
		repository.NewCommunityRepository(),
		repository.NewMemberRepository(),
		repository.NewPlayerRepository(),
		repository.NewTrackRepository(),
		repository.NewRecordRepository(),
	)
}

func Test_predictionDomain_Create(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Player1.ID)
	testutil.CreateFixtureDb(ctx)

	domain := newPredictionDomain()

	resp, err := domain.Create(ctx, &model.CreatePredictionRequest{
		CommunityHandle: testutil.Community1.Handle,
		TrackGameID:     testutil.Track1.GameID,
		Type:            "versus",
		EntryFee:        10,
		OpenFor:         time.Hour,
		RunsFor:         time.Hour,
		ProtagonistIDs:  []string{testutil.Player2.ID, testutil.Player3.ID},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)

	got, err := domain.Get(ctx, &model.GetPredictionRequest{ID: resp.ID})
	require.NoError(t, err)
	require.Equal(t, "versus", got.Prediction.Type)
	require.Equal(t, testutil.Community1.Handle, got.Prediction.CommunityHandle)
	require.Equal(t, testutil.Track1.Name, got.Prediction.TrackName)
	require.Len(t, got.Prediction.Protagonists, 2)
	require.False(t, got.Prediction.Processed)
}

func Test_predictionDomain_Create_automatedDefaults(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Player1.ID)
	testutil.CreateFixtureDb(ctx)

	domain := newPredictionDomain()

	// Entry fee and window fall back to the community's automated settings.
	resp, err := domain.Create(ctx, &model.CreatePredictionRequest{
		CommunityHandle: testutil.Community1.Handle,
		TrackGameID:     testutil.Track1.GameID,
		Type:            "guess",
		ProtagonistIDs:  []string{testutil.Player2.ID},
	})
	require.NoError(t, err)

	got, err := domain.Get(ctx, &model.GetPredictionRequest{ID: resp.ID})
	require.NoError(t, err)
	require.EqualValues(t, testutil.Community1.AutomatedAmount, got.Prediction.EntryFee)
	require.WithinDuration(t,
		time.Now().Add(testutil.Community1.AutomatedOpen), got.Prediction.ClosesAt, time.Minute)
	require.WithinDuration(t,
		time.Now().Add(testutil.Community1.AutomatedOpen+testutil.Community1.AutomatedEnd),
		got.Prediction.EndsAt, time.Minute)
}

func Test_predictionDomain_Create_invalid(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Player1.ID)
	testutil.CreateFixtureDb(ctx)

	domain := newPredictionDomain()

	// A guess prediction is about exactly one protagonist.
	_, err := domain.Create(ctx, &model.CreatePredictionRequest{
		CommunityHandle: testutil.Community1.Handle,
		TrackGameID:     testutil.Track1.GameID,
		Type:            "guess",
		EntryFee:        10,
		OpenFor:         time.Hour,
		RunsFor:         time.Hour,
		ProtagonistIDs:  []string{testutil.Player2.ID, testutil.Player3.ID},
	})
	require.Error(t, err)
	require.Equal(t, "A guess prediction needs exactly one protagonist", err.Error())

	_, err = domain.Create(ctx, &model.CreatePredictionRequest{
		CommunityHandle: testutil.Community1.Handle,
		TrackGameID:     testutil.Track1.GameID,
		Type:            "lottery",
		EntryFee:        10,
		OpenFor:         time.Hour,
		RunsFor:         time.Hour,
	})
	require.Error(t, err)
	require.Equal(t, "Invalid prediction type lottery", err.Error())
}

func Test_predictionDomain_Create_restrictedCommunity(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Player2.ID)
	testutil.CreateFixtureDb(ctx)

	memberRepo := repository.NewMemberRepository()
	require.NoError(t, memberRepo.Create(ctx, &entity.Member{
		PlayerID:    testutil.Player2.ID,
		CommunityID: testutil.Community2.ID,
		Points:      100,
	}))

	domain := newPredictionDomain()

	_, err := domain.Create(ctx, &model.CreatePredictionRequest{
		CommunityHandle: testutil.Community2.Handle,
		TrackGameID:     testutil.Track1.GameID,
		Type:            "raffle",
		EntryFee:        10,
		OpenFor:         time.Hour,
		RunsFor:         time.Hour,
	})
	require.Error(t, err)
	require.Equal(t, "Permission denied", err.Error())
}

func Test_predictionDomain_PlaceBet(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Player1.ID)
	testutil.CreateFixtureDb(ctx)

	domain := newPredictionDomain()

	resp, err := domain.Create(ctx, &model.CreatePredictionRequest{
		CommunityHandle: testutil.Community1.Handle,
		TrackGameID:     testutil.Track1.GameID,
		Type:            "versus",
		EntryFee:        10,
		OpenFor:         time.Hour,
		RunsFor:         time.Hour,
		ProtagonistIDs:  []string{testutil.Player1.ID, testutil.Player2.ID},
	})
	require.NoError(t, err)

	bettorCtx := xcontext.WithRequestUserID(ctx, testutil.Player2.ID)
	_, err = domain.PlaceBet(bettorCtx, &model.PlaceBetRequest{
		PredictionID:    resp.ID,
		OutcomePlayerID: testutil.Player1.ID,
		Points:          50,
	})
	require.NoError(t, err)

	// The stake leaves the balance at placement.
	member, err := repository.NewMemberRepository().Get(
		ctx, testutil.Player2.ID, testutil.Community1.ID)
	require.NoError(t, err)
	require.EqualValues(t, 950, member.Points)

	_, err = domain.PlaceBet(bettorCtx, &model.PlaceBetRequest{
		PredictionID:    resp.ID,
		OutcomePlayerID: testutil.Player1.ID,
		Points:          50,
	})
	require.Error(t, err)
	require.Equal(t, "Already placed a bet on this prediction", err.Error())

	_, err = domain.PlaceBet(xcontext.WithRequestUserID(ctx, testutil.Player3.ID),
		&model.PlaceBetRequest{
			PredictionID:    resp.ID,
			OutcomePlayerID: testutil.Player1.ID,
			Points:          2000,
		})
	require.Error(t, err)
	require.Equal(t, "Not enough points", err.Error())

	_, err = domain.PlaceBet(xcontext.WithRequestUserID(ctx, testutil.Player3.ID),
		&model.PlaceBetRequest{
			PredictionID:    resp.ID,
			OutcomePlayerID: testutil.Player3.ID,
			Points:          50,
		})
	require.Error(t, err)
	require.Equal(t, "Backed player is not a protagonist", err.Error())
}

func Test_predictionDomain_PlaceBet_closedWindow(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Player2.ID)
	testutil.CreateFixtureDb(ctx)

	prediction := testutil.SamplePrediction(ctx, "expired", entity.Versus)

	domain := newPredictionDomain()

	_, err := domain.PlaceBet(ctx, &model.PlaceBetRequest{
		PredictionID:    prediction.ID,
		OutcomePlayerID: testutil.Player1.ID,
		Points:          50,
	})
	require.Error(t, err)
	require.Equal(t, "The betting window is closed", err.Error())
}

func Test_predictionDomain_PlaceBet_raffle(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Player1.ID)
	testutil.CreateFixtureDb(ctx)

	domain := newPredictionDomain()

	resp, err := domain.Create(ctx, &model.CreatePredictionRequest{
		CommunityHandle: testutil.Community1.Handle,
		TrackGameID:     testutil.Track1.GameID,
		Type:            "raffle",
		EntryFee:        100,
		OpenFor:         time.Hour,
		RunsFor:         time.Hour,
	})
	require.NoError(t, err)

	_, err = domain.PlaceBet(xcontext.WithRequestUserID(ctx, testutil.Player2.ID),
		&model.PlaceBetRequest{PredictionID: resp.ID, Points: 10})
	require.NoError(t, err)

	// A raffle bettor joins the drawing pool.
	protagonists, err := repository.NewPredictionRepository().GetProtagonists(ctx, resp.ID)
	require.NoError(t, err)
	require.Len(t, protagonists, 1)
	require.Equal(t, testutil.Player2.ID, protagonists[0].PlayerID)

	bet, err := repository.NewBetRepository().Get(ctx, testutil.Player2.ID, resp.ID)
	require.NoError(t, err)
	require.True(t, bet.OutcomeTime.Valid)
	require.Equal(t, entity.RaffleOutcome, bet.OutcomeTime.Int64)
}

func Test_predictionDomain_SubmitRecord(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Player1.ID)
	testutil.CreateFixtureDb(ctx)

	domain := newPredictionDomain()

	achievedAt := time.Now().Add(-time.Minute)
	_, err := domain.SubmitRecord(ctx, &model.SubmitRecordRequest{
		PlayerGameID: testutil.Player2.GameID,
		TrackGameID:  testutil.Track1.GameID,
		Time:         95000,
		AchievedAt:   achievedAt,
	})
	require.NoError(t, err)

	recordRepo := repository.NewRecordRepository()
	record, err := recordRepo.GetFirstIngestedAfter(
		ctx, testutil.Player2.ID, testutil.Track1.ID, achievedAt.Add(-time.Hour))
	require.NoError(t, err)
	require.NotNil(t, record)
	require.EqualValues(t, 95000, record.Time)
	require.True(t, record.CheckedBy.Valid)
	require.Equal(t, testutil.Player1.ID, record.CheckedBy.String)

	played, err := recordRepo.HasActivityAfter(
		ctx, []string{testutil.Player2.ID}, testutil.Track1.ID, achievedAt.Add(-time.Hour))
	require.NoError(t, err)
	require.True(t, played)

	_, err = domain.SubmitRecord(ctx, &model.SubmitRecordRequest{
		PlayerGameID: "unknown",
		TrackGameID:  testutil.Track1.GameID,
		Time:         95000,
		AchievedAt:   achievedAt,
	})
	require.Error(t, err)
	require.Equal(t, "Not found player", err.Error())
}
