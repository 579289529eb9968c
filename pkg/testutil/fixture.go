package testutil

import (
	"context"
	"time"

	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/internal/repository"
)

var (
	Player1 = entity.Player{
		Base:   entity.Base{ID: "player1"},
		GameID: "aaaaaaaa-0000-0000-0000-000000000001",
		Name:   "speedster",
		Secret: "secret-player1",
	}

	Player2 = entity.Player{
		Base:   entity.Base{ID: "player2"},
		GameID: "aaaaaaaa-0000-0000-0000-000000000002",
		Name:   "drifter",
		Secret: "secret-player2",
	}

	Player3 = entity.Player{
		Base:   entity.Base{ID: "player3"},
		GameID: "aaaaaaaa-0000-0000-0000-000000000003",
		Name:   "backmarker",
		Secret: "secret-player3",
	}

	Track1 = entity.Track{
		Base:   entity.Base{ID: "track1"},
		GameID: "bbbbbbbb-0000-0000-0000-000000000001",
		Name:   "Summer 2023 - 01",
	}

	Community1 = entity.Community{
		Base:       entity.Base{ID: "community1"},
		Handle:     "midnight_league",
		Name:       "Midnight League",
		PointsName: "credits",
		Visibility: true,

		AutomatedAmount:    25,
		AutomatedFrequency: 24 * time.Hour,
		AutomatedOpen:      time.Hour,
		AutomatedEnd:       2 * time.Hour,
	}

	// Community2 is restricted: only admins may create predictions.
	Community2 = entity.Community{
		Base:       entity.Base{ID: "community2"},
		Handle:     "invite_only",
		Name:       "Invite Only",
		PointsName: "points",
		Restricted: true,
		Visibility: false,
	}

	Member1 = entity.Member{
		PlayerID:    Player1.ID,
		CommunityID: Community1.ID,
		Points:      1000,
		IsAdmin:     true,
	}

	Member2 = entity.Member{
		PlayerID:    Player2.ID,
		CommunityID: Community1.ID,
		Points:      1000,
	}

	Member3 = entity.Member{
		PlayerID:    Player3.ID,
		CommunityID: Community1.ID,
		Points:      1000,
	}
)

func CreateFixtureDb(ctx context.Context) {
	insertPlayers(ctx)
	insertTracks(ctx)
	insertCommunities(ctx)
	insertMembers(ctx)
}

func insertPlayers(ctx context.Context) {
	playerRepo := repository.NewPlayerRepository()

	for _, player := range []entity.Player{Player1, Player2, Player3} {
		player := player
		if err := playerRepo.Create(ctx, &player); err != nil {
			panic(err)
		}
	}
}

func insertTracks(ctx context.Context) {
	trackRepo := repository.NewTrackRepository()

	track := Track1
	if err := trackRepo.Create(ctx, &track); err != nil {
		panic(err)
	}
}

func insertCommunities(ctx context.Context) {
	communityRepo := repository.NewCommunityRepository()

	for _, community := range []entity.Community{Community1, Community2} {
		community := community
		if err := communityRepo.Create(ctx, &community); err != nil {
			panic(err)
		}
	}
}

func insertMembers(ctx context.Context) {
	memberRepo := repository.NewMemberRepository()

	for _, member := range []entity.Member{Member1, Member2, Member3} {
		member := member
		if err := memberRepo.Create(ctx, &member); err != nil {
			panic(err)
		}
	}
}

// SamplePrediction inserts a prediction that expired in the past, ready for
// settlement.
func SamplePrediction(ctx context.Context, id string, typ entity.PredictionType) entity.Prediction {
	predictionRepo := repository.NewPredictionRepository()

	prediction := entity.Prediction{
		Base:        entity.Base{ID: id},
		CommunityID: Community1.ID,
		TrackID:     Track1.ID,
		Type:        typ,
		EntryFee:    50,
		ClosesAt:    time.Now().Add(-2 * time.Hour),
		EndsAt:      time.Now().Add(-time.Hour),
	}

	if err := predictionRepo.Create(ctx, &prediction); err != nil {
		panic(err)
	}

	return prediction
}
