package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/internal/model"
	"github.com/trackpredict/backend/internal/repository"
	"github.com/trackpredict/backend/pkg/enum"
	"github.com/trackpredict/backend/pkg/errorx"
	"github.com/trackpredict/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PredictionDomain interface {
	Create(context.Context, *model.CreatePredictionRequest) (*model.CreatePredictionResponse, error)
	Get(context.Context, *model.GetPredictionRequest) (*model.GetPredictionResponse, error)
	PlaceBet(context.Context, *model.PlaceBetRequest) (*model.PlaceBetResponse, error)
	SubmitRecord(context.Context, *model.SubmitRecordRequest) (*model.SubmitRecordResponse, error)
}

type predictionDomain struct {
	predictionRepo repository.PredictionRepository
	betRepo        repository.BetRepository
	communityRepo  repository.CommunityRepository
	memberRepo     repository.MemberRepository
	playerRepo     repository.PlayerRepository
	trackRepo      repository.TrackRepository
	recordRepo     repository.RecordRepository
}

func NewPredictionDomain(
	predictionRepo repository.PredictionRepository,
	betRepo repository.BetRepository,
	communityRepo repository.CommunityRepository,
	memberRepo repository.MemberRepository,
	playerRepo repository.PlayerRepository,
	trackRepo repository.TrackRepository,
	recordRepo repository.RecordRepository,
) *predictionDomain {
	return &predictionDomain{
		predictionRepo: predictionRepo,
		betRepo:        betRepo,
		communityRepo:  communityRepo,
		memberRepo:     memberRepo,
		playerRepo:     playerRepo,
		trackRepo:      trackRepo,
		recordRepo:     recordRepo,
	}
}

func (d *predictionDomain) Create(
	ctx context.Context, req *model.CreatePredictionRequest,
) (*model.CreatePredictionResponse, error) {
	predictionType, err := enum.ToEnum[entity.PredictionType](req.Type)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid prediction type %s", req.Type)
	}

	switch predictionType {
	case entity.Versus:
		if len(req.ProtagonistIDs) < 2 {
			return nil, errorx.New(errorx.BadRequest,
				"A versus prediction needs at least two protagonists")
		}
	case entity.Guess:
		if len(req.ProtagonistIDs) != 1 {
			return nil, errorx.New(errorx.BadRequest,
				"A guess prediction needs exactly one protagonist")
		}
	case entity.Raffle:
		if len(req.ProtagonistIDs) != 0 {
			return nil, errorx.New(errorx.BadRequest,
				"A raffle prediction takes no protagonists")
		}
	}

	community, err := d.communityRepo.GetByHandle(ctx, req.CommunityHandle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found community")
		}

		xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
		return nil, errorx.Unknown
	}

	member, err := d.memberRepo.Get(ctx, xcontext.RequestUserID(ctx), community.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PermissionDenied, "Not a community member")
		}

		xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
		return nil, errorx.Unknown
	}

	if community.Restricted && !member.IsAdmin {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	// Unset fields fall back to the community's automated settings.
	if req.EntryFee == 0 {
		req.EntryFee = int64(community.AutomatedAmount)
	}

	if req.OpenFor == 0 {
		req.OpenFor = community.AutomatedOpen
	}

	if req.RunsFor == 0 {
		req.RunsFor = community.AutomatedEnd
	}

	if req.EntryFee <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Entry fee must be a positive number")
	}

	if req.OpenFor <= 0 || req.RunsFor <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid prediction window")
	}

	track, err := d.trackRepo.GetByGameID(ctx, req.TrackGameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found track")
		}

		xcontext.Logger(ctx).Errorf("Cannot get track: %v", err)
		return nil, errorx.Unknown
	}

	if len(req.ProtagonistIDs) > 0 {
		players, err := d.playerRepo.GetByIDs(ctx, req.ProtagonistIDs)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get protagonists: %v", err)
			return nil, errorx.Unknown
		}

		if len(players) != len(req.ProtagonistIDs) {
			return nil, errorx.New(errorx.NotFound, "Not found protagonist")
		}
	}

	now := time.Now()
	prediction := &entity.Prediction{
		Base:        entity.Base{ID: uuid.NewString()},
		CommunityID: community.ID,
		TrackID:     track.ID,
		Type:        predictionType,
		EntryFee:    req.EntryFee,
		ClosesAt:    now.Add(req.OpenFor),
		EndsAt:      now.Add(req.OpenFor + req.RunsFor),
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.predictionRepo.Create(ctx, prediction); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create prediction: %v", err)
		return nil, errorx.Unknown
	}

	for _, playerID := range req.ProtagonistIDs {
		err := d.predictionRepo.CreateProtagonist(ctx, &entity.Protagonist{
			PlayerID:     playerID,
			PredictionID: prediction.ID,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create protagonist: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.CreatePredictionResponse{ID: prediction.ID}, nil
}

func (d *predictionDomain) Get(
	ctx context.Context, req *model.GetPredictionRequest,
) (*model.GetPredictionResponse, error) {
	prediction, err := d.predictionRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found prediction")
		}

		xcontext.Logger(ctx).Errorf("Cannot get prediction: %v", err)
		return nil, errorx.Unknown
	}

	community, err := d.communityRepo.GetByID(ctx, prediction.CommunityID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get community: %v", err)
		return nil, errorx.Unknown
	}

	track, err := d.trackRepo.GetByID(ctx, prediction.TrackID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get track: %v", err)
		return nil, errorx.Unknown
	}

	protagonists, err := d.predictionRepo.GetProtagonists(ctx, prediction.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get protagonists: %v", err)
		return nil, errorx.Unknown
	}

	playerIDs := []string{}
	for _, protagonist := range protagonists {
		playerIDs = append(playerIDs, protagonist.PlayerID)
	}

	players, err := d.playerRepo.GetByIDs(ctx, playerIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get players: %v", err)
		return nil, errorx.Unknown
	}

	playersByID := map[string]entity.Player{}
	for _, player := range players {
		playersByID[player.ID] = player
	}

	bets, err := d.betRepo.GetByPredictionID(ctx, prediction.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get bets: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.ConvertPrediction(prediction, community, track)
	for i := range protagonists {
		player := playersByID[protagonists[i].PlayerID]
		resp.Protagonists = append(resp.Protagonists,
			model.ConvertProtagonist(&protagonists[i], &player))
	}

	for i := range bets {
		resp.Bets = append(resp.Bets, model.ConvertBet(&bets[i]))
	}

	return &model.GetPredictionResponse{Prediction: resp}, nil
}

func (d *predictionDomain) PlaceBet(
	ctx context.Context, req *model.PlaceBetRequest,
) (*model.PlaceBetResponse, error) {
	if req.Points <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Stake must be a positive number")
	}

	prediction, err := d.predictionRepo.GetByID(ctx, req.PredictionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found prediction")
		}

		xcontext.Logger(ctx).Errorf("Cannot get prediction: %v", err)
		return nil, errorx.Unknown
	}

	if prediction.Processed {
		return nil, errorx.New(errorx.Unavailable, "The prediction is already settled")
	}

	if time.Now().After(prediction.ClosesAt) {
		return nil, errorx.New(errorx.Unavailable, "The betting window is closed")
	}

	playerID := xcontext.RequestUserID(ctx)
	if _, err := d.memberRepo.Get(ctx, playerID, prediction.CommunityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PermissionDenied, "Not a community member")
		}

		xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := d.betRepo.Get(ctx, playerID, prediction.ID); err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "Already placed a bet on this prediction")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get bet: %v", err)
		return nil, errorx.Unknown
	}

	bet := &entity.Bet{
		PlayerID:     playerID,
		PredictionID: prediction.ID,
		Points:       req.Points,
	}

	switch prediction.Type {
	case entity.Versus:
		if err := d.verifyProtagonist(ctx, prediction.ID, req.OutcomePlayerID); err != nil {
			return nil, err
		}

		bet.OutcomePlayerID = sql.NullString{String: req.OutcomePlayerID, Valid: true}

	case entity.Guess:
		if req.OutcomeTime <= 0 {
			return nil, errorx.New(errorx.BadRequest, "Invalid guessed time")
		}

		bet.OutcomeTime = sql.NullInt64{Int64: req.OutcomeTime, Valid: true}

	case entity.Raffle:
		bet.OutcomeTime = sql.NullInt64{Int64: entity.RaffleOutcome, Valid: true}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err = d.memberRepo.DecreasePoints(ctx, playerID, prediction.CommunityID, req.Points)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unavailable, "Not enough points")
		}

		xcontext.Logger(ctx).Errorf("Cannot stake points: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.betRepo.Create(ctx, bet); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create bet: %v", err)
		return nil, errorx.Unknown
	}

	// Every raffle bettor is part of the drawing pool, so register them as a
	// protagonist of their own raffle.
	if prediction.Type == entity.Raffle {
		err := d.predictionRepo.CreateProtagonist(ctx, &entity.Protagonist{
			PlayerID:     playerID,
			PredictionID: prediction.ID,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create raffle protagonist: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.PlaceBetResponse{}, nil
}

func (d *predictionDomain) verifyProtagonist(
	ctx context.Context, predictionID, playerID string,
) error {
	protagonists, err := d.predictionRepo.GetProtagonists(ctx, predictionID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get protagonists: %v", err)
		return errorx.Unknown
	}

	for _, protagonist := range protagonists {
		if protagonist.PlayerID == playerID {
			return nil
		}
	}

	return errorx.New(errorx.BadRequest, "Backed player is not a protagonist")
}

// SubmitRecord is the client self-report path around the fetcher. The record
// is tagged with the reporting identity for audit.
func (d *predictionDomain) SubmitRecord(
	ctx context.Context, req *model.SubmitRecordRequest,
) (*model.SubmitRecordResponse, error) {
	if req.Time <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid race time")
	}

	if req.AchievedAt.IsZero() || req.AchievedAt.After(time.Now()) {
		return nil, errorx.New(errorx.BadRequest, "Invalid achievement time")
	}

	player, err := d.playerRepo.GetByGameID(ctx, req.PlayerGameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found player")
		}

		xcontext.Logger(ctx).Errorf("Cannot get player: %v", err)
		return nil, errorx.Unknown
	}

	track, err := d.trackRepo.GetByGameID(ctx, req.TrackGameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found track")
		}

		xcontext.Logger(ctx).Errorf("Cannot get track: %v", err)
		return nil, errorx.Unknown
	}

	record := entity.RaceRecord{
		Base:       entity.Base{ID: uuid.NewString()},
		PlayerID:   player.ID,
		TrackID:    track.ID,
		Time:       req.Time,
		AchievedAt: req.AchievedAt,
		CheckedBy:  sql.NullString{String: xcontext.RequestUserID(ctx), Valid: true},
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.recordRepo.Create(ctx, []entity.RaceRecord{record}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create record: %v", err)
		return nil, errorx.Unknown
	}

	err = d.recordRepo.UpsertActivity(ctx, player.ID, track.ID, req.AchievedAt)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update play activity: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.SubmitRecordResponse{}, nil
}
