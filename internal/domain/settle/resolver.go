package settle

import (
	"context"

	"github.com/google/uuid"
	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/internal/repository"
	"github.com/trackpredict/backend/pkg/api/nadeo"
	"github.com/trackpredict/backend/pkg/xcontext"
)

// RecordsFetcher performs one batched records lookup against the game
// services. Implemented by nadeo.Endpoint.
type RecordsFetcher interface {
	GetMapRecords(
		ctx context.Context, mapGameID string, accountGameIDs []string,
	) ([]nadeo.Record, error)
}

// Resolution is the outcome of gathering evidence for one prediction.
type Resolution struct {
	// Results holds the qualifying time of every protagonist that has one.
	Results []Result

	// Void is set when no protagonist has a qualifying record and none of
	// them played the track after the prediction ended. Stakes go back.
	Void bool

	// Retry is set when there is no qualifying record yet but play activity
	// suggests one may still appear. The prediction stays unprocessed.
	Retry bool
}

type Resolver struct {
	playerRepo repository.PlayerRepository
	trackRepo  repository.TrackRepository
	recordRepo repository.RecordRepository
	fetcher    RecordsFetcher
}

func NewResolver(
	playerRepo repository.PlayerRepository,
	trackRepo repository.TrackRepository,
	recordRepo repository.RecordRepository,
	fetcher RecordsFetcher,
) *Resolver {
	return &Resolver{
		playerRepo: playerRepo,
		trackRepo:  trackRepo,
		recordRepo: recordRepo,
		fetcher:    fetcher,
	}
}

// Resolve finds, for each protagonist, the earliest record ingested after the
// prediction ended. Records ingested earlier are ignored even if they were
// achieved recently, so stale pre-bet times can never settle a prediction.
// When the cache has gaps it fetches the whole protagonist set in one batched
// call and looks again.
func (r *Resolver) Resolve(
	ctx context.Context, prediction *entity.Prediction, protagonists []entity.Protagonist,
) (*Resolution, error) {
	playerIDs := make([]string, 0, len(protagonists))
	for _, protagonist := range protagonists {
		playerIDs = append(playerIDs, protagonist.PlayerID)
	}

	results, missing, err := r.lookup(ctx, prediction, playerIDs)
	if err != nil {
		return nil, err
	}

	if missing {
		if err := r.fetch(ctx, prediction, playerIDs); err != nil {
			return nil, err
		}

		results, _, err = r.lookup(ctx, prediction, playerIDs)
		if err != nil {
			return nil, err
		}
	}

	if len(results) == 0 {
		played, err := r.recordRepo.HasActivityAfter(
			ctx, playerIDs, prediction.TrackID, prediction.EndsAt)
		if err != nil {
			return nil, err
		}

		if played {
			return &Resolution{Retry: true}, nil
		}

		return &Resolution{Void: true}, nil
	}

	return &Resolution{Results: results}, nil
}

func (r *Resolver) lookup(
	ctx context.Context, prediction *entity.Prediction, playerIDs []string,
) ([]Result, bool, error) {
	results := []Result{}
	missing := false
	for _, playerID := range playerIDs {
		record, err := r.recordRepo.GetFirstIngestedAfter(
			ctx, playerID, prediction.TrackID, prediction.EndsAt)
		if err != nil {
			return nil, false, err
		}

		if record == nil {
			missing = true
			continue
		}

		results = append(results, Result{
			PlayerID: playerID,
			Time:     record.Time,
			Improved: record.AchievedAt.After(prediction.CreatedAt),
		})
	}

	return results, missing, nil
}

// fetch stores the current upstream records of all protagonists as new cache
// entries. A fetched record also counts as proof the player attempted the
// track at its achievement time.
func (r *Resolver) fetch(
	ctx context.Context, prediction *entity.Prediction, playerIDs []string,
) error {
	players, err := r.playerRepo.GetByIDs(ctx, playerIDs)
	if err != nil {
		return err
	}

	track, err := r.trackRepo.GetByID(ctx, prediction.TrackID)
	if err != nil {
		return err
	}

	playersByGameID := map[string]entity.Player{}
	gameIDs := make([]string, 0, len(players))
	for _, player := range players {
		playersByGameID[player.GameID] = player
		gameIDs = append(gameIDs, player.GameID)
	}

	fetched, err := r.fetcher.GetMapRecords(ctx, track.GameID, gameIDs)
	if err != nil {
		return err
	}

	records := []entity.RaceRecord{}
	for _, record := range fetched {
		player, ok := playersByGameID[record.PlayerGameID]
		if !ok {
			xcontext.Logger(ctx).Warnf(
				"Records response contains unknown account %s", record.PlayerGameID)
			continue
		}

		records = append(records, entity.RaceRecord{
			Base:       entity.Base{ID: uuid.NewString()},
			PlayerID:   player.ID,
			TrackID:    prediction.TrackID,
			Time:       record.Time,
			AchievedAt: record.AchievedAt,
		})

		err := r.recordRepo.UpsertActivity(ctx, player.ID, prediction.TrackID, record.AchievedAt)
		if err != nil {
			return err
		}
	}

	return r.recordRepo.Create(ctx, records)
}
