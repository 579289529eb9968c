package settle

import (
	"context"
	"errors"
	"time"

	"github.com/pkg/math"
	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/internal/repository"
	"github.com/trackpredict/backend/pkg/crypto"
	"github.com/trackpredict/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Engine settles expired predictions. It is safe to run the same engine, or
// several engines against one database, repeatedly over the same prediction:
// balances change exactly once per prediction because the deltas and the
// processed flag commit in one transaction, guarded by the flag itself.
type Engine struct {
	predictionRepo repository.PredictionRepository
	betRepo        repository.BetRepository
	memberRepo     repository.MemberRepository
	resolver       *Resolver
	draw           func(n int) int
}

func NewEngine(
	predictionRepo repository.PredictionRepository,
	betRepo repository.BetRepository,
	memberRepo repository.MemberRepository,
	resolver *Resolver,
) *Engine {
	return &Engine{
		predictionRepo: predictionRepo,
		betRepo:        betRepo,
		memberRepo:     memberRepo,
		resolver:       resolver,
		draw:           crypto.RandIntn,
	}
}

// WithDraw replaces the raffle randomness source.
func (e *Engine) WithDraw(draw func(n int) int) *Engine {
	e.draw = draw
	return e
}

// ProcessExpired settles every prediction whose window has elapsed.
// Predictions are independent and settle concurrently, bounded by
// configuration. A failed prediction is logged and picked up again on the
// next call, it never stops the others.
func (e *Engine) ProcessExpired(ctx context.Context) error {
	predictions, err := e.predictionRepo.GetExpired(ctx, time.Now())
	if err != nil {
		return err
	}

	eg := errgroup.Group{}
	eg.SetLimit(math.MaxInt(1, xcontext.Configs(ctx).Settlement.MaxConcurrent))

	for _, prediction := range predictions {
		prediction := prediction
		eg.Go(func() error {
			if err := e.Settle(ctx, &prediction); err != nil {
				xcontext.Logger(ctx).Errorf(
					"Cannot settle prediction %s: %v", prediction.ID, err)
			}

			return nil
		})
	}

	return eg.Wait()
}

// Settle resolves one prediction and applies its payouts.
func (e *Engine) Settle(ctx context.Context, prediction *entity.Prediction) error {
	if prediction.Processed {
		return nil
	}

	bets, err := e.betRepo.GetByPredictionID(ctx, prediction.ID)
	if err != nil {
		return err
	}

	var deltas []Delta
	var results []Result

	switch prediction.Type {
	case entity.Raffle:
		deltas = Raffle(prediction.EntryFee, bets, e.draw)

	default:
		protagonists, err := e.predictionRepo.GetProtagonists(ctx, prediction.ID)
		if err != nil {
			return err
		}

		resolution, err := e.resolver.Resolve(ctx, prediction, protagonists)
		if err != nil {
			return err
		}

		if resolution.Retry {
			xcontext.Logger(ctx).Infof(
				"Prediction %s has no usable record yet, will retry", prediction.ID)
			return nil
		}

		if resolution.Void {
			deltas = Refund(bets)
			break
		}

		results = resolution.Results
		switch prediction.Type {
		case entity.Versus:
			deltas = Versus(prediction.EntryFee, bets, results)
		case entity.Guess:
			deltas = Guess(prediction.EntryFee, bets, results[0])
		}
	}

	return e.commit(ctx, prediction, results, deltas)
}

func (e *Engine) commit(
	ctx context.Context, prediction *entity.Prediction, results []Result, deltas []Delta,
) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := e.predictionRepo.MarkProcessed(ctx, prediction.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Another run got here first, nothing left to do.
			return nil
		}

		return err
	}

	for _, result := range results {
		err := e.predictionRepo.SetProtagonistResult(
			ctx, prediction.ID, result.PlayerID, result.Time)
		if err != nil {
			return err
		}
	}

	for _, delta := range deltas {
		if delta.Points == 0 {
			continue
		}

		err := e.memberRepo.IncreasePoints(
			ctx, delta.PlayerID, prediction.CommunityID, delta.Points)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// A protagonist can earn a bonus without being a community
				// member. The points have nowhere to go.
				xcontext.Logger(ctx).Warnf(
					"Dropped %d points for non-member %s of prediction %s",
					delta.Points, delta.PlayerID, prediction.ID)
				continue
			}

			return err
		}
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}
