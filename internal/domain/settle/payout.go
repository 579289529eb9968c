package settle

import (
	"math"

	"github.com/trackpredict/backend/internal/entity"
)

// bonusRate is the share of the nominal pool paid to a protagonist who
// improved their time while the prediction ran.
const bonusRate = 0.05

// Delta is one point adjustment to a member balance.
type Delta struct {
	PlayerID string
	Points   int64
}

// Result is a protagonist's resolved race time.
type Result struct {
	PlayerID string
	Time     int64

	// Improved reports whether the time was achieved after the prediction
	// was created.
	Improved bool
}

// Versus pays every wager backing the fastest protagonist. Each winning
// wager receives floor(wagers/winners) times the entry fee. A protagonist
// who wins with a time set during the prediction also collects the bonus.
//
// An empty winning bucket (nobody backed the fastest protagonist) degrades
// to a refund of all stakes.
func Versus(entryFee int64, bets []entity.Bet, results []Result) []Delta {
	if len(bets) == 0 || len(results) == 0 {
		return nil
	}

	winner := results[0]
	for _, result := range results[1:] {
		if result.Time < winner.Time ||
			(result.Time == winner.Time && result.PlayerID < winner.PlayerID) {
			winner = result
		}
	}

	var winning []entity.Bet
	for _, bet := range bets {
		if bet.OutcomePlayerID.Valid && bet.OutcomePlayerID.String == winner.PlayerID {
			winning = append(winning, bet)
		}
	}

	if len(winning) == 0 {
		return Refund(bets)
	}

	payout := int64(len(bets)) / int64(len(winning)) * entryFee

	deltas := []Delta{}
	for _, bet := range winning {
		deltas = append(deltas, Delta{PlayerID: bet.PlayerID, Points: payout})
	}

	if winner.Improved {
		deltas = append(deltas, Delta{
			PlayerID: winner.PlayerID,
			Points:   bonus(entryFee, len(bets)),
		})
	}

	return deltas
}

// Guess pays the wagers whose guessed time is closest to the target's
// resolved time. When two guesses straddle the target at the same distance,
// the lower guess wins. Each winning wager receives
// floor(entryFee*wagers/winners).
func Guess(entryFee int64, bets []entity.Bet, target Result) []Delta {
	if len(bets) == 0 {
		return nil
	}

	var best int64
	found := false
	for _, bet := range bets {
		if !bet.OutcomeTime.Valid {
			continue
		}

		guess := bet.OutcomeTime.Int64
		if !found {
			best, found = guess, true
			continue
		}

		distance := absDiff(guess, target.Time)
		bestDistance := absDiff(best, target.Time)
		if distance < bestDistance || (distance == bestDistance && guess < best) {
			best = guess
		}
	}

	if !found {
		return Refund(bets)
	}

	var winning []entity.Bet
	for _, bet := range bets {
		if bet.OutcomeTime.Valid && bet.OutcomeTime.Int64 == best {
			winning = append(winning, bet)
		}
	}

	payout := entryFee * int64(len(bets)) / int64(len(winning))

	deltas := []Delta{}
	for _, bet := range winning {
		deltas = append(deltas, Delta{PlayerID: bet.PlayerID, Points: payout})
	}

	if target.Improved {
		deltas = append(deltas, Delta{
			PlayerID: target.PlayerID,
			Points:   bonus(entryFee, len(bets)),
		})
	}

	return deltas
}

// Raffle draws one wager uniformly from the raffle bucket and pays it the
// entry fee. Stakes are not redistributed, the payout comes from outside the
// wager pool.
func Raffle(entryFee int64, bets []entity.Bet, draw func(n int) int) []Delta {
	var pool []entity.Bet
	for _, bet := range bets {
		if bet.OutcomeTime.Valid && bet.OutcomeTime.Int64 == entity.RaffleOutcome {
			pool = append(pool, bet)
		}
	}

	if len(pool) == 0 {
		return nil
	}

	drawn := pool[draw(len(pool))]
	return []Delta{{PlayerID: drawn.PlayerID, Points: entryFee}}
}

// Refund returns every wager's own stake unchanged.
func Refund(bets []entity.Bet) []Delta {
	deltas := []Delta{}
	for _, bet := range bets {
		deltas = append(deltas, Delta{PlayerID: bet.PlayerID, Points: bet.Points})
	}

	return deltas
}

func bonus(entryFee int64, wagers int) int64 {
	return int64(math.Round(float64(entryFee) * float64(wagers) * bonusRate))
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}

	return b - a
}
