package settle

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trackpredict/backend/internal/entity"
)

func betOn(playerID, protagonistID string, points int64) entity.Bet {
	return entity.Bet{
		PlayerID:        playerID,
		OutcomePlayerID: sql.NullString{String: protagonistID, Valid: true},
		Points:          points,
	}
}

func betGuess(playerID string, guess, points int64) entity.Bet {
	return entity.Bet{
		PlayerID:    playerID,
		OutcomeTime: sql.NullInt64{Int64: guess, Valid: true},
		Points:      points,
	}
}

func Test_Versus(t *testing.T) {
	bets := []entity.Bet{
		betOn("player1", "protagonistA", 50),
		betOn("player2", "protagonistB", 50),
	}

	results := []Result{
		{PlayerID: "protagonistA", Time: 100},
		{PlayerID: "protagonistB", Time: 90},
	}

	deltas := Versus(10, bets, results)
	require.Equal(t, []Delta{{PlayerID: "player2", Points: 20}}, deltas)
}

func Test_Versus_bonusForImprovedWinner(t *testing.T) {
	bets := []entity.Bet{
		betOn("player1", "protagonistA", 50),
		betOn("player2", "protagonistB", 50),
	}

	results := []Result{
		{PlayerID: "protagonistA", Time: 100, Improved: true},
		{PlayerID: "protagonistB", Time: 90, Improved: true},
	}

	deltas := Versus(10, bets, results)
	require.Equal(t, []Delta{
		{PlayerID: "player2", Points: 20},
		{PlayerID: "protagonistB", Points: 1},
	}, deltas)
}

func Test_Versus_emptyWinningBucketRefunds(t *testing.T) {
	bets := []entity.Bet{
		betOn("player1", "protagonistA", 50),
		betOn("player2", "protagonistA", 30),
	}

	results := []Result{
		{PlayerID: "protagonistA", Time: 100},
		{PlayerID: "protagonistB", Time: 90},
	}

	deltas := Versus(10, bets, results)
	require.Equal(t, []Delta{
		{PlayerID: "player1", Points: 50},
		{PlayerID: "player2", Points: 30},
	}, deltas)
}

func Test_Versus_splitsPoolAcrossWinners(t *testing.T) {
	bets := []entity.Bet{
		betOn("player1", "protagonistB", 50),
		betOn("player2", "protagonistB", 50),
		betOn("player3", "protagonistA", 50),
	}

	results := []Result{
		{PlayerID: "protagonistA", Time: 100},
		{PlayerID: "protagonistB", Time: 90},
	}

	// floor(3/2) = 1 share each, the residue is burnt.
	deltas := Versus(10, bets, results)
	require.Equal(t, []Delta{
		{PlayerID: "player1", Points: 10},
		{PlayerID: "player2", Points: 10},
	}, deltas)
}

func Test_Guess(t *testing.T) {
	bets := []entity.Bet{
		betGuess("player1", 90, 50),
		betGuess("player2", 100, 50),
	}

	// Both guesses are 5 away from the target. The lower guess wins, and it
	// must win on every run.
	for i := 0; i < 10; i++ {
		deltas := Guess(10, bets, Result{PlayerID: "protagonistA", Time: 95})
		require.Equal(t, []Delta{{PlayerID: "player1", Points: 20}}, deltas)
	}
}

func Test_Guess_bonusForImprovedProtagonist(t *testing.T) {
	bets := []entity.Bet{
		betGuess("player1", 90, 50),
		betGuess("player2", 120, 50),
	}

	deltas := Guess(50, bets, Result{PlayerID: "protagonistA", Time: 95, Improved: true})
	require.Equal(t, []Delta{
		{PlayerID: "player1", Points: 100},
		{PlayerID: "protagonistA", Points: 5},
	}, deltas)
}

func Test_Guess_sharedBucket(t *testing.T) {
	bets := []entity.Bet{
		betGuess("player1", 90, 50),
		betGuess("player2", 90, 50),
		betGuess("player3", 200, 50),
	}

	// floor(10*3/2) = 15 each.
	deltas := Guess(10, bets, Result{PlayerID: "protagonistA", Time: 95})
	require.Equal(t, []Delta{
		{PlayerID: "player1", Points: 15},
		{PlayerID: "player2", Points: 15},
	}, deltas)
}

func Test_Raffle(t *testing.T) {
	bets := []entity.Bet{
		{PlayerID: "player1", OutcomeTime: sql.NullInt64{Int64: entity.RaffleOutcome, Valid: true}},
		{PlayerID: "player2", OutcomeTime: sql.NullInt64{Int64: entity.RaffleOutcome, Valid: true}},
		{PlayerID: "player3", OutcomeTime: sql.NullInt64{Int64: entity.RaffleOutcome, Valid: true}},
	}

	for i := 0; i < 10; i++ {
		deltas := Raffle(100, bets, func(n int) int {
			require.Equal(t, 3, n)
			return 1
		})
		require.Equal(t, []Delta{{PlayerID: "player2", Points: 100}}, deltas)
	}
}

func Test_Raffle_noWagers(t *testing.T) {
	require.Empty(t, Raffle(100, nil, func(n int) int {
		t.Fatal("draw must not be called on an empty pool")
		return 0
	}))
}

func Test_Refund_conservesStakes(t *testing.T) {
	bets := []entity.Bet{
		betOn("player1", "protagonistA", 50),
		betOn("player2", "protagonistB", 30),
		betGuess("player3", 90, 20),
	}

	deltas := Refund(bets)

	var total int64
	for _, delta := range deltas {
		total += delta.Points
	}
	require.Equal(t, int64(100), total)
}
