package entity

import (
	"database/sql"
	"time"

	"github.com/trackpredict/backend/pkg/enum"
)

type PredictionType string

var (
	// Versus: bettors back one protagonist to set the fastest time.
	Versus = enum.New(PredictionType("versus"))

	// Guess: bettors guess the protagonist's time, closest bucket wins.
	Guess = enum.New(PredictionType("guess"))

	// Raffle: one bettor is drawn at random; no race result involved.
	Raffle = enum.New(PredictionType("raffle"))
)

// RaffleOutcome is the sentinel outcome every raffle bet is placed on.
const RaffleOutcome int64 = 0

type Prediction struct {
	Base

	CommunityID string    `gorm:"index"`
	Community   Community `gorm:"foreignKey:CommunityID"`

	TrackID string `gorm:"index"`
	Track   Track  `gorm:"foreignKey:TrackID"`

	Type PredictionType

	// EntryFee is the stake unit of versus and guess payouts. For raffles
	// it is the amount paid to the drawn player.
	EntryFee int64

	// ClosesAt ends the betting window; EndsAt is when results are checked.
	ClosesAt time.Time
	EndsAt   time.Time `gorm:"index"`

	Processed bool `gorm:"index"`
}

// Protagonist marks a player whose performance decides the prediction. For
// raffles every bettor is registered as a protagonist.
type Protagonist struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	PlayerID string `gorm:"primaryKey"`
	Player   Player `gorm:"foreignKey:PlayerID"`

	PredictionID string     `gorm:"primaryKey"`
	Prediction   Prediction `gorm:"foreignKey:PredictionID"`

	// Result is the resolved race time, filled at settlement.
	Result sql.NullInt64
}

type Bet struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	PlayerID string `gorm:"primaryKey"`
	Player   Player `gorm:"foreignKey:PlayerID"`

	PredictionID string     `gorm:"primaryKey"`
	Prediction   Prediction `gorm:"foreignKey:PredictionID"`

	// OutcomePlayerID backs a protagonist on versus predictions.
	OutcomePlayerID sql.NullString

	// OutcomeTime is the guessed time on guess predictions. Raffle bets use
	// RaffleOutcome here.
	OutcomeTime sql.NullInt64

	Points int64
}
