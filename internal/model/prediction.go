package model

import "time"

type Prediction struct {
	ID              string    `json:"id"`
	CommunityHandle string    `json:"community_handle"`
	TrackName       string    `json:"track_name"`
	Type            string    `json:"type"`
	EntryFee        int64     `json:"entry_fee"`
	ClosesAt        time.Time `json:"closes_at"`
	EndsAt          time.Time `json:"ends_at"`
	Processed       bool      `json:"processed"`

	Protagonists []Protagonist `json:"protagonists,omitempty"`
	Bets         []Bet         `json:"bets,omitempty"`
}

type Protagonist struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`

	// Result is the resolved race time in milliseconds, zero until settled.
	Result int64 `json:"result,omitempty"`
}

type Bet struct {
	PlayerID        string `json:"player_id"`
	OutcomePlayerID string `json:"outcome_player_id,omitempty"`
	OutcomeTime     int64  `json:"outcome_time,omitempty"`
	Points          int64  `json:"points"`
}

type CreatePredictionRequest struct {
	CommunityHandle string `json:"community_handle"`
	TrackGameID     string `json:"track_game_id"`
	Type            string `json:"type"`
	EntryFee        int64  `json:"entry_fee"`

	// OpenFor and RunsFor are offsets from creation time. Betting closes
	// after OpenFor; results are checked after OpenFor+RunsFor.
	OpenFor time.Duration `json:"open_for"`
	RunsFor time.Duration `json:"runs_for"`

	// ProtagonistIDs are the players the prediction is about. Required for
	// versus and guess, must be empty for raffles.
	ProtagonistIDs []string `json:"protagonist_ids"`
}

type CreatePredictionResponse struct {
	ID string `json:"id"`
}

type GetPredictionRequest struct {
	ID string `json:"id"`
}

type GetPredictionResponse struct {
	Prediction Prediction `json:"prediction"`
}

type PlaceBetRequest struct {
	PredictionID string `json:"prediction_id"`

	// OutcomePlayerID is the backed protagonist on versus predictions.
	OutcomePlayerID string `json:"outcome_player_id,omitempty"`

	// OutcomeTime is the guessed time on guess predictions, milliseconds.
	OutcomeTime int64 `json:"outcome_time,omitempty"`

	Points int64 `json:"points"`
}

type PlaceBetResponse struct{}

type SubmitRecordRequest struct {
	PlayerGameID string    `json:"player_game_id"`
	TrackGameID  string    `json:"track_game_id"`
	Time         int64     `json:"time"`
	AchievedAt   time.Time `json:"achieved_at"`
}

type SubmitRecordResponse struct{}
