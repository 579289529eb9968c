package model

import (
	"github.com/trackpredict/backend/internal/entity"
)

func ConvertPrediction(
	prediction *entity.Prediction,
	community *entity.Community,
	track *entity.Track,
) Prediction {
	if prediction == nil {
		return Prediction{}
	}

	result := Prediction{
		ID:        prediction.ID,
		Type:      string(prediction.Type),
		EntryFee:  prediction.EntryFee,
		ClosesAt:  prediction.ClosesAt,
		EndsAt:    prediction.EndsAt,
		Processed: prediction.Processed,
	}

	if community != nil {
		result.CommunityHandle = community.Handle
	}

	if track != nil {
		result.TrackName = track.Name
	}

	return result
}

func ConvertProtagonist(protagonist *entity.Protagonist, player *entity.Player) Protagonist {
	if protagonist == nil {
		return Protagonist{}
	}

	result := Protagonist{PlayerID: protagonist.PlayerID}
	if protagonist.Result.Valid {
		result.Result = protagonist.Result.Int64
	}

	if player != nil {
		result.PlayerName = player.Name
	}

	return result
}

func ConvertBet(bet *entity.Bet) Bet {
	if bet == nil {
		return Bet{}
	}

	return Bet{
		PlayerID:        bet.PlayerID,
		OutcomePlayerID: bet.OutcomePlayerID.String,
		OutcomeTime:     bet.OutcomeTime.Int64,
		Points:          bet.Points,
	}
}
