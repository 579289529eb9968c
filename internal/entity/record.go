package entity

import (
	"database/sql"
	"time"
)

// RaceRecord is one observed race time. Records are append-only: they feed
// settlement as a results cache and stay around as an audit trail.
type RaceRecord struct {
	Base

	PlayerID string `gorm:"index:idx_race_records_lookup"`
	Player   Player `gorm:"foreignKey:PlayerID"`

	TrackID string `gorm:"index:idx_race_records_lookup"`
	Track   Track  `gorm:"foreignKey:TrackID"`

	// Time is the race time in milliseconds.
	Time int64

	// AchievedAt is when the record was set on the game services; CreatedAt
	// (Base) is when it was ingested here. Settlement only trusts records
	// ingested after a prediction ended.
	AchievedAt time.Time

	// CheckedBy attributes who queried the game services for this record.
	// Empty for records fetched by the engine itself.
	CheckedBy sql.NullString
}

// PlayActivity remembers when a player last played a track. It separates
// "never attempted the track" from "attempted but did not improve" when
// settlement finds no usable record.
type PlayActivity struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	PlayerID string `gorm:"primaryKey"`
	Player   Player `gorm:"foreignKey:PlayerID"`

	TrackID string `gorm:"primaryKey"`
	Track   Track  `gorm:"foreignKey:TrackID"`

	LastPlayedAt time.Time
}

// ServiceCredential is a persisted access token for one audience of the game
// services.
type ServiceCredential struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	Audience    string `gorm:"primaryKey"`
	AccessToken string
	ExpiresAt   time.Time
}
