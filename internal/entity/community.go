package entity

import "time"

type Community struct {
	Base

	Handle string `gorm:"unique"`
	Name   string

	// PointsName is the display name a community gives its points.
	PointsName string

	// Restricted limits prediction creation to admins.
	Restricted bool
	Visibility bool

	// Settings for periodically created predictions.
	AutomatedAmount    int
	AutomatedFrequency time.Duration
	AutomatedOpen      time.Duration
	AutomatedEnd       time.Duration
}

// Member links a player to a community and carries the point balance wagers
// are staked from and paid into.
type Member struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	PlayerID string `gorm:"primaryKey"`
	Player   Player `gorm:"foreignKey:PlayerID"`

	CommunityID string    `gorm:"primaryKey"`
	Community   Community `gorm:"foreignKey:CommunityID"`

	Points  int64
	IsAdmin bool
}
