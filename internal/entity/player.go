package entity

type Player struct {
	Base

	// GameID is the stable account id of the player on the game services.
	GameID string `gorm:"unique"`
	Name   string

	// Secret authenticates the in-game plugin of this player. It is issued
	// by the web layer; the engine only stores it.
	Secret string `gorm:"unique"`
}

type Track struct {
	Base

	// GameID is the stable map id of the track on the game services.
	GameID string `gorm:"unique"`
	Name   string
}
