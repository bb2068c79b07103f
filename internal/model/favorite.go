package model

// Favorite links a user to a game from the external catalog.
//
// GameID is the catalog's identifier, not ours — we keep enough display data
// (name, background image) to render the favorites page without another
// upstream call. A favorite never outlives its user: the favorites table
// cascades on user deletion.
type Favorite struct {
	ID              int64  `json:"id"              db:"id"`
	Username        string `json:"username"        db:"username"`
	GameID          int64  `json:"gameId"          db:"game_id"`
	Name            string `json:"name"            db:"name"`
	BackgroundImage string `json:"backgroundImage" db:"background_image"`
}
