package model

// GameSummary is one entry of a catalog listing page. The json tags match
// the upstream API's field names so the summaries decode straight out of the
// response envelope.
type GameSummary struct {
	ID              int64   `json:"id"`
	Slug            string  `json:"slug"`
	Name            string  `json:"name"`
	Released        string  `json:"released"`
	BackgroundImage string  `json:"background_image"`
	Rating          float64 `json:"rating"`
}

// Genre is a catalog genre reference as embedded in a game detail.
type Genre struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// GameDetail is the full record behind a single game page.
type GameDetail struct {
	ID              int64   `json:"id"`
	Slug            string  `json:"slug"`
	Name            string  `json:"name"`
	Released        string  `json:"released"`
	BackgroundImage string  `json:"background_image"`
	Rating          float64 `json:"rating"`
	Metacritic      int     `json:"metacritic"`
	Website         string  `json:"website"`
	Description     string  `json:"description_raw"`
	Genres          []Genre `json:"genres"`
}
