package model

import "time"

// Standing is one team's line in the league table.
type Standing struct {
	TeamName      string  `json:"team_name"`
	OwnerName     string  `json:"owner_name,omitempty"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties,omitempty"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
}

// TradeSide is what one team received in a trade.
type TradeSide struct {
	TeamName string   `json:"team_name"`
	Received []string `json:"received"`
}

// Trade is one completed trade between two or more teams.
type Trade struct {
	ID          string      `json:"id"`
	Season      string      `json:"season"`
	Week        int         `json:"week"`
	Sides       []TradeSide `json:"sides"`
	CompletedAt time.Time   `json:"completed_at,omitempty"`
}

// TradeCount is a team's all-time trade total.
type TradeCount struct {
	TeamName string `json:"team_name"`
	Trades   int    `json:"trades"`
}

// Matchup is one team's side of a weekly head-to-head.
type Matchup struct {
	Week           int     `json:"week"`
	Season         string  `json:"season,omitempty"`
	TeamName       string  `json:"team_name"`
	OpponentName   string  `json:"opponent_name"`
	Points         float64 `json:"points"`
	OpponentPoints float64 `json:"opponent_points"`
}

// SeasonStats is a player's real-NFL season stat line.
type SeasonStats struct {
	PlayerName  string             `json:"player_name"`
	Season      int                `json:"season"`
	GamesPlayed int                `json:"games_played"`
	Stats       map[string]float64 `json:"stats"`
}

// GameStats is a player's stat line for a single game.
type GameStats struct {
	PlayerName string             `json:"player_name"`
	Date       string             `json:"date"`
	Opponent   string             `json:"opponent,omitempty"`
	Stats      map[string]float64 `json:"stats"`
}

// NFLStanding is one real NFL team's record.
type NFLStanding struct {
	Team   string `json:"team"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Ties   int    `json:"ties,omitempty"`
}
