package simulate

import "time"

// Config holds configuration for the battle simulation
type Config struct {
	BaseURL    string        // Base URL of the service
	NumBattles int           // Number of battles to fight
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	DrawRate   float64       // Fraction of battles voted as a draw (0..1)
	LogFile    string        // Log file for simulation output
	Verbose    bool          // Enable verbose logging
}

// Battle mirrors the response of GET /api/battle
type Battle struct {
	BattleID    string       `json:"battle_id"`
	Category    string       `json:"category"`
	Contestants []Contestant `json:"contestants"`
}

// Contestant is one anonymized side of a battle
type Contestant struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
	Joke string `json:"joke"`
}

// Entry represents a leaderboard entry
type Entry struct {
	Rank  int     `json:"rank"`
	Model string  `json:"model"`
	Elo   float64 `json:"elo"`
	Votes int     `json:"votes"`
}

// Leaderboard mirrors the response of GET /api/leaderboard
type Leaderboard struct {
	Leaderboard []Entry `json:"leaderboard"`
	TotalVotes  int     `json:"total_votes"`
	Explanation string  `json:"explanation"`
}

// VoteResult mirrors the response of POST /api/battle_result
type VoteResult struct {
	Leaderboard []Entry           `json:"leaderboard"`
	TotalVotes  int               `json:"total_votes"`
	Revealed    map[string]string `json:"revealed"`
}

// Stats holds simulation statistics
type Stats struct {
	BattlesDrawn   int
	VotesSubmitted int
	VotesAccepted  int
	VotesRejected  int
	Draws          int
	StartVotes     int
	EndVotes       int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
