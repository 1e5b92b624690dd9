// Package types contains common types shared across the application
package types

import "github.com/okian/arena/internal/domain/leaderboard"

// Positional contestant handles. Clients vote with these so model
// identity stays hidden until the vote lands.
const (
	HandleA = "a"
	HandleB = "b"
)

// BattleContestant is one side of a battle as exposed to clients. ID is
// the positional handle, never the model name; Rank may be shown before
// the vote, identity may not.
type BattleContestant struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
	Joke string `json:"joke"`
}

// BattleView is the response shape for a drawn battle.
type BattleView struct {
	BattleID    string             `json:"battle_id"`
	Category    string             `json:"category"`
	Contestants []BattleContestant `json:"contestants"`
}

// LeaderboardView is the response shape for the public leaderboard.
type LeaderboardView struct {
	Leaderboard []leaderboard.Entry `json:"leaderboard"`
	TotalVotes  int                 `json:"total_votes"`
	Explanation string              `json:"explanation"`
}

// VoteResult is returned once a vote has been applied: the refreshed
// standings plus the handle -> model mapping, revealed only now.
type VoteResult struct {
	Leaderboard []leaderboard.Entry `json:"leaderboard"`
	TotalVotes  int                 `json:"total_votes"`
	Revealed    map[string]string   `json:"revealed"`
}
