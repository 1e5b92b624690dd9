// Package leaderboard derives the ranked public view from the rating state.
package leaderboard

import (
	"math"
	"sort"

	"github.com/okian/arena/internal/domain/model"
)

// Entry is one leaderboard row as served to clients.
type Entry struct {
	Rank  int     `json:"rank"`
	Model string  `json:"model"`
	Elo   float64 `json:"elo"`
	Votes int     `json:"votes"`
}

// Explanation describes the benchmark to visitors. It is presentation
// copy, not core logic, and can be overridden via configuration.
const Explanation = " Funny Arena pairs two jokes from the same category and lets visitors decide which model" +
	" delivered the better punchline. Each click records a head-to-head result, updates the Elo" +
	" ratings, and instantly refreshes the leaderboard." +
	" Jokes categories are picked from https://en.wikipedia.org/wiki/Index_of_joke_types"

// Project returns the rows sorted by rating descending, ties broken by
// model id ascending. Ranks are 1-based competition ranks: models with
// exactly equal ratings share a rank and the next distinct rating resumes
// at its positional index (1600, 1600, 1500 -> 1, 1, 3). Elo is rounded
// to one decimal for display after ranks are assigned.
func Project(s *model.RatingState) []Entry {
	entries := make([]Entry, 0, len(s.Ratings))
	for name, r := range s.Ratings {
		entries = append(entries, Entry{Model: name, Elo: r.Elo, Votes: r.Votes})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Elo != entries[j].Elo {
			return entries[i].Elo > entries[j].Elo
		}
		return entries[i].Model < entries[j].Model
	})

	for i := range entries {
		if i > 0 && entries[i].Elo == entries[i-1].Elo {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	for i := range entries {
		entries[i].Elo = math.Round(entries[i].Elo*10) / 10
	}
	return entries
}

// Ranks indexes entries by model for quick rank lookups during pairing.
func Ranks(entries []Entry) map[string]int {
	ranks := make(map[string]int, len(entries))
	for _, e := range entries {
		ranks[e.Model] = e.Rank
	}
	return ranks
}
