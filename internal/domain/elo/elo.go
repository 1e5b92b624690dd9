// Package elo implements the rating update rules for head-to-head battles.
package elo

import (
	"math"

	"github.com/okian/arena/internal/domain/model"
)

// Default rating configuration constants.
const (
	// DefaultK is the maximum rating swing per battle.
	DefaultK = 32.0
	// spread is the rating gap that gives one side 10-to-1 odds.
	spread = 400.0
)

// Outcome is the result of a battle as voted by a visitor.
type Outcome int

const (
	// AWins means the first contestant took the vote.
	AWins Outcome = iota
	// BWins means the second contestant took the vote.
	BWins
	// Draw means the visitor had no preference.
	Draw
)

// scores maps an outcome to the actual scores (sA, sB) with sB = 1 - sA.
func (o Outcome) scores() (sa, sb float64) {
	switch o {
	case AWins:
		return 1.0, 0.0
	case BWins:
		return 0.0, 1.0
	default:
		return 0.5, 0.5
	}
}

// ExpectedScore returns the probability that a player rated ratingA beats
// one rated ratingB under the logistic Elo curve.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/spread))
}

// Update returns the post-battle ratings. Both deltas are computed from
// the pre-update ratings, never by feeding one result into the other's
// expected score, so identical inputs always produce identical outputs
// and with equal K the exchange is symmetric.
func Update(ratingA, ratingB float64, outcome Outcome, k float64) (newA, newB float64) {
	sa, sb := outcome.scores()
	newA = ratingA + k*(sa-ExpectedScore(ratingA, ratingB))
	newB = ratingB + k*(sb-ExpectedScore(ratingB, ratingA))
	return newA, newB
}

// Apply records a battle result in the rating state. Ratings move per
// Update; a decisive outcome counts one vote for each participant while a
// draw counts only toward the global total. Models unseen by the roster
// are created at the default rating on first reference.
func Apply(s *model.RatingState, modelA, modelB string, outcome Outcome, k float64) {
	ra := ratingOrDefault(s, modelA)
	rb := ratingOrDefault(s, modelB)

	ra.Elo, rb.Elo = Update(ra.Elo, rb.Elo, outcome, k)
	if outcome != Draw {
		ra.Votes++
		rb.Votes++
	}
	s.TotalVotes++

	s.Ratings[modelA] = ra
	s.Ratings[modelB] = rb
}

func ratingOrDefault(s *model.RatingState, name string) model.ModelRating {
	if s.Ratings == nil {
		s.Ratings = make(map[string]model.ModelRating)
	}
	r, ok := s.Ratings[name]
	if !ok {
		r = model.ModelRating{Elo: model.DefaultElo}
	}
	return r
}
