// Package model contains domain models passed between layers.
package model

// DefaultElo is the rating assigned to a model that has never battled.
const DefaultElo = 1500.0

// ModelRating holds the mutable per-model ranking state.
type ModelRating struct {
	Elo   float64 `json:"elo"`
	Votes int     `json:"votes"`
}

// RatingState aggregates every model's rating plus the global vote total.
// Draws increment TotalVotes without touching any per-model counter, so
// TotalVotes >= sum of the per-model counts divided by two.
type RatingState struct {
	Ratings    map[string]ModelRating `json:"ratings"`
	TotalVotes int                    `json:"total_votes"`
}

// NewRatingState builds a fresh state seeded from the roster.
func NewRatingState(roster []string) *RatingState {
	s := &RatingState{Ratings: make(map[string]ModelRating, len(roster))}
	s.Seed(roster)
	return s
}

// Seed ensures every roster model has an entry, preserving existing ones.
func (s *RatingState) Seed(roster []string) {
	if s.Ratings == nil {
		s.Ratings = make(map[string]ModelRating, len(roster))
	}
	for _, m := range roster {
		if _, ok := s.Ratings[m]; !ok {
			s.Ratings[m] = ModelRating{Elo: DefaultElo}
		}
	}
}

// Clone returns a deep copy so snapshots can outlive the locked region
// that produced them.
func (s *RatingState) Clone() *RatingState {
	c := &RatingState{
		Ratings:    make(map[string]ModelRating, len(s.Ratings)),
		TotalVotes: s.TotalVotes,
	}
	for m, r := range s.Ratings {
		c.Ratings[m] = r
	}
	return c
}

// Catalog is the static content mapping: model -> category -> joke
// variants. It is loaded once at startup and never mutated.
type Catalog map[string]map[string][]string

// Contestant is one side of a battle: a model and the joke it tells.
type Contestant struct {
	Model string
	Joke  string
}

// Battle describes one pairing drawn by the selector. Contestant order is
// already randomized; A and B map to the positional handles shown to
// clients.
type Battle struct {
	Category string
	A        Contestant
	B        Contestant
}
