// Package pairing selects fair random battles from the joke catalog.
package pairing

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/okian/arena/internal/domain/model"
)

// Selector draws battles from the categories where at least two distinct
// models have a joke. Selection is uniform and rating-independent so the
// current standings never bias which models get compared.
type Selector struct {
	catalog    model.Catalog
	byCategory map[string][]string
	categories []string

	mu  sync.Mutex
	rng *rand.Rand
}

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithRandSource injects a random source, letting tests make every draw
// deterministic.
func WithRandSource(src rand.Source) Option {
	return func(s *Selector) {
		if src != nil {
			s.rng = rand.New(src) //nolint:gosec // pairing needs no cryptographic randomness
		}
	}
}

// New builds a Selector from the catalog. The roster fixes which models
// participate and in what order the per-category lists are assembled;
// categories covered by fewer than two models are dropped and therefore
// never appear in a battle.
func New(catalog model.Catalog, roster []string, opts ...Option) *Selector {
	s := &Selector{
		catalog:    catalog,
		byCategory: make(map[string][]string),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // non-cryptographic use
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, m := range roster {
		for category, jokes := range catalog[m] {
			if len(jokes) > 0 {
				s.byCategory[category] = append(s.byCategory[category], m)
			}
		}
	}
	for category, models := range s.byCategory {
		if len(models) < 2 {
			delete(s.byCategory, category)
			continue
		}
		s.categories = append(s.categories, category)
	}
	sort.Strings(s.categories)

	return s
}

// Categories returns the eligible category names, sorted.
func (s *Selector) Categories() []string {
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Draw picks one eligible category uniformly at random, then two distinct
// contestants without replacement and one joke variant each. The A/B
// order comes straight from the random draw, so neither slot correlates
// with rating. Returns ErrNoEligibleCategory when no category is covered
// by two models.
func (s *Selector) Draw() (model.Battle, error) {
	if len(s.categories) == 0 {
		return model.Battle{}, ErrNoEligibleCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	category := s.categories[s.rng.Intn(len(s.categories))]
	models := s.byCategory[category]

	i := s.rng.Intn(len(models))
	j := s.rng.Intn(len(models) - 1)
	if j >= i {
		j++
	}

	return model.Battle{
		Category: category,
		A:        s.contestant(models[i], category),
		B:        s.contestant(models[j], category),
	}, nil
}

// contestant picks one joke variant for the model in the category.
// Callers hold s.mu.
func (s *Selector) contestant(name, category string) model.Contestant {
	jokes := s.catalog[name][category]
	return model.Contestant{
		Model: name,
		Joke:  jokes[s.rng.Intn(len(jokes))],
	}
}
