// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/arena/internal/adapters/content"
	repository "github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/elo"
	"github.com/okian/arena/internal/domain/leaderboard"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/pairing"
	"github.com/okian/arena/internal/domain/session"
	"github.com/okian/arena/internal/domain/types"
	"github.com/okian/arena/pkg/logger"
	"github.com/okian/arena/pkg/metrics"
)

// Service owns the rating store, the pairing selector, and the battle
// session registry, and funnels every rating mutation through the
// store's locking accessor.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	selector *pairing.Selector
	registry *session.Registry

	// Static content
	roster  []string
	catalog model.Catalog

	// Configuration
	modelsFile    string
	jokesFile     string
	stateFile     string
	kFactor       float64
	battleTTL     time.Duration
	lockTimeout   time.Duration
	sweepInterval time.Duration
	explanation   string
	randSource    rand.Source

	// Last state that loaded cleanly. Battle pairing falls back to it
	// for rank display when the durable file turns corrupt, so the
	// arena keeps serving battles while an operator repairs the file.
	lastGood atomic.Pointer[model.RatingState]

	// State
	started     bool
	sweepCancel context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithContentFiles sets the roster CSV and joke catalog JSON paths.
func WithContentFiles(modelsFile, jokesFile string) Option {
	return func(s *Service) {
		if modelsFile != "" {
			s.modelsFile = modelsFile
		}
		if jokesFile != "" {
			s.jokesFile = jokesFile
		}
	}
}

// WithContent injects the roster and catalog directly, skipping file
// loading. Mainly for tests.
func WithContent(roster []string, catalog model.Catalog) Option {
	return func(s *Service) {
		s.roster = roster
		s.catalog = catalog
	}
}

// WithStateFile sets the durable rating state path.
func WithStateFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.stateFile = path
		}
	}
}

// WithStore injects a rating store, overriding the file-backed default.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithKFactor sets the maximum Elo swing per battle.
func WithKFactor(k float64) Option {
	return func(s *Service) {
		if k > 0 {
			s.kFactor = k
		}
	}
}

// WithBattleTTL bounds how long a drawn battle stays votable.
func WithBattleTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.battleTTL = ttl
		}
	}
}

// WithLockTimeout bounds waiting for the state file lock.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.lockTimeout = timeout
		}
	}
}

// WithSweepInterval configures the abandoned-session sweeper.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithExplanation overrides the leaderboard blurb.
func WithExplanation(text string) Option {
	return func(s *Service) {
		if text != "" {
			s.explanation = text
		}
	}
}

// WithRandSource injects the pairing random source for deterministic tests.
func WithRandSource(src rand.Source) Option {
	return func(s *Service) {
		s.randSource = src
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		modelsFile:    "models.csv",
		jokesFile:     "jokes.json",
		stateFile:     "elo_state.json",
		kFactor:       elo.DefaultK,
		battleTTL:     5 * time.Minute,
		lockTimeout:   3 * time.Second,
		sweepInterval: time.Minute,
		explanation:   leaderboard.Explanation,
		logger:        nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the static content, opens the rating store, and verifies
// the durable state is readable. A corrupt state file fails startup;
// fabricating a fresh state over it would erase real rating history.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting arena service...")

	if s.roster == nil {
		roster, err := content.LoadRoster(s.modelsFile)
		if err != nil {
			return err
		}
		s.roster = roster
	}
	if s.catalog == nil {
		catalog, err := content.LoadCatalog(s.jokesFile)
		if err != nil {
			return err
		}
		s.catalog = catalog
	}

	var pairingOpts []pairing.Option
	if s.randSource != nil {
		pairingOpts = append(pairingOpts, pairing.WithRandSource(s.randSource))
	}
	s.selector = pairing.New(s.catalog, s.roster, pairingOpts...)
	s.registry = session.NewRegistry(session.WithTTL(s.battleTTL))
	if s.store == nil {
		s.store = repository.NewFileStore(s.stateFile, s.roster,
			repository.WithLockTimeout(s.lockTimeout),
		)
	}

	state, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("initial state load: %w", err)
	}
	s.lastGood.Store(state)
	metrics.UpdateTotalModels(len(state.Ratings))
	metrics.UpdateTotalVotes(state.TotalVotes)

	sweepCtx, cancel := context.WithCancel(context.Background())
	s.sweepCancel = cancel
	go s.runSweeper(sweepCtx)

	s.started = true
	s.logger.Info(ctx, "arena service started",
		logger.Int("models", len(s.roster)),
		logger.Int("categories", len(s.selector.Categories())),
		logger.Duration("battleTTL", s.battleTTL),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping arena service...")

	if s.sweepCancel != nil {
		s.sweepCancel()
	}

	s.started = false
	s.logger.Info(context.Background(), "arena service stopped")
}

// runSweeper periodically trims battle sessions nobody voted on. Lazy
// expiry on lookup keeps votes correct either way; this only bounds the
// memory held by abandoned battles.
func (s *Service) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := s.registry.Sweep()
			metrics.RecordSessionsExpired(removed)
			metrics.UpdateActiveBattles(s.registry.Len())
			if removed > 0 {
				s.logger.Debug(ctx, "swept expired battles", logger.Int("removed", removed))
			}
		}
	}
}

// Leaderboard returns the current public standings.
func (s *Service) Leaderboard(ctx context.Context) (types.LeaderboardView, error) {
	state, err := s.loadState(ctx)
	if err != nil {
		return types.LeaderboardView{}, err
	}

	return types.LeaderboardView{
		Leaderboard: leaderboard.Project(state),
		TotalVotes:  state.TotalVotes,
		Explanation: s.explanation,
	}, nil
}

// Rank returns the standing of a single model by id.
func (s *Service) Rank(ctx context.Context, modelID string) (leaderboard.Entry, error) {
	state, err := s.loadState(ctx)
	if err != nil {
		return leaderboard.Entry{}, err
	}
	for _, e := range leaderboard.Project(state) {
		if e.Model == modelID {
			return e, nil
		}
	}
	return leaderboard.Entry{}, ErrModelNotFound
}

// DrawBattle picks a fresh pairing, registers the session, and returns
// the anonymized view. Contestant identity stays server-side until the
// vote; only current ranks are exposed.
func (s *Service) DrawBattle(ctx context.Context) (types.BattleView, error) {
	battle, err := s.selector.Draw()
	if err != nil {
		return types.BattleView{}, err
	}

	// Ranks are display-only; a stale snapshot beats failing the draw
	// when the durable file is corrupt.
	state, err := s.loadState(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrStateCorrupt) {
			return types.BattleView{}, err
		}
		state = s.lastGood.Load()
		if state == nil {
			return types.BattleView{}, err
		}
		s.logger.Warn(ctx, "serving ranks from last good state", logger.Error(err))
	}
	ranks := leaderboard.Ranks(leaderboard.Project(state))

	id := s.registry.Create(battle.Category, battle.A.Model, battle.B.Model)
	metrics.RecordBattleCreated()
	metrics.UpdateActiveBattles(s.registry.Len())

	return types.BattleView{
		BattleID: id,
		Category: battle.Category,
		Contestants: []types.BattleContestant{
			{ID: types.HandleA, Rank: ranks[battle.A.Model], Joke: battle.A.Joke},
			{ID: types.HandleB, Rank: ranks[battle.B.Model], Joke: battle.B.Joke},
		},
	}, nil
}

// Vote validates a battle result against the session registry, applies
// the Elo update under the store lock, and returns the refreshed
// standings. A battle id is consumed by its first valid vote; any second
// attempt fails with session.ErrNotFound and never touches rating state.
func (s *Service) Vote(ctx context.Context, battleID, winner string, draw bool) (types.VoteResult, error) {
	sess, err := s.registry.Resolve(battleID)
	if err != nil {
		metrics.RecordVoteRejected("unknown_battle")
		return types.VoteResult{}, err
	}

	outcome, err := resolveOutcome(sess, winner, draw)
	if err != nil {
		metrics.RecordVoteRejected("invalid_winner")
		return types.VoteResult{}, err
	}

	// Consume after validation so an invalid winner does not burn the
	// battle. A concurrent vote may win the race here; the loser gets
	// the same not-found as any other replay.
	if _, err := s.registry.Consume(battleID); err != nil {
		metrics.RecordVoteRejected("unknown_battle")
		return types.VoteResult{}, err
	}
	metrics.UpdateActiveBattles(s.registry.Len())

	state, err := s.store.WithLock(ctx, func(state *model.RatingState) error {
		elo.Apply(state, sess.ModelA, sess.ModelB, outcome, s.kFactor)
		return nil
	})
	if err != nil {
		s.recordStateError(err)
		return types.VoteResult{}, err
	}
	s.lastGood.Store(state)

	if outcome == elo.Draw {
		metrics.RecordVote("draw")
	} else {
		metrics.RecordVote("win")
	}
	metrics.UpdateTotalVotes(state.TotalVotes)
	metrics.UpdateTotalModels(len(state.Ratings))

	return types.VoteResult{
		Leaderboard: leaderboard.Project(state),
		TotalVotes:  state.TotalVotes,
		Revealed: map[string]string{
			types.HandleA: sess.ModelA,
			types.HandleB: sess.ModelB,
		},
	}, nil
}

// resolveOutcome maps the submitted winner onto the session. Votes may
// name either the positional handle or, once revealed by an earlier
// response, the model itself.
func resolveOutcome(sess session.Session, winner string, draw bool) (elo.Outcome, error) {
	if draw {
		return elo.Draw, nil
	}
	switch winner {
	case types.HandleA, sess.ModelA:
		return elo.AWins, nil
	case types.HandleB, sess.ModelB:
		return elo.BWins, nil
	default:
		return 0, ErrInvalidWinner
	}
}

// loadState reads the durable state and refreshes the in-memory snapshot
// on success.
func (s *Service) loadState(ctx context.Context) (*model.RatingState, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		s.recordStateError(err)
		return nil, err
	}
	s.lastGood.Store(state)
	return state, nil
}

func (s *Service) recordStateError(err error) {
	switch {
	case errors.Is(err, repository.ErrStateCorrupt):
		metrics.RecordStateError("corrupt")
	case errors.Is(err, repository.ErrLockTimeout):
		metrics.RecordStateError("lock_timeout")
	default:
		metrics.RecordStateError("io")
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   s.started,
		"models":    len(s.roster),
		"battleTTL": s.battleTTL.String(),
	}

	if s.started {
		stats["categories"] = len(s.selector.Categories())
		stats["activeBattles"] = s.registry.Len()
		if state := s.lastGood.Load(); state != nil {
			stats["totalVotes"] = state.TotalVotes
		}
		metrics.UpdateActiveBattles(s.registry.Len())
	}

	return stats
}
