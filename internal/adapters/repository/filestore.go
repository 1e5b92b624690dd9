package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/pkg/filelock"
	"github.com/okian/arena/pkg/metrics"
)

// Default file store configuration constants.
const (
	defaultLockTimeout  = 3 * time.Second
	stateFilePermission = 0o644
)

// FileStore implements Store on a single JSON file. Writers hold the
// exclusive file lock for the whole load-mutate-persist cycle and publish
// the new state by writing a temp file and renaming it over the old one,
// so readers never observe a partial write.
type FileStore struct {
	path        string
	roster      []string
	lock        filelock.Locker
	lockTimeout time.Duration
}

// NewFileStore creates a store for the state file at path, seeding absent
// state from roster. The companion lock file lives next to the state file
// unless overridden.
func NewFileStore(path string, roster []string, opts ...Option) *FileStore {
	s := &FileStore{
		path:        path,
		roster:      roster,
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lock == nil {
		s.lock = filelock.New(path + ".lock")
	}
	return s
}

// Load reads the state under a shared lock.
func (s *FileStore) Load(ctx context.Context) (*model.RatingState, error) {
	release, err := s.acquire(ctx, s.lock.RLock)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release() }()

	return s.read()
}

// WithLock runs fn against the current state under the exclusive lock and
// persists the result before returning it.
func (s *FileStore) WithLock(ctx context.Context, fn func(*model.RatingState) error) (*model.RatingState, error) {
	release, err := s.acquire(ctx, s.lock.Lock)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release() }()

	state, err := s.read()
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := s.write(state); err != nil {
		return nil, err
	}
	return state, nil
}

// acquire takes the lock within the configured budget, translating the
// lock package's timeout into ErrLockTimeout for callers.
func (s *FileStore) acquire(ctx context.Context, lockFn func(context.Context) (func() error, error)) (func() error, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	start := time.Now()
	release, err := lockFn(ctx)
	metrics.RecordStateLockWait(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if errors.Is(err, filelock.ErrTimeout) {
			return nil, fmt.Errorf("%w after %s", ErrLockTimeout, s.lockTimeout)
		}
		return nil, fmt.Errorf("acquire state lock: %w", err)
	}
	return release, nil
}

// read parses the state file. Callers hold the lock.
func (s *FileStore) read() (*model.RatingState, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.NewRatingState(s.roster), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file %s: %w", s.path, err)
	}

	state, err := decodeState(raw)
	if err != nil {
		// Corruption is surfaced, never repaired: overwriting a file an
		// operator could still salvage would erase real rating history.
		return nil, fmt.Errorf("%w: %s: %v", ErrStateCorrupt, s.path, err)
	}
	state.Seed(s.roster)
	return state, nil
}

// write persists atomically: temp file in the same directory, fsync,
// rename over the old state.
func (s *FileStore) write(state *model.RatingState) error {
	start := time.Now()
	defer func() {
		metrics.RecordStateSave(float64(time.Since(start).Milliseconds()))
	}()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), stateFilePermission); err != nil {
		return fmt.Errorf("chmod temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// legacyState is the pre-wrap layout: parallel elo and vote maps plus the
// running total.
type legacyState struct {
	Elos       map[string]float64 `json:"elos"`
	Votes      map[string]int     `json:"votes"`
	TotalVotes int                `json:"total_votes"`
}

// decodeState accepts the canonical layout plus the two historical ones:
// the elos/votes split and the bare model->elo map. Older files are
// upgraded in memory and rewritten canonically on the next save.
func decodeState(raw []byte) (*model.RatingState, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	if _, ok := probe["ratings"]; ok {
		var state model.RatingState
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, err
		}
		if state.Ratings == nil {
			state.Ratings = make(map[string]model.ModelRating)
		}
		return &state, nil
	}

	if _, ok := probe["elos"]; ok {
		var legacy legacyState
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, err
		}
		state := &model.RatingState{
			Ratings:    make(map[string]model.ModelRating, len(legacy.Elos)),
			TotalVotes: legacy.TotalVotes,
		}
		for m, elo := range legacy.Elos {
			state.Ratings[m] = model.ModelRating{Elo: elo, Votes: legacy.Votes[m]}
		}
		return state, nil
	}

	var flat map[string]float64
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	state := &model.RatingState{Ratings: make(map[string]model.ModelRating, len(flat))}
	for m, elo := range flat {
		state.Ratings[m] = model.ModelRating{Elo: elo}
	}
	return state, nil
}
