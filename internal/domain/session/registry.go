// Package session tracks in-flight battles between the draw and the vote.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default registry configuration constants.
const (
	defaultTTL = 5 * time.Minute
)

// Session is the ephemeral record tying an opaque battle id to the pair
// it was drawn for. It is created on pairing and consumed by the first
// successful vote.
type Session struct {
	ID        string
	Category  string
	ModelA    string
	ModelB    string
	CreatedAt time.Time
}

// Registry stores sessions in process memory behind a mutex. Ids expire
// lazily on lookup once older than the TTL, and Consume removes them so a
// second vote for the same battle can never double-apply. A multi-process
// deployment would need this state externalized; it is the known scaling
// caveat of the design.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithTTL sets how long an unused battle stays resolvable.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock injects a time source for deterministic expiry tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates an empty registry with configuration options.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]Session),
		ttl:      defaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create stores a new session and returns its fresh opaque id.
func (r *Registry) Create(category, modelA, modelB string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Session{
		ID:        uuid.NewString(),
		Category:  category,
		ModelA:    modelA,
		ModelB:    modelB,
		CreatedAt: r.now(),
	}
	r.sessions[s.ID] = s
	return s.ID
}

// Resolve returns the live session for id. Unknown, expired, and already
// consumed ids all yield ErrNotFound so callers cannot probe which it was.
func (r *Registry) Resolve(id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(id, false)
}

// Consume is Resolve plus removal, enforcing exactly-once vote acceptance
// per battle id.
func (r *Registry) Consume(id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(id, true)
}

// lookup implements the shared resolve path. Callers hold r.mu.
func (r *Registry) lookup(id string, remove bool) (Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if r.now().Sub(s.CreatedAt) > r.ttl {
		delete(r.sessions, id)
		return Session{}, ErrNotFound
	}
	if remove {
		delete(r.sessions, id)
	}
	return s, nil
}

// Len returns the number of stored sessions, expired ones included until
// a lookup or sweep trims them.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes every expired session and reports how many were dropped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now()
	removed := 0
	for id, s := range r.sessions {
		if cutoff.Sub(s.CreatedAt) > r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

