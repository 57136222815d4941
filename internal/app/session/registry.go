package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Registry holds the live sessions of one kind, bounded by an LRU. Sessions
// pushed out of the LRU, removed, or reaped are disposed.
type Registry[Q any, I any] struct {
	name     string
	sessions *lru.Cache[string, *Session[Q, I]]
	factory  func() *Session[Q, I]
	idleTTL  time.Duration
	logger   *zap.Logger
}

// NewRegistry creates a registry holding at most size sessions built by
// factory. Sessions idle for longer than idleTTL are removed by Reap.
func NewRegistry[Q any, I any](name string, size int, idleTTL time.Duration, factory func() *Session[Q, I], logger *zap.Logger) (*Registry[Q, I], error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry[Q, I]{
		name:    name,
		factory: factory,
		idleTTL: idleTTL,
		logger:  logger.With(zap.String("registry", name)),
	}

	cache, err := lru.NewWithEvict(size, func(id string, s *Session[Q, I]) {
		s.Dispose()
		r.logger.Debug("session disposed", zap.String("session_id", id))
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s session registry: %w", name, err)
	}
	r.sessions = cache
	return r, nil
}

// Name identifies the registry in logs and ops endpoints.
func (r *Registry[Q, I]) Name() string {
	return r.name
}

// Create starts a new session and returns its id.
func (r *Registry[Q, I]) Create() (string, *Session[Q, I]) {
	id := uuid.NewString()
	s := r.factory()
	if evicted := r.sessions.Add(id, s); evicted {
		r.logger.Info("session registry full, evicted least recently used session")
	}
	return id, s
}

// Get returns a live session.
func (r *Registry[Q, I]) Get(id string) (*Session[Q, I], bool) {
	s, ok := r.sessions.Get(id)
	if !ok || s.Disposed() {
		return nil, false
	}
	return s, true
}

// Remove disposes and forgets a session. It reports whether id was known.
func (r *Registry[Q, I]) Remove(id string) bool {
	return r.sessions.Remove(id)
}

// Reap removes sessions idle since before now-idleTTL, plus any that were
// disposed directly. It returns the number removed.
func (r *Registry[Q, I]) Reap(now time.Time) int {
	removed := 0
	for _, id := range r.sessions.Keys() {
		s, ok := r.sessions.Peek(id)
		if !ok {
			continue
		}
		if s.Disposed() || (r.idleTTL > 0 && now.Sub(s.LastActive()) > r.idleTTL) {
			if r.sessions.Remove(id) {
				removed++
			}
		}
	}
	return removed
}

// Len returns the number of tracked sessions.
func (r *Registry[Q, I]) Len() int {
	return r.sessions.Len()
}

// Close disposes every session.
func (r *Registry[Q, I]) Close() {
	r.sessions.Purge()
}
