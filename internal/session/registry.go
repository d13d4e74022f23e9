package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"plantfinder/pkg/logger"
)

var ErrUnknownSession = errors.New("session: unknown or expired")

// Broadcaster fans state changes out to a session's live subscribers.
type Broadcaster interface {
	Broadcast(sessionID string, v any)
	CloseSession(sessionID string)
}

// Registry maps session ids to facades. Sessions expire after ttl without
// use; every successful Get extends the lease.
type Registry struct {
	plants   Searcher
	hub      Broadcaster
	ttl      time.Duration
	sessions *cache.Cache
	log      *zap.Logger
}

func NewRegistry(plants Searcher, hub Broadcaster, ttl time.Duration, log *zap.Logger) *Registry {
	r := &Registry{
		plants:   plants,
		hub:      hub,
		ttl:      ttl,
		sessions: cache.New(ttl, ttl/2),
		log:      logger.OrNop(log).With(zap.String("component", "sessions")),
	}
	r.sessions.OnEvicted(func(id string, _ any) {
		r.log.Debug("session evicted", zap.String("session_id", id))
		if r.hub != nil {
			r.hub.CloseSession(id)
		}
	})
	return r
}

// Create starts a new session with an empty facade.
func (r *Registry) Create() (string, *Facade) {
	id := uuid.NewString()
	var onChange func(State)
	if r.hub != nil {
		onChange = func(s State) { r.hub.Broadcast(id, s) }
	}
	f := NewFacade(r.plants, onChange, r.log.With(zap.String("session_id", id)))
	r.sessions.Set(id, f, cache.DefaultExpiration)
	r.log.Info("session created", zap.String("session_id", id))
	return id, f
}

func (r *Registry) Get(id string) (*Facade, error) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrUnknownSession
	}
	f := v.(*Facade)
	r.sessions.Set(id, f, cache.DefaultExpiration)
	return f, nil
}

// End drops the session and everything it memoized.
func (r *Registry) End(id string) error {
	if _, ok := r.sessions.Get(id); !ok {
		return ErrUnknownSession
	}
	r.sessions.Delete(id)
	r.log.Info("session ended", zap.String("session_id", id))
	return nil
}

func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}
