package review

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/repository"
)

// Registry holds one review session per login session id.
type Registry struct {
	store repository.SubmissionStore
	log   *zap.Logger
	loc   *time.Location
	links Links
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session *Session
	expires time.Time
	ready   chan struct{}
}

func NewRegistry(store repository.SubmissionStore, log *zap.Logger, loc *time.Location, links Links) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		store:    store,
		log:      log,
		loc:      loc,
		links:    links,
		now:      time.Now,
		sessions: map[string]*entry{},
	}
}

// Enter opens a fresh review session for id, replacing any earlier one, and
// loads it. Sessions past their expiry are purged here.
func (r *Registry) Enter(ctx context.Context, id string, expires time.Time) *Session {
	r.mu.Lock()
	e := r.enterLocked(id, expires)
	r.mu.Unlock()
	return r.load(ctx, e)
}

// GetOrEnter returns the live session for id, or enters one. The lookup and
// the insert happen under one lock, so concurrent first requests of a login
// share a single session; later callers wait for its first load.
func (r *Registry) GetOrEnter(ctx context.Context, id string, expires time.Time) *Session {
	r.mu.Lock()
	if e, ok := r.sessions[id]; ok && e.expires.After(r.now()) {
		r.mu.Unlock()
		select {
		case <-e.ready:
		case <-ctx.Done():
		}
		return e.session
	}
	e := r.enterLocked(id, expires)
	r.mu.Unlock()
	return r.load(ctx, e)
}

func (r *Registry) enterLocked(id string, expires time.Time) *entry {
	now := r.now()
	for k, e := range r.sessions {
		if !e.expires.After(now) {
			delete(r.sessions, k)
		}
	}
	e := &entry{
		session: NewSession(r.store, r.log.With(zap.String("session", id)), r.loc, r.links),
		expires: expires,
		ready:   make(chan struct{}),
	}
	r.sessions[id] = e
	return e
}

func (r *Registry) load(ctx context.Context, e *entry) *Session {
	defer close(e.ready)
	e.session.Load(ctx)
	return e.session
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok || !e.expires.After(r.now()) {
		return nil, false
	}
	return e.session, true
}

func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
