package server

import (
	"sync"
	"time"

	"github.com/curlyarrow/curlyarrow/pkg/mech"
	"github.com/curlyarrow/curlyarrow/pkg/mol"
)

// liveSession is one molecule under study. The mutex serializes the
// advance loop against handler reads and moves; the mech core itself is
// single-writer and does no locking of its own.
type liveSession struct {
	mu sync.Mutex

	id        string
	name      string
	createdAt time.Time

	// molfile keeps the source text so snapshots can embed it.
	molfile string
	mol     *mol.Molecule
	sess    *mech.Session
}

// registry holds the server's live sessions keyed by ID.
type registry struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*liveSession)}
}

func (r *registry) add(ls *liveSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[ls.id] = ls
}

func (r *registry) get(id string) (*liveSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ls, ok := r.sessions[id]
	return ls, ok
}

// remove drops the session and reports whether it existed.
func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// each calls fn for every live session. The registry lock is held only
// while collecting the list, never during fn, so fn may take the
// per-session lock freely.
func (r *registry) each(fn func(*liveSession)) {
	r.mu.RLock()
	all := make([]*liveSession, 0, len(r.sessions))
	for _, ls := range r.sessions {
		all = append(all, ls)
	}
	r.mu.RUnlock()

	for _, ls := range all {
		fn(ls)
	}
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
