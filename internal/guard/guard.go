// Package guard tracks actions that are currently in flight so a repeated
// submission for the same key is dropped instead of executed twice.
//
// Keys are scoped to one actor. Two different actors can still race on the
// same entity; the stores guard against that with conditional updates.
package guard

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InFlight is a set of keys whose action has started but not finished.
type InFlight struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func New() *InFlight {
	return &InFlight{active: make(map[string]struct{})}
}

// Key builds the per-actor key for an entity in a namespace, e.g. provider-<id>.
func Key(actor uuid.UUID, namespace string, id uuid.UUID) string {
	return fmt.Sprintf("%s/%s-%s", actor, namespace, id)
}

// TryAcquire marks key as in progress. It returns false if it already was.
func (g *InFlight) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[key]; busy {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

// Release clears key. Releasing a key that is not held is a no-op.
func (g *InFlight) Release(key string) {
	g.mu.Lock()
	delete(g.active, key)
	g.mu.Unlock()
}

// InProgress reports whether key is currently held.
func (g *InFlight) InProgress(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.active[key]
	return busy
}

// Do runs fn while holding key. ran is false when key was already held, in which
// case fn is not called. The key is released whether fn succeeds, fails or panics.
func (g *InFlight) Do(key string, fn func() error) (ran bool, err error) {
	if !g.TryAcquire(key) {
		return false, nil
	}
	defer g.Release(key)
	return true, fn()
}
