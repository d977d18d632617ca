package messaging

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	repeatWindow = 10 * time.Second
	repeatLimit  = 3
)

type recentMsg struct {
	body string
	ts   time.Time
}

// repeatGuard remembers each sender's recent bodies and flags a body sent
// repeatLimit times within repeatWindow. State is per instance.
type repeatGuard struct {
	mu     sync.Mutex
	recent map[uuid.UUID][]recentMsg
}

func newRepeatGuard() *repeatGuard {
	return &repeatGuard{recent: make(map[uuid.UUID][]recentMsg)}
}

// repeated records body for sender and reports whether it crossed the limit
func (g *repeatGuard) repeated(sender uuid.UUID, body string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	kept := g.recent[sender][:0]
	count := 0
	for _, rm := range g.recent[sender] {
		if now.Sub(rm.ts) > repeatWindow {
			continue
		}
		kept = append(kept, rm)
		if rm.body == body {
			count++
		}
	}
	g.recent[sender] = append(kept, recentMsg{body: body, ts: now})
	return count >= repeatLimit
}

// prune forgets senders that have been quiet for a whole window
func (g *repeatGuard) prune(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for sender, msgs := range g.recent {
		if len(msgs) == 0 || now.Sub(msgs[len(msgs)-1].ts) > repeatWindow {
			delete(g.recent, sender)
		}
	}
}
