package messaging

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRepeatGuard_PruneForgetsQuietSenders(t *testing.T) {
	g := newRepeatGuard()
	quiet, chatty := uuid.New(), uuid.New()
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	g.repeated(quiet, "hello", start)
	g.repeated(chatty, "hello", start)
	g.repeated(chatty, "still here", start.Add(repeatWindow))

	g.prune(start.Add(repeatWindow + time.Second))

	assert.NotContains(t, g.recent, quiet)
	assert.Contains(t, g.recent, chatty)
}

func TestRepeatGuard_CountsOnlyInsideWindow(t *testing.T) {
	g := newRepeatGuard()
	sender := uuid.New()
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < repeatLimit; i++ {
		assert.False(t, g.repeated(sender, "buy now", start.Add(time.Duration(i)*time.Second)))
	}
	assert.True(t, g.repeated(sender, "buy now", start.Add(repeatLimit*time.Second)))
	assert.False(t, g.repeated(sender, "buy now", start.Add(repeatLimit*time.Second+repeatWindow+time.Second)))
}
