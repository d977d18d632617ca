package guard

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquireRelease(t *testing.T) {
	g := New()

	require.True(t, g.TryAcquire("a"))
	assert.False(t, g.TryAcquire("a"))
	assert.True(t, g.TryAcquire("b"))
	assert.True(t, g.InProgress("a"))

	g.Release("a")
	assert.False(t, g.InProgress("a"))
	assert.True(t, g.TryAcquire("a"))

	g.Release("never-held")
}

func TestDo_ReleasesOnError(t *testing.T) {
	g := New()
	boom := errors.New("boom")

	ran, err := g.Do("k", func() error { return boom })
	assert.True(t, ran)
	assert.ErrorIs(t, err, boom)
	assert.False(t, g.InProgress("k"))
}

func TestDo_ReleasesOnPanic(t *testing.T) {
	g := New()

	func() {
		defer func() { _ = recover() }()
		_, _ = g.Do("k", func() error { panic("x") })
	}()

	assert.False(t, g.InProgress("k"))
}

func TestDo_SecondCallWhileInFlightIsDropped(t *testing.T) {
	g := New()
	started := make(chan struct{})
	finish := make(chan struct{})
	var calls int32

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = g.Do("k", func() error {
			atomic.AddInt32(&calls, 1)
			close(started)
			<-finish
			return nil
		})
	}()

	<-started
	ran, err := g.Do("k", func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	assert.False(t, ran)
	assert.NoError(t, err)

	close(finish)
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestKey_ScopedPerActor(t *testing.T) {
	id := uuid.New()
	a, b := uuid.New(), uuid.New()

	assert.NotEqual(t, Key(a, "event", id), Key(b, "event", id))
	assert.NotEqual(t, Key(a, "event", id), Key(a, "provider", id))
	assert.Contains(t, Key(a, "provider", id), "provider-"+id.String())
}
