package slots

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, size int) *Pool {
	t.Helper()
	p, err := New(t.TempDir(), size)
	require.NoError(t, err)
	return p
}

func TestNewRejectsBadArgs(t *testing.T) {
	_, err := New(t.TempDir(), 0)
	assert.Error(t, err)

	_, err = New("", 3)
	assert.Error(t, err)
}

func TestNewRemovesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "file_1.ogg")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o600))

	_, err := New(dir, 3)
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTryAcquireFirstFit(t *testing.T) {
	p := newTestPool(t, 3)

	for i := 0; i < 3; i++ {
		s, err := p.TryAcquire()
		require.NoError(t, err)
		assert.Equal(t, i, s.Index)
		assert.Equal(t, "file_"+string(rune('0'+i))+".ogg", filepath.Base(s.Path))
	}

	require.NoError(t, p.Release(1))
	s, err := p.TryAcquire()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Index)
}

func TestTryAcquireSaturation(t *testing.T) {
	p := newTestPool(t, DefaultSize)

	for i := 0; i < DefaultSize; i++ {
		_, err := p.TryAcquire()
		require.NoError(t, err)
	}
	assert.Equal(t, DefaultSize, p.InUse())

	_, err := p.TryAcquire()
	assert.ErrorIs(t, err, ErrBusy)
}

func TestPathsAreStable(t *testing.T) {
	p := newTestPool(t, 2)

	first, err := p.TryAcquire()
	require.NoError(t, err)
	require.NoError(t, p.Release(first.Index))

	again, err := p.TryAcquire()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestReleaseErrors(t *testing.T) {
	p := newTestPool(t, 2)

	assert.ErrorIs(t, p.Release(0), ErrNotHeld)
	assert.ErrorIs(t, p.Release(-1), ErrBadIndex)
	assert.ErrorIs(t, p.Release(2), ErrBadIndex)

	s, err := p.TryAcquire()
	require.NoError(t, err)
	require.NoError(t, p.Release(s.Index))
	assert.ErrorIs(t, p.Release(s.Index), ErrNotHeld)
	assert.Equal(t, 0, p.InUse())
}

func TestAcquireWaitsForRelease(t *testing.T) {
	p := newTestPool(t, 1)

	held, err := p.TryAcquire()
	require.NoError(t, err)

	got := make(chan Slot, 1)
	go func() {
		s, err := p.Acquire(context.Background())
		if err == nil {
			got <- s
		}
	}()

	select {
	case <-got:
		t.Fatal("acquired while pool was full")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, p.Release(held.Index))

	select {
	case s := <-got:
		assert.Equal(t, 0, s.Index)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not woken by release")
	}
}

func TestAcquireHonoursContext(t *testing.T) {
	p := newTestPool(t, 1)
	_, err := p.TryAcquire()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = p.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, p.InUse())
}

func TestConcurrentExclusivity(t *testing.T) {
	const (
		size    = 3
		workers = 16
		rounds  = 50
	)
	p := newTestPool(t, size)

	var (
		mu     sync.Mutex
		owners = make(map[int]bool)
		wg     sync.WaitGroup
		failed bool
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				s, err := p.Acquire(context.Background())
				if err != nil {
					return
				}

				mu.Lock()
				if owners[s.Index] {
					failed = true
				}
				owners[s.Index] = true
				mu.Unlock()

				time.Sleep(time.Microsecond)

				mu.Lock()
				owners[s.Index] = false
				mu.Unlock()

				if err := p.Release(s.Index); err != nil {
					mu.Lock()
					failed = true
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.False(t, failed, "slot handed to two owners at once")
	assert.Equal(t, 0, p.InUse())
}
