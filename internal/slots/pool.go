// Package slots hands out a fixed set of staging files for voice downloads.
package slots

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	ErrBusy     = errors.New("no free slot")
	ErrNotHeld  = errors.New("slot is not held")
	ErrBadIndex = errors.New("slot index out of range")
)

const DefaultSize = 5

type Slot struct {
	Index int
	Path  string
}

// Pool is a first-fit pool of staging paths. A slot has at most one owner
// between Acquire and the matching Release.
type Pool struct {
	mu    sync.Mutex
	busy  []bool
	paths []string

	// wake is closed and replaced on every release.
	wake chan struct{}
}

// New prepares dir and returns a pool of size slots inside it.
// Files left over from a previous run are removed.
func New(dir string, size int) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid pool size %d", size)
	}
	if dir == "" {
		return nil, errors.New("empty slot dir")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create slot dir: %w", err)
	}

	p := &Pool{
		busy:  make([]bool, size),
		paths: make([]string, size),
		wake:  make(chan struct{}),
	}
	for i := range p.paths {
		p.paths[i] = filepath.Join(dir, fmt.Sprintf("file_%d.ogg", i))
		if err := os.Remove(p.paths[i]); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("clean slot %d: %w", i, err)
		}
	}
	return p, nil
}

func (p *Pool) Size() int {
	return len(p.busy)
}

func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, b := range p.busy {
		if b {
			n++
		}
	}
	return n
}

// TryAcquire takes the lowest free slot or returns ErrBusy.
func (p *Pool) TryAcquire() (Slot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.take()
	if !ok {
		return Slot{}, ErrBusy
	}
	return s, nil
}

// Acquire blocks until a slot frees up or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (Slot, error) {
	for {
		p.mu.Lock()
		s, ok := p.take()
		wake := p.wake
		p.mu.Unlock()

		if ok {
			return s, nil
		}

		select {
		case <-wake:
		case <-ctx.Done():
			return Slot{}, ctx.Err()
		}
	}
}

func (p *Pool) Release(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.busy) {
		return fmt.Errorf("%w: %d", ErrBadIndex, index)
	}
	if !p.busy[index] {
		return fmt.Errorf("%w: %d", ErrNotHeld, index)
	}

	p.busy[index] = false
	close(p.wake)
	p.wake = make(chan struct{})
	return nil
}

// take must be called with mu held.
func (p *Pool) take() (Slot, bool) {
	for i, b := range p.busy {
		if !b {
			p.busy[i] = true
			return Slot{Index: i, Path: p.paths[i]}, true
		}
	}
	return Slot{}, false
}
