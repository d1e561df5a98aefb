// File: failpoint/failpoint.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package failpoint

import (
	"context"
	"sync"
	"sync/atomic"
)

// FailPoint is a named switch with an entry counter.
type FailPoint struct {
	name string

	// fast-path mirror of enabled, read by Pause without the lock
	armed atomic.Bool

	mu sync.Mutex
	// GUARDED_BY(mu)
	enabled bool
	// GUARDED_BY(mu)
	entered int64
	// Closed by Disable to release paused goroutines.
	//
	// GUARDED_BY(mu)
	release chan struct{}
	// Closed and replaced on every entry to wake waiters.
	//
	// GUARDED_BY(mu)
	changed chan struct{}
}

// New creates a disabled fail point.
func New(name string) *FailPoint {
	return &FailPoint{
		name:    name,
		release: make(chan struct{}),
		changed: make(chan struct{}),
	}
}

// Name returns the fail point name.
func (fp *FailPoint) Name() string {
	if fp == nil {
		return ""
	}
	return fp.name
}

// Enable arms the fail point and returns the entry count at the time it was
// armed. Enabling an enabled fail point is a no-op.
func (fp *FailPoint) Enable() int64 {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if !fp.enabled {
		fp.enabled = true
		fp.release = make(chan struct{})
		fp.armed.Store(true)
	}
	return fp.entered
}

// Disable disarms the fail point and releases every paused goroutine.
func (fp *FailPoint) Disable() {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.enabled {
		fp.enabled = false
		fp.armed.Store(false)
		close(fp.release)
	}
}

// Enabled reports whether Pause currently blocks.
func (fp *FailPoint) Enabled() bool {
	if fp == nil {
		return false
	}
	return fp.armed.Load()
}

// TimesEntered returns how many times Pause was reached while enabled.
func (fp *FailPoint) TimesEntered() int64 {
	if fp == nil {
		return 0
	}
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.entered
}

// Pause is the instrumented site. When the fail point is enabled it counts
// an entry and blocks until Disable.
func (fp *FailPoint) Pause() {
	if fp == nil || !fp.armed.Load() {
		return
	}
	fp.mu.Lock()
	if !fp.enabled {
		fp.mu.Unlock()
		return
	}
	fp.entered++
	close(fp.changed)
	fp.changed = make(chan struct{})
	release := fp.release
	fp.mu.Unlock()

	<-release
}

// WaitForTimesEntered blocks until the total entry count reaches n, or ctx
// ends.
func (fp *FailPoint) WaitForTimesEntered(ctx context.Context, n int64) error {
	for {
		fp.mu.Lock()
		if fp.entered >= n {
			fp.mu.Unlock()
			return nil
		}
		changed := fp.changed
		fp.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Block is a scoped enablement, counting entries relative to the moment the
// fail point was enabled.
type Block struct {
	fp      *FailPoint
	initial int64
	once    sync.Once
}

// EnableBlock enables fp and returns a handle that disables it on Close.
func (fp *FailPoint) EnableBlock() *Block {
	return &Block{fp: fp, initial: fp.Enable()}
}

// FailPoint returns the underlying fail point.
func (b *Block) FailPoint() *FailPoint {
	return b.fp
}

// WaitForTimesEntered blocks until n entries happened since the block began.
func (b *Block) WaitForTimesEntered(ctx context.Context, n int64) error {
	return b.fp.WaitForTimesEntered(ctx, b.initial+n)
}

// Close disables the fail point. Safe to call more than once.
func (b *Block) Close() {
	b.once.Do(b.fp.Disable)
}
