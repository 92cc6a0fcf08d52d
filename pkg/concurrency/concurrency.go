package concurrency

import (
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMax default max
	DefaultMax = 16
)

// GoLimit runs functions on at most max goroutines at once.
// A failing function never stops the others, callers record failures themselves.
type GoLimit struct {
	g errgroup.Group
}

// NewGoLimit new go limit
func NewGoLimit(max int) *GoLimit {
	if max <= 0 {
		max = DefaultMax
	}

	l := &GoLimit{}
	l.g.SetLimit(max)
	return l
}

// Go blocks until a slot is free, then runs fn on its own goroutine
func (l *GoLimit) Go(fn func()) {
	l.g.Go(func() error {
		fn()
		return nil
	})
}

// Wait waits for every started function
func (l *GoLimit) Wait() {
	_ = l.g.Wait()
}
