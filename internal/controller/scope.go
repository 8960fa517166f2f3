package controller

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Scope binds controller work to the lifetime of whatever consumes its
// state: a CLI command or one bridge connection. Closing the scope cancels
// every call still in flight, so a dismissed consumer leaves nothing
// running behind it.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
}

func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

func (s *Scope) Context() context.Context {
	return s.ctx
}

// Go runs fn in the scope. The error is already published on the
// controller's channels; it is kept only for Wait.
func (s *Scope) Go(fn func(ctx context.Context) error) {
	s.group.Go(func() error {
		return fn(s.ctx)
	})
}

// Wait blocks until all work started with Go returns, and reports the
// first error.
func (s *Scope) Wait() error {
	return s.group.Wait()
}

// Close cancels outstanding work and waits for it to unwind.
func (s *Scope) Close() error {
	s.cancel()
	return s.group.Wait()
}
