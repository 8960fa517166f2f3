package controller

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestScopeCloseCancelsWork(t *testing.T) {
	s := NewScope(context.Background())
	started := make(chan struct{})
	s.Go(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	done := make(chan error, 1)
	go func() { done <- s.Close() }()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("close err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("close did not return")
	}
}

func TestScopeWaitReportsFirstError(t *testing.T) {
	s := NewScope(context.Background())
	boom := errors.New("boom")
	s.Go(func(ctx context.Context) error { return nil })
	s.Go(func(ctx context.Context) error { return boom })
	if err := s.Wait(); !errors.Is(err, boom) {
		t.Errorf("wait err = %v, want boom", err)
	}
	s.Close()
}
