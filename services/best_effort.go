package services

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Settlement is the eventual outcome of a best-effort task. Callers may
// observe it or drop it; either way the task runs to completion.
type Settlement struct {
	name    string
	done    chan struct{}
	err     error
	skipped bool
}

// BestEffort runs fn in its own goroutine. A failure or panic is logged and
// recorded on the Settlement; it never propagates to the caller.
func BestEffort(ctx context.Context, name string, fn func(context.Context) error) *Settlement {
	s := &Settlement{name: name, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		defer func() {
			if r := recover(); r != nil {
				s.err = fmt.Errorf("%s panicked: %v", name, r)
				log.Printf("Warning: %v", s.err)
			}
		}()
		if err := fn(ctx); err != nil {
			s.err = err
			log.Printf("Warning: %s failed (ignored): %v", name, err)
		}
	}()
	return s
}

// Skipped returns an already settled task that never ran.
func Skipped(name string, reason error) *Settlement {
	s := &Settlement{name: name, done: make(chan struct{}), err: reason, skipped: true}
	close(s.done)
	return s
}

func (s *Settlement) Name() string { return s.name }

func (s *Settlement) Done() <-chan struct{} { return s.done }

// Settled reports without blocking whether the task has finished.
func (s *Settlement) Settled() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Wait blocks for at most d. It returns false when the task is still running.
func (s *Settlement) Wait(ctx context.Context, d time.Duration) bool {
	if s.Settled() {
		return true
	}
	if d <= 0 {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.done:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Err is only meaningful once the task has settled.
func (s *Settlement) Err() error {
	if !s.Settled() {
		return nil
	}
	return s.err
}

func (s *Settlement) WasSkipped() bool { return s.skipped }
