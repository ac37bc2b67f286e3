// Package ratelimit implements fixed-window request counters keyed by client
// identity. Counter state lives behind the Store interface so a single-process
// map and a shared Redis deployment are interchangeable.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrLimitExhausted is returned by Consume once the window budget is spent.
var ErrLimitExhausted = errors.New("rate limit exhausted")

// Store increments the counter for key in the current fixed window and
// returns the post-increment count. The increment must be atomic per key.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Limiter struct {
	store  Store
	name   string
	points int64
	window time.Duration
}

// New builds a limiter allowing points requests per window. The name
// namespaces counter keys so independent limiters can share one store.
func New(name string, store Store, points int64, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		name:   name,
		points: points,
		window: window,
	}
}

// Consume spends one point for key. Past the budget it returns
// ErrLimitExhausted and the caller must not run the guarded handler.
func (l *Limiter) Consume(ctx context.Context, key string) error {
	count, err := l.store.Incr(ctx, l.name+":"+key, l.window)
	if err != nil {
		return err
	}
	if count > l.points {
		return ErrLimitExhausted
	}
	return nil
}
