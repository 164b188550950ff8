// Package ratelimit paces calls to a shared external dependency with a
// rolling-window limiter: at most Limit calls per Window, across all
// concurrent callers.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

type Config struct {
	Limit  int           `envconfig:"LIMIT" split_words:"true" default:"5"`
	Window time.Duration `envconfig:"WINDOW" split_words:"true" default:"1s"`
}

type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time

	now func() time.Time
}

func New(cfg Config) (*Limiter, error) {
	if cfg.Limit <= 0 {
		return nil, errors.New("ratelimit: limit must be > 0")
	}
	if cfg.Window <= 0 {
		return nil, errors.New("ratelimit: window must be > 0")
	}
	return &Limiter{
		limit:  cfg.Limit,
		window: cfg.Window,
		stamps: make([]time.Time, 0, cfg.Limit),
		now:    time.Now,
	}, nil
}

func MustNew(cfg Config) *Limiter {
	l, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return l
}

// Acquire blocks until a call slot is available or ctx is done. The stamp
// queue is evaluated and appended under one lock acquisition, so concurrent
// callers can never admit more than Limit calls per Window. Waiting is done
// off-lock against the oldest stamp's expiry and recomputed on wake.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()

		expired := 0
		for expired < len(l.stamps) && now.Sub(l.stamps[expired]) >= l.window {
			expired++
		}
		if expired > 0 {
			l.stamps = append(l.stamps[:0], l.stamps[expired:]...)
		}

		if len(l.stamps) < l.limit {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}

		wait := l.window - now.Sub(l.stamps[0])
		l.mu.Unlock()

		if wait <= 0 {
			// Oldest stamp expired between evaluation and here; retry.
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Pending reports how many stamps are currently inside the window.
func (l *Limiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for _, s := range l.stamps {
		if now.Sub(s) < l.window {
			n++
		}
	}
	return n
}
