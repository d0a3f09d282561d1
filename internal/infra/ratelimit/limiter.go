// Package ratelimit holds the process-wide gate in front of the Telegram
// Bot API. Telegram's ceiling applies per process, not per bot, so one
// Limiter is built in main and shared by every sender.
package ratelimit

import (
	"sync"
	"time"
)

const DefaultPerSecond = 30

type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// New returns a limiter admitting at most perSecond calls per second.
// Non-positive values fall back to DefaultPerSecond.
func New(perSecond int) *Limiter {
	if perSecond <= 0 {
		perSecond = DefaultPerSecond
	}
	return &Limiter{
		interval: time.Second / time.Duration(perSecond),
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

func (l *Limiter) Interval() time.Duration { return l.interval }

// Acquire blocks until at least one interval has passed since the previous
// Acquire returned and reports how long it waited. The caller sleeps while
// holding the gate, so concurrent callers are admitted strictly one at a
// time. It cannot be cancelled.
func (l *Limiter) Acquire() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	var waited time.Duration
	if !l.last.IsZero() {
		if wait := l.last.Add(l.interval).Sub(l.now()); wait > 0 {
			l.sleep(wait)
			waited = wait
		}
	}
	l.last = l.now()
	return waited
}
