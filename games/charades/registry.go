/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package charades

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	DefaultRoundDuration = 60 * time.Second

	maxCodeAttempts = 1000
)

// Registry owns every live session, keyed by code. It is created once and
// passed to whatever needs it.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	words         *WordBank
	roundDuration time.Duration
	now           func() time.Time
	pick          func(n int) int
	newCode       func() (string, error)
}

type Option func(*Registry)

// WithRoundDuration sets the countdown length of every new session.
func WithRoundDuration(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.roundDuration = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithPicker replaces the uniform random index source used for word draws.
// pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(r *Registry) {
		r.pick = pick
	}
}

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(r *Registry) {
		r.newCode = gen
	}
}

func NewRegistry(words *WordBank, opts ...Option) *Registry {
	r := &Registry{
		sessions:      make(map[string]*Session),
		words:         words,
		roundDuration: DefaultRoundDuration,
		now:           time.Now,
		pick:          rand.IntN,
		newCode:       GenerateCode,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Words() *WordBank {
	return r.words
}

// Create allocates a fresh code, retrying on collision, and stores a new
// session in the lobby.
func (r *Registry) Create() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for range maxCodeAttempts {
		code, err := r.newCode()
		if err != nil {
			return "", fmt.Errorf("generating session code: %w", err)
		}
		if _, exists := r.sessions[code]; exists {
			continue
		}

		r.sessions[code] = newSession(code, r.words, r.roundDuration, r.now, r.pick)
		return code, nil
	}

	return "", ErrCodesExhausted
}

func (r *Registry) Get(code string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[code]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sessions returns the sessions present at the time of the call, in no
// particular order.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		list = append(list, s)
	}
	return list
}

// Reap removes sessions whose last activity is before cutoff, marks them
// closed and returns them.
func (r *Registry) Reap(cutoff time.Time) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var reaped []*Session
	for code, s := range r.sessions {
		s.mu.Lock()
		if s.lastActivity.Before(cutoff) {
			s.closed = true
			delete(r.sessions, code)
			reaped = append(reaped, s)
		}
		s.mu.Unlock()
	}
	return reaped
}
