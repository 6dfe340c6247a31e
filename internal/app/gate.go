package app

import (
	"sync"

	"wellmatch/internal/domain"
)

// Gate admits at most one in-flight run per action key. A busy key is the
// disabled control: a second attempt is refused, not queued or joined.
type Gate struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{busy: make(map[string]struct{})}
}

// Begin marks key busy and returns the function that releases it.
func (g *Gate) Begin(key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.busy[key]; ok {
		return nil, domain.ErrBusy
	}
	g.busy[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, key)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether key is in flight.
func (g *Gate) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[key]
	return ok
}
