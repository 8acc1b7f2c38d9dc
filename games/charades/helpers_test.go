/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package charades

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeGateway records what each connection would have received.
type fakeGateway struct {
	mu        sync.Mutex
	subs      map[string]map[ConnID]bool
	delivered map[ConnID][]any
	released  []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		subs:      make(map[string]map[ConnID]bool),
		delivered: make(map[ConnID][]any),
	}
}

func (g *fakeGateway) Subscribe(code string, conn ConnID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for other, members := range g.subs {
		if other != code {
			delete(members, conn)
		}
	}
	if g.subs[code] == nil {
		g.subs[code] = make(map[ConnID]bool)
	}
	g.subs[code][conn] = true
}

func (g *fakeGateway) Unicast(conn ConnID, msg any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.delivered[conn] = append(g.delivered[conn], msg)
}

func (g *fakeGateway) Broadcast(code string, msg any, except ConnID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for conn := range g.subs[code] {
		if conn == except {
			continue
		}
		g.delivered[conn] = append(g.delivered[conn], msg)
	}
}

func (g *fakeGateway) Release(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.subs, code)
	g.released = append(g.released, code)
}

// take returns and forgets everything delivered to conn so far.
func (g *fakeGateway) take(conn ConnID) []any {
	g.mu.Lock()
	defer g.mu.Unlock()
	msgs := g.delivered[conn]
	delete(g.delivered, conn)
	return msgs
}

func last[T any](t *testing.T, msgs []any) T {
	t.Helper()
	for i := len(msgs) - 1; i >= 0; i-- {
		if m, ok := msgs[i].(T); ok {
			return m
		}
	}
	var zero T
	require.Failf(t, "message not found", "no %T among %d messages", zero, len(msgs))
	return zero
}

func count[T any](msgs []any) int {
	n := 0
	for _, m := range msgs {
		if _, ok := m.(T); ok {
			n++
		}
	}
	return n
}

func testWords(t *testing.T) *WordBank {
	t.Helper()
	b, err := NewWordBank([]Category{
		{Name: "animals", Words: []string{"cat", "dog", "owl", "emu", "yak"}},
		{Name: "colors", Words: []string{"red", "orange", "yellow", "green", "blue", "indigo", "violet", "pink"}},
	})
	require.NoError(t, err)
	return b
}

func firstPick(int) int { return 0 }

type fixture struct {
	clock    *fakeClock
	gateway  *fakeGateway
	registry *Registry
	coord    *Coordinator
	ended    []RoundResult
}

func newFixture(t *testing.T, endRoundOnDisconnect bool) *fixture {
	t.Helper()
	f := &fixture{clock: newFakeClock(), gateway: newFakeGateway()}
	f.registry = NewRegistry(testWords(t), WithClock(f.clock.Now), WithPicker(firstPick))
	f.coord = NewCoordinator(f.registry, f.gateway, Hooks{
		RoundEnded: func(r RoundResult) { f.ended = append(f.ended, r) },
	}, endRoundOnDisconnect)
	return f
}

func (f *fixture) create(t *testing.T) string {
	t.Helper()
	require.NoError(t, f.coord.Handle("host", Intent{Type: IntentCreateGame}))
	return last[GameCreatedMessage](t, f.gateway.take("host")).Code
}

func (f *fixture) join(t *testing.T, code string, conn ConnID, name string) JoinedGameMessage {
	t.Helper()
	require.NoError(t, f.coord.Handle(conn, Intent{Type: IntentJoinGame, Code: code, Name: name}))
	return last[JoinedGameMessage](t, f.gateway.take(conn))
}
