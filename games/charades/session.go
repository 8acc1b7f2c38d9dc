/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package charades

import (
	"fmt"
	"math"
	"sync"
	"time"
)

type State string

const (
	StateLobby             State = "lobby"
	StateCategorySelection State = "category_selection"
	StateReady             State = "ready"
	StateActiveRound       State = "active_round"
)

type Action string

const (
	ActionCorrect Action = "correct"
	ActionSkip    Action = "skip"
)

// ConnID identifies one transport connection. It is handed out by the
// gateway and replaced on every rejoin.
type ConnID string

// Player is one participant of a session. Score and Skips only grow, and only
// when a round ends.
type Player struct {
	Identity  string
	Name      string
	Score     int
	Skips     int
	Connected bool

	conn ConnID
}

// RoundResult is what a finished round contributed to its guesser.
type RoundResult struct {
	Code        string
	GuesserID   string
	GuesserName string
	Category    string
	Score       int
	Skips       int
	StartedAt   time.Time
	EndedAt     time.Time
}

// Session holds one game. Every field is guarded by mu; methods with a Locked
// suffix expect the caller to hold it.
type Session struct {
	mu sync.Mutex

	code  string
	state State

	// closed is set once the registry has dropped the session. Intents that
	// looked it up before then must not act on it.
	closed bool

	players map[string]*Player
	order   []string

	guesserID  string
	category   string
	word       string
	roundScore int
	roundSkips int
	used       map[string]struct{}

	timerStart    time.Time
	timerDuration time.Duration

	createdAt      time.Time
	roundStartedAt time.Time
	lastActivity   time.Time

	words *WordBank
	now   func() time.Time
	pick  func(n int) int
}

func newSession(code string, words *WordBank, timerDuration time.Duration, now func() time.Time, pick func(int) int) *Session {
	t := now()
	return &Session{
		code:          code,
		state:         StateLobby,
		players:       make(map[string]*Player),
		used:          make(map[string]struct{}),
		timerDuration: timerDuration,
		createdAt:     t,
		lastActivity:  t,
		words:         words,
		now:           now,
		pick:          pick,
	}
}

func (s *Session) Code() string {
	return s.code
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) touchLocked() {
	s.lastActivity = s.now()
}

func (s *Session) guesserLocked() *Player {
	if s.guesserID == "" {
		return nil
	}
	return s.players[s.guesserID]
}

// startRoundLocked hands the guesser role to identity. It is accepted in any
// state and wipes whatever round was in progress without scoring it.
func (s *Session) startRoundLocked(identity string) (*Player, error) {
	p, ok := s.players[identity]
	if !ok {
		return nil, fmt.Errorf("%w: unknown player", ErrInvalidInput)
	}

	s.state = StateCategorySelection
	s.guesserID = identity
	s.category = ""
	s.word = ""
	s.roundScore = 0
	s.roundSkips = 0
	clear(s.used)
	s.timerStart = time.Time{}
	s.roundStartedAt = s.now()
	s.touchLocked()

	return p, nil
}

func (s *Session) selectCategoryLocked(category string) error {
	if s.state != StateCategorySelection && s.state != StateReady {
		return fmt.Errorf("%w: no round is waiting for a category", ErrInvalidInput)
	}
	if !s.words.Has(category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}

	if s.category != category {
		clear(s.used)
	}
	s.category = category
	s.touchLocked()

	return nil
}

func (s *Session) startTimerLocked() (string, error) {
	if s.state != StateCategorySelection && s.state != StateReady {
		return "", fmt.Errorf("%w: no round is waiting to start", ErrInvalidInput)
	}
	if s.category == "" {
		return "", fmt.Errorf("%w: pick a category first", ErrInvalidInput)
	}

	s.state = StateActiveRound
	s.timerStart = s.now()
	word := s.nextWordLocked()
	s.touchLocked()

	return word, nil
}

// liveLocked reports whether the round's countdown is still running. Nothing
// on the server ticks; the answer is derived from timerStart on demand.
func (s *Session) liveLocked() bool {
	if s.state != StateActiveRound || s.timerStart.IsZero() {
		return false
	}
	return s.now().Sub(s.timerStart) < s.timerDuration
}

func (s *Session) scoreLocked(action Action) (string, error) {
	if !s.liveLocked() {
		return "", ErrStaleAction
	}

	switch action {
	case ActionCorrect:
		s.roundScore++
	case ActionSkip:
		s.roundSkips++
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}

	word := s.nextWordLocked()
	s.touchLocked()

	return word, nil
}

// endRoundLocked commits the round's tallies to the guesser regardless of the
// timer. In the lobby there is nothing to commit.
func (s *Session) endRoundLocked() (RoundResult, error) {
	if s.state == StateLobby {
		return RoundResult{}, ErrStaleAction
	}

	t := s.now()
	result := RoundResult{
		Code:      s.code,
		GuesserID: s.guesserID,
		Category:  s.category,
		Score:     s.roundScore,
		Skips:     s.roundSkips,
		StartedAt: s.roundStartedAt,
		EndedAt:   t,
	}

	if g := s.guesserLocked(); g != nil {
		g.Score += s.roundScore
		g.Skips += s.roundSkips
		result.GuesserName = g.Name
	}

	s.state = StateLobby
	s.guesserID = ""
	s.word = ""
	s.timerStart = time.Time{}
	s.touchLocked()

	return result, nil
}

// nextWordLocked draws a word from the current category that has not been
// shown this round. Once every word has been used the set starts over.
func (s *Session) nextWordLocked() string {
	all := s.words.Words(s.category)
	if len(all) == 0 {
		return ""
	}

	candidates := make([]string, 0, len(all))
	for _, w := range all {
		if _, ok := s.used[w]; !ok {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		clear(s.used)
		candidates = append(candidates, all...)
	}

	word := candidates[s.pick(len(candidates))]
	s.used[word] = struct{}{}
	s.word = word

	return word
}

func (s *Session) remainingLocked() time.Duration {
	if s.timerStart.IsZero() {
		return s.timerDuration
	}
	return max(s.timerDuration-s.now().Sub(s.timerStart), 0)
}

// PlayerView is the public projection of a Player.
type PlayerView struct {
	Identity  string `json:"identity"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Skips     int    `json:"skips"`
	Connected bool   `json:"connected"`
}

// Snapshot is the full session projection sent with every state change.
type Snapshot struct {
	Code          string       `json:"code"`
	Players       []PlayerView `json:"players"`
	State         State        `json:"state"`
	GuesserID     string       `json:"guesserId,omitempty"`
	Category      string       `json:"category,omitempty"`
	RoundScore    int          `json:"roundScore"`
	RoundSkips    int          `json:"roundSkips"`
	TimeRemaining int          `json:"timeRemaining"`
	TimerDuration int          `json:"timerDuration"`
	Categories    []string     `json:"categories"`
}

func (s *Session) snapshotLocked() Snapshot {
	players := make([]PlayerView, 0, len(s.order))
	for _, id := range s.order {
		p := s.players[id]
		players = append(players, PlayerView{
			Identity:  p.Identity,
			Name:      p.Name,
			Score:     p.Score,
			Skips:     p.Skips,
			Connected: p.Connected,
		})
	}

	return Snapshot{
		Code:          s.code,
		Players:       players,
		State:         s.state,
		GuesserID:     s.guesserID,
		Category:      s.category,
		RoundScore:    s.roundScore,
		RoundSkips:    s.roundSkips,
		TimeRemaining: int(math.Ceil(s.remainingLocked().Seconds())),
		TimerDuration: int(s.timerDuration / time.Second),
		Categories:    s.words.Categories(),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// CurrentWord returns the word on screen, or "" outside an active round.
func (s *Session) CurrentWord() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.word
}
