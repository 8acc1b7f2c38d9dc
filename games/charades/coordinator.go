/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package charades

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Gateway delivers events to connections. Broadcast reaches every connection
// subscribed to code except the one given (pass "" to exclude nobody).
// Subscribe moves conn into the room for code and out of any other room.
type Gateway interface {
	Subscribe(code string, conn ConnID)
	Unicast(conn ConnID, msg any)
	Broadcast(code string, msg any, except ConnID)
	Release(code string)
}

// Hooks are optional observers invoked after a change has been applied. They
// run while the session is locked and must not call back into the
// Coordinator.
type Hooks struct {
	SessionCreated func(code string)
	RoundEnded     func(result RoundResult)
	WordDrawn      func(code string, action string)
	Rejected       func(intent string, err error)
}

type Coordinator struct {
	registry *Registry
	gateway  Gateway
	hooks    Hooks

	// endRoundOnDisconnect ends a round when its guesser drops. Off by
	// default, which leaves the round waiting for someone to end it.
	endRoundOnDisconnect bool
}

func NewCoordinator(registry *Registry, gateway Gateway, hooks Hooks, endRoundOnDisconnect bool) *Coordinator {
	return &Coordinator{
		registry:             registry,
		gateway:              gateway,
		hooks:                hooks,
		endRoundOnDisconnect: endRoundOnDisconnect,
	}
}

func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// Handle applies one intent from conn. NotFound and InvalidInput errors are
// reported back to conn; stale scoring intents are dropped silently. The
// error is returned either way so the transport can log it.
func (c *Coordinator) Handle(conn ConnID, in Intent) error {
	var err error

	switch in.Type {
	case IntentCreateGame:
		err = c.create(conn)
	case IntentJoinGame:
		err = c.join(conn, in)
	case IntentRename:
		err = c.rename(conn, in)
	case IntentStartRound:
		err = c.startRound(conn, in)
	case IntentSelectCategory:
		err = c.selectCategory(conn, in)
	case IntentStartTimer:
		err = c.startTimer(conn, in)
	case IntentCorrectGuess:
		err = c.score(conn, in, ActionCorrect)
	case IntentSkipWord:
		err = c.score(conn, in, ActionSkip)
	case IntentEndRound:
		err = c.endRound(conn, in)
	default:
		err = fmt.Errorf("%w: unknown message type %q", ErrInvalidInput, in.Type)
	}

	if err != nil {
		c.reject(conn, in.Type, err)
	}

	return err
}

func (c *Coordinator) reject(conn ConnID, intent string, err error) {
	if c.hooks.Rejected != nil {
		c.hooks.Rejected(intent, err)
	}

	if errors.Is(err, ErrStaleAction) {
		return
	}

	c.gateway.Unicast(conn, NewErrorMessage(userMessage(err)))
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "Game not found. Check the code and try again."
	case errors.Is(err, ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
		if msg == "" || msg == err.Error() {
			return "That request could not be processed."
		}
		return strings.ToUpper(msg[:1]) + msg[1:] + "."
	default:
		return "Something went wrong. Please try again."
	}
}

// lookup finds the session named by code and returns it locked. The caller
// must unlock it.
func (c *Coordinator) lookup(code string) (*Session, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("%w: missing game code", ErrInvalidInput)
	}

	s, ok := c.registry.Get(code)
	if !ok {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Create opens a new session in the lobby and returns its code. It backs both
// the create_game intent and HTTP entry points that have no connection yet.
func (c *Coordinator) Create() (string, error) {
	code, err := c.registry.Create()
	if err != nil {
		return "", err
	}

	if c.hooks.SessionCreated != nil {
		c.hooks.SessionCreated(code)
	}

	return code, nil
}

func (c *Coordinator) create(conn ConnID) error {
	code, err := c.Create()
	if err != nil {
		return err
	}

	c.gateway.Unicast(conn, GameCreatedMessage{Type: "game_created", Code: code})

	return nil
}

// join seats conn in one game. A connection plays in a single game at a time,
// so it is marked as gone from any other game it was bound to.
func (c *Coordinator) join(conn ConnID, in Intent) error {
	code, err := c.joinSession(conn, in)
	if err != nil {
		return err
	}

	for _, other := range c.registry.Sessions() {
		if other.code != code {
			c.disconnectFrom(other, conn)
		}
	}

	return nil
}

func (c *Coordinator) joinSession(conn ConnID, in Intent) (string, error) {
	s, err := c.lookup(in.Code)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	p, rejoined, err := s.joinLocked(in.Name, conn)
	if err != nil {
		return "", err
	}

	c.gateway.Subscribe(s.code, conn)

	snap := s.snapshotLocked()

	joined := JoinedGameMessage{
		Type:     "joined_game",
		Identity: p.Identity,
		Rejoined: rejoined,
		Snapshot: snap,
	}
	if s.state == StateActiveRound && p.Identity != s.guesserID {
		joined.CurrentWord = s.word
	}
	c.gateway.Unicast(conn, joined)

	c.gateway.Broadcast(s.code, PlayerJoinedMessage{
		Type:     "player_joined",
		Identity: p.Identity,
		Name:     p.Name,
		Rejoined: rejoined,
		Snapshot: snap,
	}, conn)

	return s.code, nil
}

func (c *Coordinator) rename(conn ConnID, in Intent) error {
	s, err := c.lookup(in.Code)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	p, err := s.renameLocked(in.Identity, conn, in.Name)
	if err != nil {
		return err
	}

	c.gateway.Broadcast(s.code, PlayerRenamedMessage{
		Type:     "player_renamed",
		Identity: p.Identity,
		Name:     p.Name,
		Snapshot: s.snapshotLocked(),
	}, "")

	return nil
}

func (c *Coordinator) startRound(_ ConnID, in Intent) error {
	s, err := c.lookup(in.Code)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	guesser, err := s.startRoundLocked(in.Identity)
	if err != nil {
		return err
	}

	c.gateway.Broadcast(s.code, RoundStartedMessage{
		Type:        "round_started",
		GuesserName: guesser.Name,
		Snapshot:    s.snapshotLocked(),
	}, "")

	return nil
}

func (c *Coordinator) selectCategory(_ ConnID, in Intent) error {
	s, err := c.lookup(in.Code)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := s.selectCategoryLocked(strings.TrimSpace(in.Category)); err != nil {
		return err
	}

	c.gateway.Broadcast(s.code, CategorySelectedMessage{
		Type:     "category_selected",
		Category: s.category,
		Snapshot: s.snapshotLocked(),
	}, "")

	return nil
}

func (c *Coordinator) startTimer(_ ConnID, in Intent) error {
	s, err := c.lookup(in.Code)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	word, err := s.startTimerLocked()
	if err != nil {
		return err
	}

	if c.hooks.WordDrawn != nil {
		c.hooks.WordDrawn(s.code, "start")
	}

	c.gateway.Broadcast(s.code, TimerStartedMessage{
		Type:     "timer_started",
		Word:     word,
		Snapshot: s.snapshotLocked(),
	}, "")

	return nil
}

func (c *Coordinator) score(_ ConnID, in Intent, action Action) error {
	s, err := c.lookup(in.Code)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	word, err := s.scoreLocked(action)
	if err != nil {
		return err
	}

	if c.hooks.WordDrawn != nil {
		c.hooks.WordDrawn(s.code, string(action))
	}

	c.gateway.Broadcast(s.code, WordChangedMessage{
		Type:       "word_changed",
		Word:       word,
		RoundScore: s.roundScore,
		RoundSkips: s.roundSkips,
		Action:     action,
		Snapshot:   s.snapshotLocked(),
	}, "")

	return nil
}

func (c *Coordinator) endRound(_ ConnID, in Intent) error {
	s, err := c.lookup(in.Code)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	return c.endRoundLocked(s)
}

func (c *Coordinator) endRoundLocked(s *Session) error {
	result, err := s.endRoundLocked()
	if err != nil {
		return err
	}

	if c.hooks.RoundEnded != nil {
		c.hooks.RoundEnded(result)
	}

	c.gateway.Broadcast(s.code, RoundEndedMessage{
		Type:       "round_ended",
		FinalScore: result.Score,
		FinalSkips: result.Skips,
		GuesserID:  result.GuesserID,
		Snapshot:   s.snapshotLocked(),
	}, "")

	return nil
}

// Disconnect marks every player bound to conn as offline in every session
// and tells the remaining room members.
func (c *Coordinator) Disconnect(conn ConnID) {
	for _, s := range c.registry.Sessions() {
		c.disconnectFrom(s, conn)
	}
}

func (c *Coordinator) disconnectFrom(s *Session, conn ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	for _, p := range s.markDisconnectedLocked(conn) {
		c.gateway.Broadcast(s.code, PlayerLeftMessage{
			Type:     "player_left",
			Identity: p.Identity,
			Name:     p.Name,
			Snapshot: s.snapshotLocked(),
		}, conn)

		if c.endRoundOnDisconnect && p.Identity == s.guesserID && s.state != StateLobby {
			_ = c.endRoundLocked(s)
		}
	}
}

// ReapIdle drops sessions idle since before cutoff, tells their members and
// releases their rooms. It returns the codes that were removed.
func (c *Coordinator) ReapIdle(cutoff time.Time) []string {
	reaped := c.registry.Reap(cutoff)

	codes := make([]string, 0, len(reaped))
	for _, s := range reaped {
		c.gateway.Broadcast(s.code, NewErrorMessage("This game expired after being idle for too long."), "")
		c.gateway.Release(s.code)
		codes = append(codes, s.code)
	}

	return codes
}
