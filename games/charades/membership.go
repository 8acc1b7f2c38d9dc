/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package charades

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxNameLength = 32

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, maxNameLength)
	}
	return name, nil
}

// resolveOrCreatePlayerLocked is the only place that decides who a joining
// connection is. A case-sensitive name match reuses the existing identity
// together with its score history; anything else gets a fresh identity.
func (s *Session) resolveOrCreatePlayerLocked(name string, conn ConnID) (*Player, bool) {
	for _, id := range s.order {
		p := s.players[id]
		if p.Name == name {
			p.Connected = true
			p.conn = conn
			return p, true
		}
	}

	p := &Player{
		Identity:  uuid.NewString(),
		Name:      name,
		Connected: true,
		conn:      conn,
	}
	s.players[p.Identity] = p
	s.order = append(s.order, p.Identity)

	return p, false
}

func (s *Session) joinLocked(name string, conn ConnID) (*Player, bool, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, false, err
	}

	p, rejoined := s.resolveOrCreatePlayerLocked(name, conn)
	s.touchLocked()

	return p, rejoined, nil
}

// renameLocked lets the connection currently bound to identity change its
// display name. Names stay unique within a session so a later rejoin by name
// is never ambiguous.
func (s *Session) renameLocked(identity string, conn ConnID, name string) (*Player, error) {
	p, ok := s.players[identity]
	if !ok {
		return nil, fmt.Errorf("%w: unknown player", ErrInvalidInput)
	}
	if p.conn != conn {
		return nil, fmt.Errorf("%w: only the player's own connection may rename it", ErrInvalidInput)
	}

	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	for _, other := range s.players {
		if other.Identity != identity && other.Name == name {
			return nil, fmt.Errorf("%w: that name is already taken", ErrInvalidInput)
		}
	}

	p.Name = name
	s.touchLocked()

	return p, nil
}

// markDisconnectedLocked flags every player bound to conn as offline. Players
// are never removed, so their totals survive until they rejoin by name.
func (s *Session) markDisconnectedLocked(conn ConnID) []*Player {
	var dropped []*Player
	for _, id := range s.order {
		p := s.players[id]
		if p.conn == conn && p.Connected {
			p.Connected = false
			dropped = append(dropped, p)
		}
	}

	if len(dropped) > 0 {
		s.touchLocked()
	}

	return dropped
}
