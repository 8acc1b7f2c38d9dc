/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package charades

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin_NewAndRejoin(t *testing.T) {
	s := newTestSession(t, newFakeClock(), firstPick)

	alice, rejoined, err := s.joinLocked("  Alice ", "c1")
	require.NoError(t, err)
	assert.False(t, rejoined)
	assert.Equal(t, "Alice", alice.Name)
	assert.True(t, alice.Connected)
	assert.NotEmpty(t, alice.Identity)

	alice.Score, alice.Skips = 7, 2
	dropped := s.markDisconnectedLocked("c1")
	require.Len(t, dropped, 1)
	assert.False(t, alice.Connected)

	again, rejoined, err := s.joinLocked("Alice", "c2")
	require.NoError(t, err)
	assert.True(t, rejoined)
	assert.Equal(t, alice.Identity, again.Identity)
	assert.Equal(t, 7, again.Score)
	assert.Equal(t, 2, again.Skips)
	assert.True(t, again.Connected)
	assert.Equal(t, ConnID("c2"), again.conn)
	assert.Len(t, s.players, 1)
}

func TestJoin_NameMatchIsCaseSensitive(t *testing.T) {
	s := newTestSession(t, newFakeClock(), firstPick)

	a, _, err := s.joinLocked("alice", "c1")
	require.NoError(t, err)
	b, rejoined, err := s.joinLocked("Alice", "c2")
	require.NoError(t, err)

	assert.False(t, rejoined)
	assert.NotEqual(t, a.Identity, b.Identity)
}

func TestJoin_ManyPlayersGetDistinctIdentities(t *testing.T) {
	s := newTestSession(t, newFakeClock(), firstPick)

	ids := map[string]bool{}
	for i := range 100 {
		p, rejoined, err := s.joinLocked(fmt.Sprintf("player-%d", i), ConnID(fmt.Sprintf("c%d", i)))
		require.NoError(t, err)
		require.False(t, rejoined)
		assert.False(t, ids[p.Identity])
		ids[p.Identity] = true
	}
	assert.Len(t, s.order, 100)
}

func TestJoin_InvalidNames(t *testing.T) {
	s := newTestSession(t, newFakeClock(), firstPick)

	for _, name := range []string{"", "   ", strings.Repeat("é", maxNameLength+1)} {
		_, _, err := s.joinLocked(name, "c1")
		assert.ErrorIs(t, err, ErrInvalidInput, "%q", name)
	}
	assert.Empty(t, s.players)

	_, _, err := s.joinLocked(strings.Repeat("é", maxNameLength), "c1")
	assert.NoError(t, err)
}

func TestRename(t *testing.T) {
	s := newTestSession(t, newFakeClock(), firstPick)
	alice, _, err := s.joinLocked("Alice", "c1")
	require.NoError(t, err)
	_, _, err = s.joinLocked("Bob", "c2")
	require.NoError(t, err)

	_, err = s.renameLocked(alice.Identity, "c1", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.renameLocked(alice.Identity, "c2", "Mallory")
	assert.ErrorIs(t, err, ErrInvalidInput, "other connection")

	_, err = s.renameLocked(alice.Identity, "c1", "Bob")
	assert.ErrorIs(t, err, ErrInvalidInput, "taken")

	_, err = s.renameLocked("ghost", "c1", "Casper")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, "Alice", alice.Name)

	p, err := s.renameLocked(alice.Identity, "c1", " Alicia ")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", p.Name)

	// the new name is what a later rejoin has to use
	again, rejoined, err := s.joinLocked("Alicia", "c3")
	require.NoError(t, err)
	assert.True(t, rejoined)
	assert.Equal(t, alice.Identity, again.Identity)
}

func TestMarkDisconnected_OnlyMatchingConnection(t *testing.T) {
	s := newTestSession(t, newFakeClock(), firstPick)
	alice, _, _ := s.joinLocked("Alice", "c1")
	bob, _, _ := s.joinLocked("Bob", "c2")

	// Alice reconnects on c3; the old c1 dropping later must not affect her.
	_, _, err := s.joinLocked("Alice", "c3")
	require.NoError(t, err)

	assert.Empty(t, s.markDisconnectedLocked("c1"))
	assert.True(t, alice.Connected)

	dropped := s.markDisconnectedLocked("c2")
	require.Len(t, dropped, 1)
	assert.Equal(t, bob.Identity, dropped[0].Identity)
	assert.False(t, bob.Connected)
	assert.Len(t, s.players, 2, "players are kept")

	assert.Empty(t, s.markDisconnectedLocked("c2"), "already offline")
}
