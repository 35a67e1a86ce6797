package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionRegistryBindAndLookup(t *testing.T) {
	reg := NewSessionRegistry()

	reg.Bind("conn-1", "alice", "lobby")

	session, ok := reg.Lookup("conn-1")
	assert.True(t, ok)
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, "lobby", session.Room)
	assert.Equal(t, "conn-1", session.ID)
}

func TestSessionRegistryLookupUnknown(t *testing.T) {
	reg := NewSessionRegistry()

	_, ok := reg.Lookup("nope")
	assert.False(t, ok)
}

func TestSessionRegistryBindOverwrites(t *testing.T) {
	reg := NewSessionRegistry()

	reg.Bind("conn-1", "alice", "lobby")
	reg.Bind("conn-1", "alice", "den")

	session, _ := reg.Lookup("conn-1")
	assert.Equal(t, "den", session.Room)
}

func TestSessionRegistryUnbindReturnsPriorSession(t *testing.T) {
	reg := NewSessionRegistry()
	reg.Bind("conn-1", "alice", "lobby")

	session, ok := reg.Unbind("conn-1")
	assert.True(t, ok)
	assert.Equal(t, "alice", session.Username)

	_, ok = reg.Lookup("conn-1")
	assert.False(t, ok)

	// A second unbind reports the session as already gone.
	_, ok = reg.Unbind("conn-1")
	assert.False(t, ok)
}

func TestSessionRegistryDuplicateUsernamesAllowed(t *testing.T) {
	reg := NewSessionRegistry()
	reg.Bind("conn-1", "alice", "lobby")
	reg.Bind("conn-2", "alice", "lobby")

	a, _ := reg.Lookup("conn-1")
	b, _ := reg.Lookup("conn-2")
	assert.Equal(t, a.Username, b.Username)
	assert.NotEqual(t, a.ID, b.ID)
}
