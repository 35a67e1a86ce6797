package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomRegistryFirstJoinCreatesRoom(t *testing.T) {
	reg := NewRoomRegistry()

	reg.AddMember("lobby", "conn-1")

	assert.ElementsMatch(t, []string{"conn-1"}, reg.Members("lobby"))
}

func TestRoomRegistryAddMemberIdempotent(t *testing.T) {
	reg := NewRoomRegistry()

	reg.AddMember("lobby", "conn-1")
	reg.AddMember("lobby", "conn-1")

	assert.Len(t, reg.Members("lobby"), 1)
}

func TestRoomRegistryLastLeaveRemovesRoom(t *testing.T) {
	reg := NewRoomRegistry()
	reg.AddMember("lobby", "conn-1")
	reg.AddMember("lobby", "conn-2")

	reg.RemoveMember("lobby", "conn-1")
	assert.ElementsMatch(t, []string{"conn-2"}, reg.Members("lobby"))

	reg.RemoveMember("lobby", "conn-2")
	assert.Empty(t, reg.Members("lobby"))
	assert.Empty(t, reg.RoomsContaining("conn-2"))
}

func TestRoomRegistryMembersOfUnknownRoom(t *testing.T) {
	reg := NewRoomRegistry()

	// Never an error, just empty.
	assert.Empty(t, reg.Members("ghost-town"))
	reg.RemoveMember("ghost-town", "conn-1")
	assert.Empty(t, reg.Members("ghost-town"))
}

func TestRoomRegistryRoomsContaining(t *testing.T) {
	reg := NewRoomRegistry()
	reg.AddMember("lobby", "conn-1")
	reg.AddMember("den", "conn-1")
	reg.AddMember("lobby", "conn-2")

	assert.ElementsMatch(t, []string{"lobby", "den"}, reg.RoomsContaining("conn-1"))
	assert.ElementsMatch(t, []string{"lobby"}, reg.RoomsContaining("conn-2"))
}
