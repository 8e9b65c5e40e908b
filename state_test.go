package guilded

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMessageCache(t *testing.T) {
	s := newState(3)

	for i := 1; i <= 3; i++ {
		s.putMessage(&Message{ID: "m" + strconv.Itoa(i), ChannelID: "c"})
	}
	require.NotNil(t, s.message("m1"))
	assert.Len(t, s.messageList(), 3)

	// A fourth message evicts the oldest.
	s.putMessage(&Message{ID: "m4", ChannelID: "c"})
	assert.Nil(t, s.message("m1"))
	require.NotNil(t, s.message("m2"))
	require.NotNil(t, s.message("m4"))
	assert.Len(t, s.messageList(), 3)

	// Re-putting an existing message updates it in place without evicting.
	s.putMessage(&Message{ID: "m2", ChannelID: "c", Content: "edited"})
	assert.Equal(t, "edited", s.message("m2").Content)
	assert.Len(t, s.messageList(), 3)
	require.NotNil(t, s.message("m3"))

	removed := s.removeMessage("m3")
	require.NotNil(t, removed)
	assert.Nil(t, s.message("m3"))
	assert.Nil(t, s.removeMessage("m3"))
	assert.Len(t, s.messageList(), 2)
}

func TestStateMessageCacheDisabled(t *testing.T) {
	s := newState(0)
	s.putMessage(&Message{ID: "m1"})
	assert.Nil(t, s.message("m1"))
	assert.Empty(t, s.messageList())
}

func TestStateMembers(t *testing.T) {
	s := newState(10)

	s.putMember(&Member{User: User{ID: "u1"}, ServerID: "s1"})
	s.putMember(&Member{User: User{ID: "u2"}, ServerID: "s1"})
	s.putMember(&Member{User: User{ID: "u1"}, ServerID: "s2"})

	require.NotNil(t, s.member("s1", "u1"))
	assert.Nil(t, s.member("s1", "u3"))
	assert.Len(t, s.memberList("s1"), 2)
	assert.Len(t, s.memberList("s2"), 1)
	assert.Empty(t, s.memberList("s3"))

	removed := s.removeMember("s1", "u1")
	require.NotNil(t, removed)
	assert.Nil(t, s.member("s1", "u1"))
	// The same user in another server is unaffected.
	require.NotNil(t, s.member("s2", "u1"))
}

func TestStateObjects(t *testing.T) {
	s := newState(10)

	s.putUser(&User{ID: "u1", Name: "one"})
	s.putServer(&Server{ID: "s1"})
	s.putChannel(&Channel{ID: "c1"})

	require.NotNil(t, s.user("u1"))
	require.NotNil(t, s.server("s1"))
	require.NotNil(t, s.channel("c1"))
	assert.Len(t, s.userList(), 1)
	assert.Len(t, s.serverList(), 1)
	assert.Len(t, s.channelList(), 1)

	s.removeChannel("c1")
	assert.Nil(t, s.channel("c1"))
}
