package guilded

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClientForEvents() *Client {
	return NewClient("test-token", &Config{
		Logger:                  newTestLogger(),
		DisableServerWebsockets: true,
	})
}

func decode(t *testing.T, c *Client, name, payload string) interface{} {
	event, err := c.decodeEvent(name, json.RawMessage(payload))
	require.NoError(t, err)
	require.NotNil(t, event)
	return event
}

func TestDecodeEvent_MemberLifecycle(t *testing.T) {
	c := newTestClientForEvents()

	joined := decode(t, c, EventTeamMemberJoined,
		`{"serverId":"s1","member":{"user":{"id":"u1","name":"alice"},"roleIds":[1,2],"joinedAt":"2025-01-01T00:00:00Z"}}`).(*MemberJoinedEvent)
	assert.Equal(t, "s1", joined.ServerID)
	require.NotNil(t, joined.Member)
	assert.Equal(t, "alice", joined.Member.User.Name)
	require.NotNil(t, c.CachedMember("s1", "u1"))

	// A nickname change applies to the cached member, and Before keeps
	// the old value.
	updated := decode(t, c, EventTeamMemberUpdated,
		`{"serverId":"s1","userInfo":{"id":"u1","nickname":"Allie"}}`).(*MemberUpdatedEvent)
	require.NotNil(t, updated.Before)
	assert.Empty(t, updated.Before.Nickname)
	assert.Equal(t, "Allie", updated.Member.Nickname)
	assert.Equal(t, "Allie", c.CachedMember("s1", "u1").Nickname)

	roles := decode(t, c, EventTeamRolesUpdated,
		`{"serverId":"s1","memberRoleIds":[{"userId":"u1","roleIds":[3]},{"userId":"u2","roleIds":[4]}]}`).(*MemberRolesUpdatedEvent)
	require.Len(t, roles.Updates, 2)
	require.Len(t, roles.Members, 2)
	// u1 was cached so its prior roles are captured; u2 was not.
	require.Len(t, roles.Before, 1)
	assert.Equal(t, []int{1, 2}, roles.Before[0].RoleIDs)
	assert.Equal(t, []int{3}, c.CachedMember("s1", "u1").RoleIDs)

	removed := decode(t, c, EventTeamMemberRemoved,
		`{"serverId":"s1","userId":"u1","isKick":true}`).(*MemberRemovedEvent)
	assert.True(t, removed.Kicked)
	assert.False(t, removed.Banned)
	require.NotNil(t, removed.Member)
	assert.Nil(t, c.CachedMember("s1", "u1"))
}

func TestMemberEventPopulatesUserCache(t *testing.T) {
	c := newTestClientForEvents()

	decode(t, c, EventTeamMemberJoined,
		`{"serverId":"s1","member":{"user":{"id":"u1","name":"alice","type":"user"},"joinedAt":"2025-01-01T00:00:00Z"}}`)

	user := c.CachedUser("u1")
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Name)

	created := decode(t, c, EventChatMessageCreated,
		`{"serverId":"s1","message":{"id":"m1","channelId":"c1","createdBy":"u1","content":"hi"}}`).(*MessageCreatedEvent)
	author := created.Message.Author()
	require.NotNil(t, author)
	assert.Equal(t, "alice", author.Name)
	assert.False(t, created.Message.ByBot())
}

func TestDecodeEvent_Bans(t *testing.T) {
	c := newTestClientForEvents()

	banned := decode(t, c, EventTeamMemberBanned,
		`{"serverId":"s1","serverMemberBan":{"user":{"id":"u1","name":"alice"},"reason":"spam","createdBy":"u2","createdAt":"2025-01-01T00:00:00Z"}}`).(*BanCreatedEvent)
	require.NotNil(t, banned.Ban)
	assert.Equal(t, "spam", banned.Ban.Reason)
	assert.Equal(t, "s1", banned.Ban.ServerID)

	unbanned := decode(t, c, EventTeamMemberUnbanned,
		`{"serverId":"s1","serverMemberBan":{"user":{"id":"u1","name":"alice"},"createdBy":"u2","createdAt":"2025-01-01T00:00:00Z"}}`).(*BanDeletedEvent)
	require.NotNil(t, unbanned.Ban)
	assert.Equal(t, "u1", unbanned.Ban.User.ID)
}

func TestDecodeEvent_Reactions(t *testing.T) {
	c := newTestClientForEvents()
	c.state.putMessage(&Message{ID: "m1", ChannelID: "c1", Content: "hi"})

	added := decode(t, c, EventMessageReactionCreated,
		`{"serverId":"s1","reaction":{"channelId":"c1","messageId":"m1","createdBy":"u1","emote":{"id":90000000,"name":"grinning"}}}`).(*ReactionAddedEvent)
	require.NotNil(t, added.Reaction)
	assert.Equal(t, 90000000, added.Reaction.Emote.ID)
	require.NotNil(t, added.Message)
	assert.Equal(t, "hi", added.Message.Content)

	removed := decode(t, c, EventMessageReactionDeleted,
		`{"serverId":"s1","reaction":{"channelId":"c1","messageId":"m2","createdBy":"u1","emote":{"id":90000000,"name":"grinning"}}}`).(*ReactionRemovedEvent)
	assert.Nil(t, removed.Message)
}

func TestDecodeEvent_Channels(t *testing.T) {
	c := newTestClientForEvents()

	created := decode(t, c, EventTeamChannelCreated,
		`{"serverId":"s1","channel":{"id":"c1","type":"chat","name":"general","serverId":"s1","createdBy":"u1","createdAt":"2025-01-01T00:00:00Z"}}`).(*ChannelCreatedEvent)
	assert.Equal(t, "general", created.Channel.Name)
	require.NotNil(t, c.CachedChannel("c1"))

	updated := decode(t, c, EventTeamChannelUpdated,
		`{"serverId":"s1","channel":{"id":"c1","type":"chat","name":"renamed","serverId":"s1","createdBy":"u1","createdAt":"2025-01-01T00:00:00Z"}}`).(*ChannelUpdatedEvent)
	require.NotNil(t, updated.Before)
	assert.Equal(t, "general", updated.Before.Name)
	assert.Equal(t, "renamed", c.CachedChannel("c1").Name)

	deleted := decode(t, c, EventTeamChannelDeleted,
		`{"serverId":"s1","channel":{"id":"c1","type":"chat","name":"renamed","serverId":"s1","createdBy":"u1","createdAt":"2025-01-01T00:00:00Z"}}`).(*ChannelDeletedEvent)
	require.NotNil(t, deleted.Channel)
	assert.Nil(t, c.CachedChannel("c1"))
}

func TestDecodeEvent_Webhooks(t *testing.T) {
	c := newTestClientForEvents()

	created := decode(t, c, EventTeamWebhookCreated,
		`{"serverId":"s1","webhook":{"id":"w1","name":"hook","serverId":"s1","channelId":"c1","createdBy":"u1","createdAt":"2025-01-01T00:00:00Z"}}`).(*WebhookCreatedEvent)
	assert.Equal(t, "hook", created.Webhook.Name)

	updated := decode(t, c, EventTeamWebhookUpdated,
		`{"serverId":"s1","webhook":{"id":"w1","name":"hook","serverId":"s1","channelId":"c1","createdBy":"u1","createdAt":"2025-01-01T00:00:00Z","deletedAt":"2025-01-02T00:00:00Z"}}`).(*WebhookUpdatedEvent)
	assert.True(t, updated.Webhook.Deleted())
}

func TestDecodeEvent_ForumTopics(t *testing.T) {
	c := newTestClientForEvents()
	payload := `{"serverId":"s1","forumTopic":{"id":7,"serverId":"s1","channelId":"c1","title":"hello","createdBy":"u1","createdAt":"2025-01-01T00:00:00Z"}}`

	created := decode(t, c, EventForumTopicCreated, payload).(*ForumTopicCreatedEvent)
	assert.Equal(t, 7, created.Topic.ID)
	pinned := decode(t, c, EventForumTopicPinned, payload).(*ForumTopicPinnedEvent)
	assert.Equal(t, "s1", pinned.ServerID)
	locked := decode(t, c, EventForumTopicLocked, payload).(*ForumTopicLockedEvent)
	assert.Equal(t, "hello", locked.Topic.Title)
}

func TestDecodeEvent_ListItems(t *testing.T) {
	c := newTestClientForEvents()
	payload := `{"serverId":"s1","listItem":{"id":"li1","serverId":"s1","channelId":"c1","message":"buy milk","createdBy":"u1","createdAt":"2025-01-01T00:00:00Z"}}`

	created := decode(t, c, EventListItemCreated, payload).(*ListItemCreatedEvent)
	assert.Equal(t, "buy milk", created.Item.Message)
	completed := decode(t, c, EventListItemCompleted, payload).(*ListItemCompletedEvent)
	assert.Equal(t, "li1", completed.Item.ID)
}

func TestDecodeEvent_CalendarEvents(t *testing.T) {
	c := newTestClientForEvents()

	created := decode(t, c, EventCalendarEventCreated,
		`{"serverId":"s1","calendarEvent":{"id":12,"serverId":"s1","channelId":"c1","name":"standup","startsAt":"2025-01-01T09:00:00Z","createdBy":"u1","createdAt":"2025-01-01T00:00:00Z"}}`).(*CalendarEventCreatedEvent)
	assert.Equal(t, 12, created.CalendarEvent.ID)

	rsvp := decode(t, c, EventCalendarEventRsvpUpdated,
		`{"serverId":"s1","calendarEventRsvp":{"calendarEventId":12,"channelId":"c1","serverId":"s1","userId":"u1","status":"going","createdBy":"u1"}}`).(*CalendarEventRSVPUpdatedEvent)
	assert.Equal(t, "going", rsvp.RSVP.Status)

	many := decode(t, c, EventCalendarEventRsvpManyUpdated,
		`{"serverId":"s1","calendarEventRsvps":[{"calendarEventId":12,"channelId":"c1","serverId":"s1","userId":"u1","status":"going","createdBy":"u1"},{"calendarEventId":12,"channelId":"c1","serverId":"s1","userId":"u2","status":"maybe","createdBy":"u2"}]}`).(*CalendarEventRSVPManyUpdatedEvent)
	require.Len(t, many.RSVPs, 2)
	assert.Equal(t, "maybe", many.RSVPs[1].Status)
}

func TestDecodeEvent_Docs(t *testing.T) {
	c := newTestClientForEvents()
	payload := `{"serverId":"s1","doc":{"id":3,"serverId":"s1","channelId":"c1","title":"notes","content":"...","createdBy":"u1","createdAt":"2025-01-01T00:00:00Z"}}`

	created := decode(t, c, EventDocCreated, payload).(*DocCreatedEvent)
	assert.Equal(t, "notes", created.Doc.Title)
	deleted := decode(t, c, EventDocDeleted, payload).(*DocDeletedEvent)
	assert.Equal(t, 3, deleted.Doc.ID)
}

func TestDecodeEvent_Unknown(t *testing.T) {
	c := newTestClientForEvents()
	event, err := c.decodeEvent("SomeFutureEvent", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestDecodeEvent_Malformed(t *testing.T) {
	c := newTestClientForEvents()
	_, err := c.decodeEvent(EventChatMessageCreated, json.RawMessage(`{`))
	assert.Error(t, err)
}
