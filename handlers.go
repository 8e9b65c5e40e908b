package guilded

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Handlers are invoked sequentially, in registration order, from a single
// dispatch goroutine. A slow handler delays delivery of subsequent
// events; long-running work should be moved off the handler.

func (c *Client) addHandler(name string, fn func(interface{})) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	if c.handlers == nil {
		c.handlers = map[string][]func(interface{}){}
	}
	c.handlers[name] = append(c.handlers[name], fn)
}

// OnReady registers a handler invoked once the client has received the
// gateway welcome. It fires again after reconnects.
func (c *Client) OnReady(fn func(*ReadyEvent)) {
	c.addHandler(eventReady, func(e interface{}) { fn(e.(*ReadyEvent)) })
}

// OnConnect registers a handler invoked whenever a gateway connection is
// established.
func (c *Client) OnConnect(fn func(*ConnectEvent)) {
	c.addHandler(eventConnect, func(e interface{}) { fn(e.(*ConnectEvent)) })
}

// OnDisconnect registers a handler invoked whenever a gateway connection
// is lost.
func (c *Client) OnDisconnect(fn func(*DisconnectEvent)) {
	c.addHandler(eventDisconnect, func(e interface{}) { fn(e.(*DisconnectEvent)) })
}

// OnMessageCreated registers a handler for new chat messages. This
// includes the client's own messages; use Message.ByBot or compare
// against Client.User to filter them.
func (c *Client) OnMessageCreated(fn func(*MessageCreatedEvent)) {
	c.addHandler(EventChatMessageCreated, func(e interface{}) { fn(e.(*MessageCreatedEvent)) })
}

// OnMessageUpdated registers a handler for message edits.
func (c *Client) OnMessageUpdated(fn func(*MessageUpdatedEvent)) {
	c.addHandler(EventChatMessageUpdated, func(e interface{}) { fn(e.(*MessageUpdatedEvent)) })
}

// OnMessageDeleted registers a handler for message deletions.
func (c *Client) OnMessageDeleted(fn func(*MessageDeletedEvent)) {
	c.addHandler(EventChatMessageDeleted, func(e interface{}) { fn(e.(*MessageDeletedEvent)) })
}

// OnReactionAdded registers a handler for message reactions being added.
func (c *Client) OnReactionAdded(fn func(*ReactionAddedEvent)) {
	c.addHandler(EventMessageReactionCreated, func(e interface{}) { fn(e.(*ReactionAddedEvent)) })
}

// OnReactionRemoved registers a handler for message reactions being
// removed.
func (c *Client) OnReactionRemoved(fn func(*ReactionRemovedEvent)) {
	c.addHandler(EventMessageReactionDeleted, func(e interface{}) { fn(e.(*ReactionRemovedEvent)) })
}

// OnMemberJoined registers a handler for members joining a server.
func (c *Client) OnMemberJoined(fn func(*MemberJoinedEvent)) {
	c.addHandler(EventTeamMemberJoined, func(e interface{}) { fn(e.(*MemberJoinedEvent)) })
}

// OnMemberRemoved registers a handler for members leaving a server,
// whether they left, were kicked, or were banned.
func (c *Client) OnMemberRemoved(fn func(*MemberRemovedEvent)) {
	c.addHandler(EventTeamMemberRemoved, func(e interface{}) { fn(e.(*MemberRemovedEvent)) })
}

// OnMemberUpdated registers a handler for member profile changes such as
// nickname updates.
func (c *Client) OnMemberUpdated(fn func(*MemberUpdatedEvent)) {
	c.addHandler(EventTeamMemberUpdated, func(e interface{}) { fn(e.(*MemberUpdatedEvent)) })
}

// OnMemberRolesUpdated registers a handler for member role changes.
func (c *Client) OnMemberRolesUpdated(fn func(*MemberRolesUpdatedEvent)) {
	c.addHandler(EventTeamRolesUpdated, func(e interface{}) { fn(e.(*MemberRolesUpdatedEvent)) })
}

// OnBanCreated registers a handler for member bans.
func (c *Client) OnBanCreated(fn func(*BanCreatedEvent)) {
	c.addHandler(EventTeamMemberBanned, func(e interface{}) { fn(e.(*BanCreatedEvent)) })
}

// OnBanDeleted registers a handler for bans being lifted.
func (c *Client) OnBanDeleted(fn func(*BanDeletedEvent)) {
	c.addHandler(EventTeamMemberUnbanned, func(e interface{}) { fn(e.(*BanDeletedEvent)) })
}

// OnChannelCreated registers a handler for channel creation.
func (c *Client) OnChannelCreated(fn func(*ChannelCreatedEvent)) {
	c.addHandler(EventTeamChannelCreated, func(e interface{}) { fn(e.(*ChannelCreatedEvent)) })
}

// OnChannelUpdated registers a handler for channel updates.
func (c *Client) OnChannelUpdated(fn func(*ChannelUpdatedEvent)) {
	c.addHandler(EventTeamChannelUpdated, func(e interface{}) { fn(e.(*ChannelUpdatedEvent)) })
}

// OnChannelDeleted registers a handler for channel deletion.
func (c *Client) OnChannelDeleted(fn func(*ChannelDeletedEvent)) {
	c.addHandler(EventTeamChannelDeleted, func(e interface{}) { fn(e.(*ChannelDeletedEvent)) })
}

// OnWebhookCreated registers a handler for webhook creation.
func (c *Client) OnWebhookCreated(fn func(*WebhookCreatedEvent)) {
	c.addHandler(EventTeamWebhookCreated, func(e interface{}) { fn(e.(*WebhookCreatedEvent)) })
}

// OnWebhookUpdated registers a handler for webhook updates, including
// deletions, which arrive as updates with DeletedAt set.
func (c *Client) OnWebhookUpdated(fn func(*WebhookUpdatedEvent)) {
	c.addHandler(EventTeamWebhookUpdated, func(e interface{}) { fn(e.(*WebhookUpdatedEvent)) })
}

// OnDocCreated registers a handler for doc creation.
func (c *Client) OnDocCreated(fn func(*DocCreatedEvent)) {
	c.addHandler(EventDocCreated, func(e interface{}) { fn(e.(*DocCreatedEvent)) })
}

// OnDocUpdated registers a handler for doc updates.
func (c *Client) OnDocUpdated(fn func(*DocUpdatedEvent)) {
	c.addHandler(EventDocUpdated, func(e interface{}) { fn(e.(*DocUpdatedEvent)) })
}

// OnDocDeleted registers a handler for doc deletion.
func (c *Client) OnDocDeleted(fn func(*DocDeletedEvent)) {
	c.addHandler(EventDocDeleted, func(e interface{}) { fn(e.(*DocDeletedEvent)) })
}

// OnForumTopicCreated registers a handler for forum topic creation.
func (c *Client) OnForumTopicCreated(fn func(*ForumTopicCreatedEvent)) {
	c.addHandler(EventForumTopicCreated, func(e interface{}) { fn(e.(*ForumTopicCreatedEvent)) })
}

// OnForumTopicUpdated registers a handler for forum topic updates.
func (c *Client) OnForumTopicUpdated(fn func(*ForumTopicUpdatedEvent)) {
	c.addHandler(EventForumTopicUpdated, func(e interface{}) { fn(e.(*ForumTopicUpdatedEvent)) })
}

// OnForumTopicDeleted registers a handler for forum topic deletion.
func (c *Client) OnForumTopicDeleted(fn func(*ForumTopicDeletedEvent)) {
	c.addHandler(EventForumTopicDeleted, func(e interface{}) { fn(e.(*ForumTopicDeletedEvent)) })
}

// OnForumTopicPinned registers a handler for forum topics being pinned.
func (c *Client) OnForumTopicPinned(fn func(*ForumTopicPinnedEvent)) {
	c.addHandler(EventForumTopicPinned, func(e interface{}) { fn(e.(*ForumTopicPinnedEvent)) })
}

// OnForumTopicUnpinned registers a handler for forum topics being
// unpinned.
func (c *Client) OnForumTopicUnpinned(fn func(*ForumTopicUnpinnedEvent)) {
	c.addHandler(EventForumTopicUnpinned, func(e interface{}) { fn(e.(*ForumTopicUnpinnedEvent)) })
}

// OnForumTopicLocked registers a handler for forum topics being locked.
func (c *Client) OnForumTopicLocked(fn func(*ForumTopicLockedEvent)) {
	c.addHandler(EventForumTopicLocked, func(e interface{}) { fn(e.(*ForumTopicLockedEvent)) })
}

// OnForumTopicUnlocked registers a handler for forum topics being
// unlocked.
func (c *Client) OnForumTopicUnlocked(fn func(*ForumTopicUnlockedEvent)) {
	c.addHandler(EventForumTopicUnlocked, func(e interface{}) { fn(e.(*ForumTopicUnlockedEvent)) })
}

// OnListItemCreated registers a handler for list item creation.
func (c *Client) OnListItemCreated(fn func(*ListItemCreatedEvent)) {
	c.addHandler(EventListItemCreated, func(e interface{}) { fn(e.(*ListItemCreatedEvent)) })
}

// OnListItemUpdated registers a handler for list item updates.
func (c *Client) OnListItemUpdated(fn func(*ListItemUpdatedEvent)) {
	c.addHandler(EventListItemUpdated, func(e interface{}) { fn(e.(*ListItemUpdatedEvent)) })
}

// OnListItemDeleted registers a handler for list item deletion.
func (c *Client) OnListItemDeleted(fn func(*ListItemDeletedEvent)) {
	c.addHandler(EventListItemDeleted, func(e interface{}) { fn(e.(*ListItemDeletedEvent)) })
}

// OnListItemCompleted registers a handler for list items being checked
// off.
func (c *Client) OnListItemCompleted(fn func(*ListItemCompletedEvent)) {
	c.addHandler(EventListItemCompleted, func(e interface{}) { fn(e.(*ListItemCompletedEvent)) })
}

// OnListItemUncompleted registers a handler for list items being
// unchecked.
func (c *Client) OnListItemUncompleted(fn func(*ListItemUncompletedEvent)) {
	c.addHandler(EventListItemUncompleted, func(e interface{}) { fn(e.(*ListItemUncompletedEvent)) })
}

// OnCalendarEventCreated registers a handler for calendar event creation.
func (c *Client) OnCalendarEventCreated(fn func(*CalendarEventCreatedEvent)) {
	c.addHandler(EventCalendarEventCreated, func(e interface{}) { fn(e.(*CalendarEventCreatedEvent)) })
}

// OnCalendarEventUpdated registers a handler for calendar event updates.
func (c *Client) OnCalendarEventUpdated(fn func(*CalendarEventUpdatedEvent)) {
	c.addHandler(EventCalendarEventUpdated, func(e interface{}) { fn(e.(*CalendarEventUpdatedEvent)) })
}

// OnCalendarEventDeleted registers a handler for calendar event deletion.
func (c *Client) OnCalendarEventDeleted(fn func(*CalendarEventDeletedEvent)) {
	c.addHandler(EventCalendarEventDeleted, func(e interface{}) { fn(e.(*CalendarEventDeletedEvent)) })
}

// OnCalendarEventRSVPUpdated registers a handler for RSVP creation and
// updates.
func (c *Client) OnCalendarEventRSVPUpdated(fn func(*CalendarEventRSVPUpdatedEvent)) {
	c.addHandler(EventCalendarEventRsvpUpdated, func(e interface{}) { fn(e.(*CalendarEventRSVPUpdatedEvent)) })
}

// OnCalendarEventRSVPDeleted registers a handler for RSVP deletion.
func (c *Client) OnCalendarEventRSVPDeleted(fn func(*CalendarEventRSVPDeletedEvent)) {
	c.addHandler(EventCalendarEventRsvpDeleted, func(e interface{}) { fn(e.(*CalendarEventRSVPDeletedEvent)) })
}

// OnCalendarEventRSVPManyUpdated registers a handler for bulk RSVP
// updates.
func (c *Client) OnCalendarEventRSVPManyUpdated(fn func(*CalendarEventRSVPManyUpdatedEvent)) {
	c.addHandler(EventCalendarEventRsvpManyUpdated, func(e interface{}) { fn(e.(*CalendarEventRSVPManyUpdatedEvent)) })
}

// OnEvent registers a catch-all handler invoked for every decoded event
// after its typed handlers. For event names the library does not know,
// the event is the raw json.RawMessage payload.
func (c *Client) OnEvent(fn func(name string, event interface{})) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.catchAll = append(c.catchAll, fn)
}

// OnError registers a handler for errors surfaced during event delivery,
// such as undecodable payloads or panicking handlers. Without one,
// errors are logged and delivery continues.
func (c *Client) OnError(fn func(err error)) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.errorHandlers = append(c.errorHandlers, fn)
}

// Synthetic event names. These never collide with gateway event names,
// which are CamelCase.
const (
	eventReady      = "_ready"
	eventConnect    = "_connect"
	eventDisconnect = "_disconnect"
)

func (c *Client) dispatch(name string, event interface{}) {
	c.handlersMu.RLock()
	handlers := c.handlers[name]
	catchAll := c.catchAll
	c.handlersMu.RUnlock()

	for _, fn := range handlers {
		c.invoke(name, fn, event)
	}
	for _, fn := range catchAll {
		c.invoke(name, func(e interface{}) { fn(name, e) }, event)
	}
}

func (c *Client) invoke(name string, fn func(interface{}), event interface{}) {
	defer func() {
		if r := recover(); r != nil {
			c.deliverError(errors.Errorf("panic in %s handler: %v", name, r))
		}
	}()
	fn(event)
}

func (c *Client) deliverError(err error) {
	c.handlersMu.RLock()
	errorHandlers := c.errorHandlers
	c.handlersMu.RUnlock()

	if len(errorHandlers) == 0 {
		c.logger.Error(err)
		return
	}
	for _, fn := range errorHandlers {
		fn(err)
	}
}

// dispatchGatewayEvent decodes a raw gateway event and delivers it.
func (c *Client) dispatchGatewayEvent(name string, data json.RawMessage) {
	event, err := c.decodeEvent(name, data)
	if err != nil {
		c.deliverError(err)
		return
	}
	if event == nil {
		// Unknown to the library. Catch-all handlers still get the raw
		// payload so new API events are usable before a release names
		// them.
		c.dispatch(name, data)
		return
	}
	c.dispatch(name, event)
}
