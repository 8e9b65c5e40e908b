package guilded

import (
	"encoding/json"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Gateway event names.
const (
	EventChatMessageCreated           = "ChatMessageCreated"
	EventChatMessageUpdated           = "ChatMessageUpdated"
	EventChatMessageDeleted           = "ChatMessageDeleted"
	EventMessageReactionCreated       = "ChannelMessageReactionCreated"
	EventMessageReactionDeleted       = "ChannelMessageReactionDeleted"
	EventTeamMemberJoined             = "TeamMemberJoined"
	EventTeamMemberRemoved            = "TeamMemberRemoved"
	EventTeamMemberBanned             = "TeamMemberBanned"
	EventTeamMemberUnbanned           = "TeamMemberUnbanned"
	EventTeamMemberUpdated            = "TeamMemberUpdated"
	EventTeamRolesUpdated             = "teamRolesUpdated"
	EventTeamChannelCreated           = "TeamChannelCreated"
	EventTeamChannelUpdated           = "TeamChannelUpdated"
	EventTeamChannelDeleted           = "TeamChannelDeleted"
	EventTeamWebhookCreated           = "TeamWebhookCreated"
	EventTeamWebhookUpdated           = "TeamWebhookUpdated"
	EventDocCreated                   = "DocCreated"
	EventDocUpdated                   = "DocUpdated"
	EventDocDeleted                   = "DocDeleted"
	EventForumTopicCreated            = "ForumTopicCreated"
	EventForumTopicUpdated            = "ForumTopicUpdated"
	EventForumTopicDeleted            = "ForumTopicDeleted"
	EventForumTopicPinned             = "ForumTopicPinned"
	EventForumTopicUnpinned           = "ForumTopicUnpinned"
	EventForumTopicLocked             = "ForumTopicLocked"
	EventForumTopicUnlocked           = "ForumTopicUnlocked"
	EventListItemCreated              = "ListItemCreated"
	EventListItemUpdated              = "ListItemUpdated"
	EventListItemDeleted              = "ListItemDeleted"
	EventListItemCompleted            = "ListItemCompleted"
	EventListItemUncompleted          = "ListItemUncompleted"
	EventCalendarEventCreated         = "CalendarEventCreated"
	EventCalendarEventUpdated         = "CalendarEventUpdated"
	EventCalendarEventDeleted         = "CalendarEventDeleted"
	EventCalendarEventRsvpUpdated     = "CalendarEventRsvpUpdated"
	EventCalendarEventRsvpDeleted     = "CalendarEventRsvpDeleted"
	EventCalendarEventRsvpManyUpdated = "CalendarEventRsvpManyUpdated"
)

// ReadyEvent is dispatched once the gateway welcome has been received and
// the client is fully established.
type ReadyEvent struct {
	User          *ClientUser
	LastMessageID string
}

// ConnectEvent is dispatched whenever a gateway connection is
// established, including reconnects.
type ConnectEvent struct {
	// ServerID is non-empty for server-scoped connections.
	ServerID string
}

// DisconnectEvent is dispatched whenever a gateway connection is lost.
// The client will reconnect on its own unless it is closing.
type DisconnectEvent struct {
	ServerID string
	Err      error
}

// MessageCreatedEvent corresponds to ChatMessageCreated.
type MessageCreatedEvent struct {
	ServerID string
	Message  *Message
}

// MessageUpdatedEvent corresponds to ChatMessageUpdated. Before is the
// cached message prior to the update, if it was cached.
type MessageUpdatedEvent struct {
	ServerID string
	Before   *Message
	Message  *Message
}

// MessageDeletedEvent corresponds to ChatMessageDeleted. Message is the
// cached message, if it was cached; the IDs and DeletedAt are always set.
type MessageDeletedEvent struct {
	ServerID  string
	MessageID string
	ChannelID string
	DeletedAt time.Time
	IsPrivate bool
	Message   *Message
}

// ReactionAddedEvent corresponds to ChannelMessageReactionCreated.
// Message and Member are from cache and may be nil.
type ReactionAddedEvent struct {
	ServerID string
	Reaction *Reaction
	Message  *Message
	Member   *Member
}

// ReactionRemovedEvent corresponds to ChannelMessageReactionDeleted.
type ReactionRemovedEvent struct {
	ServerID string
	Reaction *Reaction
	Message  *Message
	Member   *Member
}

// MemberJoinedEvent corresponds to TeamMemberJoined.
type MemberJoinedEvent struct {
	ServerID string
	Member   *Member
}

// MemberRemovedEvent corresponds to TeamMemberRemoved. Member is the
// cached member, if they were cached.
type MemberRemovedEvent struct {
	ServerID string
	UserID   string
	Kicked   bool
	Banned   bool
	Member   *Member
}

// BanCreatedEvent corresponds to TeamMemberBanned.
type BanCreatedEvent struct {
	ServerID string
	Ban      *ServerBan
	Member   *Member
}

// BanDeletedEvent corresponds to TeamMemberUnbanned.
type BanDeletedEvent struct {
	ServerID string
	Ban      *ServerBan
	Member   *Member
}

// MemberUpdatedEvent corresponds to TeamMemberUpdated. The gateway only
// delivers the fields that changed; Before is a copy of the cached member
// prior to the update, and Member is the cached member after applying the
// change. When the member was not cached, Before is nil and Member
// carries only the user id and the changed fields.
type MemberUpdatedEvent struct {
	ServerID string
	UserID   string
	Before   *Member
	Member   *Member
}

// MemberRoleIDs is a single member's role assignment within a
// teamRolesUpdated event.
type MemberRoleIDs struct {
	UserID  string `json:"userId"`
	RoleIDs []int  `json:"roleIds"`
}

// MemberRolesUpdatedEvent corresponds to teamRolesUpdated. Before holds
// copies of the cached members prior to the update; members that were not
// cached appear in Members but not in Before.
type MemberRolesUpdatedEvent struct {
	ServerID string
	Updates  []MemberRoleIDs
	Before   []*Member
	Members  []*Member
}

// ChannelCreatedEvent corresponds to TeamChannelCreated.
type ChannelCreatedEvent struct {
	ServerID string
	Channel  *Channel
}

// ChannelUpdatedEvent corresponds to TeamChannelUpdated. Before is the
// cached channel prior to the update, if it was cached.
type ChannelUpdatedEvent struct {
	ServerID string
	Before   *Channel
	Channel  *Channel
}

// ChannelDeletedEvent corresponds to TeamChannelDeleted.
type ChannelDeletedEvent struct {
	ServerID string
	Channel  *Channel
}

// WebhookCreatedEvent corresponds to TeamWebhookCreated.
type WebhookCreatedEvent struct {
	ServerID string
	Webhook  *Webhook
}

// WebhookUpdatedEvent corresponds to TeamWebhookUpdated. A webhook
// deletion is delivered as an update with Webhook.DeletedAt set.
type WebhookUpdatedEvent struct {
	ServerID string
	Webhook  *Webhook
}

// DocCreatedEvent corresponds to DocCreated.
type DocCreatedEvent struct {
	ServerID string
	Doc      *Doc
}

// DocUpdatedEvent corresponds to DocUpdated.
type DocUpdatedEvent struct {
	ServerID string
	Doc      *Doc
}

// DocDeletedEvent corresponds to DocDeleted.
type DocDeletedEvent struct {
	ServerID string
	Doc      *Doc
}

// ForumTopicEvent is the shape shared by all forum topic events; the
// concrete event types below distinguish what happened.
type ForumTopicEvent struct {
	ServerID string
	Topic    *ForumTopic
}

// ForumTopicCreatedEvent corresponds to ForumTopicCreated.
type ForumTopicCreatedEvent struct{ ForumTopicEvent }

// ForumTopicUpdatedEvent corresponds to ForumTopicUpdated.
type ForumTopicUpdatedEvent struct{ ForumTopicEvent }

// ForumTopicDeletedEvent corresponds to ForumTopicDeleted.
type ForumTopicDeletedEvent struct{ ForumTopicEvent }

// ForumTopicPinnedEvent corresponds to ForumTopicPinned.
type ForumTopicPinnedEvent struct{ ForumTopicEvent }

// ForumTopicUnpinnedEvent corresponds to ForumTopicUnpinned.
type ForumTopicUnpinnedEvent struct{ ForumTopicEvent }

// ForumTopicLockedEvent corresponds to ForumTopicLocked.
type ForumTopicLockedEvent struct{ ForumTopicEvent }

// ForumTopicUnlockedEvent corresponds to ForumTopicUnlocked.
type ForumTopicUnlockedEvent struct{ ForumTopicEvent }

// ListItemEvent is the shape shared by all list item events.
type ListItemEvent struct {
	ServerID string
	Item     *ListItem
}

// ListItemCreatedEvent corresponds to ListItemCreated.
type ListItemCreatedEvent struct{ ListItemEvent }

// ListItemUpdatedEvent corresponds to ListItemUpdated.
type ListItemUpdatedEvent struct{ ListItemEvent }

// ListItemDeletedEvent corresponds to ListItemDeleted.
type ListItemDeletedEvent struct{ ListItemEvent }

// ListItemCompletedEvent corresponds to ListItemCompleted.
type ListItemCompletedEvent struct{ ListItemEvent }

// ListItemUncompletedEvent corresponds to ListItemUncompleted.
type ListItemUncompletedEvent struct{ ListItemEvent }

// CalendarEventCreatedEvent corresponds to CalendarEventCreated.
type CalendarEventCreatedEvent struct {
	ServerID      string
	CalendarEvent *CalendarEvent
}

// CalendarEventUpdatedEvent corresponds to CalendarEventUpdated.
type CalendarEventUpdatedEvent struct {
	ServerID      string
	CalendarEvent *CalendarEvent
}

// CalendarEventDeletedEvent corresponds to CalendarEventDeleted.
type CalendarEventDeletedEvent struct {
	ServerID      string
	CalendarEvent *CalendarEvent
}

// CalendarEventRSVPUpdatedEvent corresponds to CalendarEventRsvpUpdated,
// which covers both creation and updates of an RSVP.
type CalendarEventRSVPUpdatedEvent struct {
	ServerID string
	RSVP     *CalendarEventRSVP
}

// CalendarEventRSVPDeletedEvent corresponds to CalendarEventRsvpDeleted.
type CalendarEventRSVPDeletedEvent struct {
	ServerID string
	RSVP     *CalendarEventRSVP
}

// CalendarEventRSVPManyUpdatedEvent corresponds to
// CalendarEventRsvpManyUpdated.
type CalendarEventRSVPManyUpdatedEvent struct {
	ServerID string
	RSVPs    []*CalendarEventRSVP
}

// decodeEvent decodes a gateway event payload into its typed event,
// maintaining the cache as a side effect. It returns nil for event names
// the library does not know; those still reach catch-all handlers as raw
// payloads.
func (c *Client) decodeEvent(name string, data json.RawMessage) (interface{}, error) {
	switch name {
	case EventChatMessageCreated:
		var payload struct {
			ServerID string   `json:"serverId"`
			Message  *Message `json:"message"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		return &MessageCreatedEvent{
			ServerID: payload.ServerID,
			Message:  c.bindMessage(payload.Message),
		}, nil

	case EventChatMessageUpdated:
		var payload struct {
			ServerID string   `json:"serverId"`
			Message  *Message `json:"message"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		var before *Message
		if payload.Message != nil {
			if cached := c.state.message(payload.Message.ID); cached != nil {
				copied := *cached
				before = &copied
			}
		}
		return &MessageUpdatedEvent{
			ServerID: payload.ServerID,
			Before:   before,
			Message:  c.bindMessage(payload.Message),
		}, nil

	case EventChatMessageDeleted:
		var payload struct {
			ServerID string `json:"serverId"`
			Message  struct {
				ID        string    `json:"id"`
				ChannelID string    `json:"channelId"`
				DeletedAt time.Time `json:"deletedAt"`
				IsPrivate bool      `json:"isPrivate"`
			} `json:"message"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		cached := c.state.removeMessage(payload.Message.ID)
		if cached != nil {
			deletedAt := payload.Message.DeletedAt
			cached.DeletedAt = &deletedAt
		}
		return &MessageDeletedEvent{
			ServerID:  payload.ServerID,
			MessageID: payload.Message.ID,
			ChannelID: payload.Message.ChannelID,
			DeletedAt: payload.Message.DeletedAt,
			IsPrivate: payload.Message.IsPrivate,
			Message:   cached,
		}, nil

	case EventMessageReactionCreated, EventMessageReactionDeleted:
		var payload struct {
			ServerID string    `json:"serverId"`
			Reaction *Reaction `json:"reaction"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		var message *Message
		var member *Member
		if payload.Reaction != nil {
			message = c.state.message(payload.Reaction.MessageID)
			member = c.state.member(payload.ServerID, payload.Reaction.CreatedBy)
		}
		if name == EventMessageReactionCreated {
			return &ReactionAddedEvent{
				ServerID: payload.ServerID,
				Reaction: payload.Reaction,
				Message:  message,
				Member:   member,
			}, nil
		}
		return &ReactionRemovedEvent{
			ServerID: payload.ServerID,
			Reaction: payload.Reaction,
			Message:  message,
			Member:   member,
		}, nil

	case EventTeamMemberJoined:
		var payload struct {
			ServerID string  `json:"serverId"`
			Member   *Member `json:"member"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		return &MemberJoinedEvent{
			ServerID: payload.ServerID,
			Member:   c.bindMember(payload.ServerID, payload.Member),
		}, nil

	case EventTeamMemberRemoved:
		var payload struct {
			ServerID string `json:"serverId"`
			UserID   string `json:"userId"`
			IsKick   bool   `json:"isKick"`
			IsBan    bool   `json:"isBan"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		return &MemberRemovedEvent{
			ServerID: payload.ServerID,
			UserID:   payload.UserID,
			Kicked:   payload.IsKick,
			Banned:   payload.IsBan,
			Member:   c.state.removeMember(payload.ServerID, payload.UserID),
		}, nil

	case EventTeamMemberBanned, EventTeamMemberUnbanned:
		var payload struct {
			ServerID string     `json:"serverId"`
			Ban      *ServerBan `json:"serverMemberBan"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		var member *Member
		if payload.Ban != nil {
			payload.Ban.ServerID = payload.ServerID
			member = c.state.member(payload.ServerID, payload.Ban.User.ID)
		}
		if name == EventTeamMemberBanned {
			return &BanCreatedEvent{ServerID: payload.ServerID, Ban: payload.Ban, Member: member}, nil
		}
		return &BanDeletedEvent{ServerID: payload.ServerID, Ban: payload.Ban, Member: member}, nil

	case EventTeamMemberUpdated:
		var payload struct {
			ServerID string `json:"serverId"`
			UserInfo struct {
				ID       string  `json:"id"`
				Nickname *string `json:"nickname"`
			} `json:"userInfo"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		var before *Member
		member := c.state.member(payload.ServerID, payload.UserInfo.ID)
		if member != nil {
			copied := *member
			before = &copied
			if payload.UserInfo.Nickname != nil {
				member.Nickname = *payload.UserInfo.Nickname
			}
		} else {
			member = &Member{
				client:   c,
				User:     User{ID: payload.UserInfo.ID, client: c},
				ServerID: payload.ServerID,
			}
			if payload.UserInfo.Nickname != nil {
				member.Nickname = *payload.UserInfo.Nickname
			}
		}
		return &MemberUpdatedEvent{
			ServerID: payload.ServerID,
			UserID:   payload.UserInfo.ID,
			Before:   before,
			Member:   member,
		}, nil

	case EventTeamRolesUpdated:
		var payload struct {
			ServerID      string          `json:"serverId"`
			MemberRoleIDs []MemberRoleIDs `json:"memberRoleIds"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		event := &MemberRolesUpdatedEvent{
			ServerID: payload.ServerID,
			Updates:  payload.MemberRoleIDs,
		}
		for _, update := range payload.MemberRoleIDs {
			member := c.state.member(payload.ServerID, update.UserID)
			if member != nil {
				copied := *member
				event.Before = append(event.Before, &copied)
				member.RoleIDs = update.RoleIDs
			} else {
				member = &Member{
					client:   c,
					User:     User{ID: update.UserID, client: c},
					ServerID: payload.ServerID,
					RoleIDs:  update.RoleIDs,
				}
			}
			event.Members = append(event.Members, member)
		}
		return event, nil

	case EventTeamChannelCreated, EventTeamChannelUpdated, EventTeamChannelDeleted:
		var payload struct {
			ServerID string   `json:"serverId"`
			Channel  *Channel `json:"channel"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		switch name {
		case EventTeamChannelCreated:
			return &ChannelCreatedEvent{
				ServerID: payload.ServerID,
				Channel:  c.bindChannel(payload.Channel),
			}, nil
		case EventTeamChannelUpdated:
			var before *Channel
			if payload.Channel != nil {
				if cached := c.state.channel(payload.Channel.ID); cached != nil {
					copied := *cached
					before = &copied
				}
			}
			return &ChannelUpdatedEvent{
				ServerID: payload.ServerID,
				Before:   before,
				Channel:  c.bindChannel(payload.Channel),
			}, nil
		default:
			if payload.Channel != nil {
				c.state.removeChannel(payload.Channel.ID)
				payload.Channel.client = c
			}
			return &ChannelDeletedEvent{
				ServerID: payload.ServerID,
				Channel:  payload.Channel,
			}, nil
		}

	case EventTeamWebhookCreated, EventTeamWebhookUpdated:
		var payload struct {
			ServerID string   `json:"serverId"`
			Webhook  *Webhook `json:"webhook"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		webhook := c.bindWebhook(payload.Webhook)
		if name == EventTeamWebhookCreated {
			return &WebhookCreatedEvent{ServerID: payload.ServerID, Webhook: webhook}, nil
		}
		return &WebhookUpdatedEvent{ServerID: payload.ServerID, Webhook: webhook}, nil

	case EventDocCreated, EventDocUpdated, EventDocDeleted:
		var payload struct {
			ServerID string `json:"serverId"`
			Doc      *Doc   `json:"doc"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		doc := c.bindDoc(payload.Doc)
		switch name {
		case EventDocCreated:
			return &DocCreatedEvent{ServerID: payload.ServerID, Doc: doc}, nil
		case EventDocUpdated:
			return &DocUpdatedEvent{ServerID: payload.ServerID, Doc: doc}, nil
		default:
			return &DocDeletedEvent{ServerID: payload.ServerID, Doc: doc}, nil
		}

	case EventForumTopicCreated, EventForumTopicUpdated, EventForumTopicDeleted,
		EventForumTopicPinned, EventForumTopicUnpinned, EventForumTopicLocked, EventForumTopicUnlocked:
		var payload struct {
			ServerID   string      `json:"serverId"`
			ForumTopic *ForumTopic `json:"forumTopic"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		base := ForumTopicEvent{
			ServerID: payload.ServerID,
			Topic:    c.bindForumTopic(payload.ForumTopic),
		}
		switch name {
		case EventForumTopicCreated:
			return &ForumTopicCreatedEvent{base}, nil
		case EventForumTopicUpdated:
			return &ForumTopicUpdatedEvent{base}, nil
		case EventForumTopicDeleted:
			return &ForumTopicDeletedEvent{base}, nil
		case EventForumTopicPinned:
			return &ForumTopicPinnedEvent{base}, nil
		case EventForumTopicUnpinned:
			return &ForumTopicUnpinnedEvent{base}, nil
		case EventForumTopicLocked:
			return &ForumTopicLockedEvent{base}, nil
		default:
			return &ForumTopicUnlockedEvent{base}, nil
		}

	case EventListItemCreated, EventListItemUpdated, EventListItemDeleted,
		EventListItemCompleted, EventListItemUncompleted:
		var payload struct {
			ServerID string    `json:"serverId"`
			ListItem *ListItem `json:"listItem"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		base := ListItemEvent{
			ServerID: payload.ServerID,
			Item:     c.bindListItem(payload.ListItem),
		}
		switch name {
		case EventListItemCreated:
			return &ListItemCreatedEvent{base}, nil
		case EventListItemUpdated:
			return &ListItemUpdatedEvent{base}, nil
		case EventListItemDeleted:
			return &ListItemDeletedEvent{base}, nil
		case EventListItemCompleted:
			return &ListItemCompletedEvent{base}, nil
		default:
			return &ListItemUncompletedEvent{base}, nil
		}

	case EventCalendarEventCreated, EventCalendarEventUpdated, EventCalendarEventDeleted:
		var payload struct {
			ServerID      string         `json:"serverId"`
			CalendarEvent *CalendarEvent `json:"calendarEvent"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		event := c.bindCalendarEvent(payload.CalendarEvent)
		switch name {
		case EventCalendarEventCreated:
			return &CalendarEventCreatedEvent{ServerID: payload.ServerID, CalendarEvent: event}, nil
		case EventCalendarEventUpdated:
			return &CalendarEventUpdatedEvent{ServerID: payload.ServerID, CalendarEvent: event}, nil
		default:
			return &CalendarEventDeletedEvent{ServerID: payload.ServerID, CalendarEvent: event}, nil
		}

	case EventCalendarEventRsvpUpdated, EventCalendarEventRsvpDeleted:
		var payload struct {
			ServerID string             `json:"serverId"`
			RSVP     *CalendarEventRSVP `json:"calendarEventRsvp"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		if name == EventCalendarEventRsvpUpdated {
			return &CalendarEventRSVPUpdatedEvent{ServerID: payload.ServerID, RSVP: payload.RSVP}, nil
		}
		return &CalendarEventRSVPDeletedEvent{ServerID: payload.ServerID, RSVP: payload.RSVP}, nil

	case EventCalendarEventRsvpManyUpdated:
		var payload struct {
			ServerID string               `json:"serverId"`
			RSVPs    []*CalendarEventRSVP `json:"calendarEventRsvps"`
		}
		if err := jsoniter.Unmarshal(data, &payload); err != nil {
			return nil, errors.Wrapf(err, "error decoding %s", name)
		}
		return &CalendarEventRSVPManyUpdatedEvent{ServerID: payload.ServerID, RSVPs: payload.RSVPs}, nil
	}

	return nil, nil
}
