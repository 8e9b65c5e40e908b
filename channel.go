package guilded

import (
	"context"
	"time"
)

// Channel types as reported by the API.
const (
	ChannelTypeChat      = "chat"
	ChannelTypeVoice     = "voice"
	ChannelTypeStream    = "stream"
	ChannelTypeForums    = "forums"
	ChannelTypeDocs      = "docs"
	ChannelTypeList      = "list"
	ChannelTypeCalendar  = "calendar"
	ChannelTypeMedia     = "media"
	ChannelTypeAnnounce  = "announcements"
	ChannelTypeScheduler = "scheduling"
	ChannelTypeDM        = "dm"
)

// Channel is a server channel or a DM channel.
type Channel struct {
	client *Client

	ID        string `json:"id"`
	Type      string `json:"type"`
	ServerID  string `json:"serverId,omitempty"`
	GroupID   string `json:"groupId,omitempty"`
	ParentID  string `json:"parentId,omitempty"`
	MessageID string `json:"messageId,omitempty"` // set for threads spawned from a message
	Name      string `json:"name"`
	Topic     string `json:"topic,omitempty"`
	IsPublic  bool   `json:"isPublic,omitempty"`

	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
	ArchivedBy string     `json:"archivedBy,omitempty"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
}

// Mention returns the markup that mentions the channel in message
// content.
func (ch *Channel) Mention() string {
	return "<#" + ch.ID + ">"
}

// DM reports whether the channel is a direct message channel.
func (ch *Channel) DM() bool {
	return ch.Type == ChannelTypeDM || ch.ServerID == ""
}

// Archived reports whether the channel has been archived.
func (ch *Channel) Archived() bool {
	return ch.ArchivedAt != nil
}

// Server returns the cached server the channel belongs to, if available.
func (ch *Channel) Server() *Server {
	if ch.client == nil || ch.ServerID == "" {
		return nil
	}
	return ch.client.CachedServer(ch.ServerID)
}

// Send sends a plain text message to the channel.
func (ch *Channel) Send(ctx context.Context, content string) (*Message, error) {
	return ch.client.SendMessage(ctx, ch.ID, content)
}

// SendMessage sends a message to the channel.
func (ch *Channel) SendMessage(ctx context.Context, create *MessageCreate) (*Message, error) {
	return ch.client.CreateMessage(ctx, ch.ID, create)
}

// Message fetches a single message from the channel.
func (ch *Channel) Message(ctx context.Context, messageID string) (*Message, error) {
	return ch.client.FetchMessage(ctx, ch.ID, messageID)
}

// Messages fetches a page of the channel's message history, newest
// first, along with a cursor for the next page.
func (ch *Channel) Messages(ctx context.Context, opts *MessagesOptions) (*MessagePage, error) {
	return ch.client.MessageHistory(ctx, ch.ID, opts)
}

// Update applies the given changes to the channel.
func (ch *Channel) Update(ctx context.Context, update *ChannelUpdate) (*Channel, error) {
	return ch.client.UpdateChannel(ctx, ch.ID, update)
}

// Archive archives the channel.
func (ch *Channel) Archive(ctx context.Context) error {
	return ch.client.ArchiveChannel(ctx, ch.ID)
}

// Restore restores an archived channel.
func (ch *Channel) Restore(ctx context.Context) error {
	return ch.client.RestoreChannel(ctx, ch.ID)
}

// Delete deletes the channel.
func (ch *Channel) Delete(ctx context.Context) error {
	return ch.client.DeleteChannel(ctx, ch.ID)
}

// ChannelCreate is the payload for creating a channel.
type ChannelCreate struct {
	Name       string `json:"name"`
	Topic      string `json:"topic,omitempty"`
	Type       string `json:"type"`
	ServerID   string `json:"serverId,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
	CategoryID int    `json:"categoryId,omitempty"`
	IsPublic   bool   `json:"isPublic,omitempty"`
}

// ChannelUpdate is the payload for updating a channel. Nil fields are
// left unchanged.
type ChannelUpdate struct {
	Name     *string `json:"name,omitempty"`
	Topic    *string `json:"topic,omitempty"`
	IsPublic *bool   `json:"isPublic,omitempty"`
}

type channelEnvelope struct {
	Channel *Channel `json:"channel"`
}

// CreateChannel creates a channel.
func (c *Client) CreateChannel(ctx context.Context, create *ChannelCreate) (*Channel, error) {
	var envelope channelEnvelope
	if err := c.rest.Do(ctx, "POST", "/channels", create, &envelope); err != nil {
		return nil, err
	}
	return c.bindChannel(envelope.Channel), nil
}

// FetchChannel fetches a channel from the API.
func (c *Client) FetchChannel(ctx context.Context, channelID string) (*Channel, error) {
	var envelope channelEnvelope
	if err := c.rest.Do(ctx, "GET", "/channels/"+channelID, nil, &envelope); err != nil {
		return nil, err
	}
	return c.bindChannel(envelope.Channel), nil
}

// ChannelOrFetch returns the cached channel if present and fetches it
// from the API otherwise.
func (c *Client) ChannelOrFetch(ctx context.Context, channelID string) (*Channel, error) {
	if ch := c.CachedChannel(channelID); ch != nil {
		return ch, nil
	}
	return c.FetchChannel(ctx, channelID)
}

// UpdateChannel applies the given changes to a channel.
func (c *Client) UpdateChannel(ctx context.Context, channelID string, update *ChannelUpdate) (*Channel, error) {
	var envelope channelEnvelope
	if err := c.rest.Do(ctx, "PATCH", "/channels/"+channelID, update, &envelope); err != nil {
		return nil, err
	}
	return c.bindChannel(envelope.Channel), nil
}

// ArchiveChannel archives a channel.
func (c *Client) ArchiveChannel(ctx context.Context, channelID string) error {
	return c.rest.Do(ctx, "PUT", "/channels/"+channelID+"/archive", nil, nil)
}

// RestoreChannel restores an archived channel.
func (c *Client) RestoreChannel(ctx context.Context, channelID string) error {
	return c.rest.Do(ctx, "DELETE", "/channels/"+channelID+"/archive", nil, nil)
}

// DeleteChannel deletes a channel.
func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	return c.rest.Do(ctx, "DELETE", "/channels/"+channelID, nil, nil)
}

func (c *Client) bindChannel(ch *Channel) *Channel {
	if ch == nil {
		return nil
	}
	ch.client = c
	c.state.putChannel(ch)
	return ch
}
