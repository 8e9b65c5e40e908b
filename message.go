package guilded

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Message is a chat message.
type Message struct {
	client *Client

	ID              string   `json:"id"`
	Type            string   `json:"type,omitempty"`
	ServerID        string   `json:"serverId,omitempty"`
	GroupID         string   `json:"groupId,omitempty"`
	ChannelID       string   `json:"channelId"`
	Content         string   `json:"content"`
	ReplyMessageIDs []string `json:"replyMessageIds,omitempty"`
	Embeds          []Embed  `json:"embeds,omitempty"`
	IsPrivate       bool     `json:"isPrivate,omitempty"`
	IsSilent        bool     `json:"isSilent,omitempty"`

	CreatedAt          time.Time  `json:"createdAt"`
	CreatedBy          string     `json:"createdBy"`
	CreatedByWebhookID string     `json:"createdByWebhookId,omitempty"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
	DeletedAt          *time.Time `json:"deletedAt,omitempty"`
}

// Embed is a rich content section within a message. Only the fields the
// chat API round trips are modeled; rendering is up to the platform.
type Embed struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	URL         string      `json:"url,omitempty"`
	Color       int         `json:"color,omitempty"`
	Timestamp   *time.Time  `json:"timestamp,omitempty"`
	Footer      *EmbedField `json:"footer,omitempty"`
	Author      *EmbedField `json:"author,omitempty"`
	Fields      []EmbedItem `json:"fields,omitempty"`
}

// EmbedField is a named sub-section of an embed, such as its footer or
// author line.
type EmbedField struct {
	Text    string `json:"text,omitempty"`
	Name    string `json:"name,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// EmbedItem is a single field row of an embed.
type EmbedItem struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Author returns the cached user that sent the message, if available.
func (m *Message) Author() *User {
	if m.client == nil {
		return nil
	}
	return m.client.CachedUser(m.CreatedBy)
}

// ByBot reports whether the message was sent by a bot or webhook.
func (m *Message) ByBot() bool {
	if m.CreatedByWebhookID != "" {
		return true
	}
	if author := m.Author(); author != nil {
		return author.Bot()
	}
	return false
}

// JumpURL returns a URL that opens the message in the Guilded app.
func (m *Message) JumpURL() string {
	return fmt.Sprintf("https://guilded.gg/channels/%s/chat?messageId=%s", m.ChannelID, m.ID)
}

// Channel returns the cached channel the message was sent in, if
// available.
func (m *Message) Channel() *Channel {
	if m.client == nil {
		return nil
	}
	return m.client.CachedChannel(m.ChannelID)
}

// Reply sends a reply to the message in the same channel.
func (m *Message) Reply(ctx context.Context, content string) (*Message, error) {
	return m.client.CreateMessage(ctx, m.ChannelID, &MessageCreate{
		Content:         content,
		ReplyMessageIDs: []string{m.ID},
		IsPrivate:       m.IsPrivate,
	})
}

// Edit replaces the message's content.
func (m *Message) Edit(ctx context.Context, content string) (*Message, error) {
	return m.client.UpdateMessage(ctx, m.ChannelID, m.ID, content)
}

// Delete deletes the message.
func (m *Message) Delete(ctx context.Context) error {
	return m.client.DeleteMessage(ctx, m.ChannelID, m.ID)
}

// AddReaction adds the given emote as a reaction to the message.
func (m *Message) AddReaction(ctx context.Context, emoteID int) error {
	return m.client.AddReaction(ctx, m.ChannelID, m.ID, emoteID)
}

// RemoveReaction removes the client's reaction with the given emote from
// the message.
func (m *Message) RemoveReaction(ctx context.Context, emoteID int) error {
	return m.client.RemoveReaction(ctx, m.ChannelID, m.ID, emoteID)
}

// MessageCreate is the payload for creating a message.
type MessageCreate struct {
	Content         string   `json:"content"`
	ReplyMessageIDs []string `json:"replyMessageIds,omitempty"`
	Embeds          []Embed  `json:"embeds,omitempty"`
	IsPrivate       bool     `json:"isPrivate,omitempty"`
	IsSilent        bool     `json:"isSilent,omitempty"`
}

// MessagesOptions controls FetchMessages.
type MessagesOptions struct {
	// Before restricts results to messages created before the given time.
	Before time.Time

	// Limit caps the number of messages returned. The API default is 50.
	Limit int

	IncludePrivate bool
}

type messageEnvelope struct {
	Message *Message `json:"message"`
}

type messagesEnvelope struct {
	Messages []*Message `json:"messages"`
}

// SendMessage sends a plain text message to a channel.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) (*Message, error) {
	return c.CreateMessage(ctx, channelID, &MessageCreate{Content: content})
}

// CreateMessage sends a message to a channel.
func (c *Client) CreateMessage(ctx context.Context, channelID string, create *MessageCreate) (*Message, error) {
	var envelope messageEnvelope
	if err := c.rest.Do(ctx, "POST", "/channels/"+channelID+"/messages", create, &envelope); err != nil {
		return nil, err
	}
	return c.bindMessage(envelope.Message), nil
}

// FetchMessage fetches a single message from the API.
func (c *Client) FetchMessage(ctx context.Context, channelID, messageID string) (*Message, error) {
	var envelope messageEnvelope
	if err := c.rest.Do(ctx, "GET", "/channels/"+channelID+"/messages/"+messageID, nil, &envelope); err != nil {
		return nil, err
	}
	return c.bindMessage(envelope.Message), nil
}

// FetchMessages fetches recent messages from a channel, newest first.
func (c *Client) FetchMessages(ctx context.Context, channelID string, opts *MessagesOptions) ([]*Message, error) {
	path := "/channels/" + channelID + "/messages"
	if opts != nil {
		query := url.Values{}
		if !opts.Before.IsZero() {
			query.Set("before", opts.Before.UTC().Format(time.RFC3339))
		}
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.IncludePrivate {
			query.Set("includePrivate", "true")
		}
		if encoded := query.Encode(); encoded != "" {
			path += "?" + encoded
		}
	}
	var envelope messagesEnvelope
	if err := c.rest.Do(ctx, "GET", path, nil, &envelope); err != nil {
		return nil, err
	}
	for _, m := range envelope.Messages {
		c.bindMessage(m)
	}
	return envelope.Messages, nil
}

// UpdateMessage replaces a message's content.
func (c *Client) UpdateMessage(ctx context.Context, channelID, messageID, content string) (*Message, error) {
	body := struct {
		Content string `json:"content"`
	}{Content: content}
	var envelope messageEnvelope
	if err := c.rest.Do(ctx, "PUT", "/channels/"+channelID+"/messages/"+messageID, body, &envelope); err != nil {
		return nil, err
	}
	return c.bindMessage(envelope.Message), nil
}

// DeleteMessage deletes a message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return c.rest.Do(ctx, "DELETE", "/channels/"+channelID+"/messages/"+messageID, nil, nil)
}

// AddReaction adds an emote reaction to a message.
func (c *Client) AddReaction(ctx context.Context, channelID, messageID string, emoteID int) error {
	return c.rest.Do(ctx, "PUT", reactionPath(channelID, messageID, emoteID), nil, nil)
}

// RemoveReaction removes the client's emote reaction from a message.
func (c *Client) RemoveReaction(ctx context.Context, channelID, messageID string, emoteID int) error {
	return c.rest.Do(ctx, "DELETE", reactionPath(channelID, messageID, emoteID), nil, nil)
}

func reactionPath(channelID, messageID string, emoteID int) string {
	return "/channels/" + channelID + "/content/" + messageID + "/emotes/" + strconv.Itoa(emoteID)
}

// bindMessage attaches the client to a freshly decoded message and caches
// it.
func (c *Client) bindMessage(m *Message) *Message {
	if m == nil {
		return nil
	}
	m.client = c
	c.state.putMessage(m)
	return m
}
