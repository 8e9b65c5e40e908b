package guilded

import (
	"context"
	"strconv"
	"time"
)

// ForumTopic is a topic in a forum channel.
type ForumTopic struct {
	client *Client

	ID        int    `json:"id"`
	ServerID  string `json:"serverId"`
	ChannelID string `json:"channelId"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	IsPinned  bool   `json:"isPinned,omitempty"`
	IsLocked  bool   `json:"isLocked,omitempty"`

	CreatedBy          string     `json:"createdBy"`
	CreatedByWebhookID string     `json:"createdByWebhookId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
	BumpedAt           *time.Time `json:"bumpedAt,omitempty"`
}

// Update replaces the topic's title and content.
func (t *ForumTopic) Update(ctx context.Context, title, content string) (*ForumTopic, error) {
	return t.client.UpdateForumTopic(ctx, t.ChannelID, t.ID, title, content)
}

// Delete deletes the topic.
func (t *ForumTopic) Delete(ctx context.Context) error {
	return t.client.DeleteForumTopic(ctx, t.ChannelID, t.ID)
}

// Pin pins the topic.
func (t *ForumTopic) Pin(ctx context.Context) error {
	return t.client.PinForumTopic(ctx, t.ChannelID, t.ID)
}

// Unpin unpins the topic.
func (t *ForumTopic) Unpin(ctx context.Context) error {
	return t.client.UnpinForumTopic(ctx, t.ChannelID, t.ID)
}

// Lock locks the topic.
func (t *ForumTopic) Lock(ctx context.Context) error {
	return t.client.LockForumTopic(ctx, t.ChannelID, t.ID)
}

// Unlock unlocks the topic.
func (t *ForumTopic) Unlock(ctx context.Context) error {
	return t.client.UnlockForumTopic(ctx, t.ChannelID, t.ID)
}

type forumTopicEnvelope struct {
	ForumTopic *ForumTopic `json:"forumTopic"`
}

type forumTopicsEnvelope struct {
	ForumTopics []*ForumTopic `json:"forumTopics"`
}

func forumTopicPath(channelID string, topicID int) string {
	return "/channels/" + channelID + "/topics/" + strconv.Itoa(topicID)
}

// CreateForumTopic creates a topic in a forum channel.
func (c *Client) CreateForumTopic(ctx context.Context, channelID, title, content string) (*ForumTopic, error) {
	body := struct {
		Title   string `json:"title"`
		Content string `json:"content,omitempty"`
	}{Title: title, Content: content}
	var envelope forumTopicEnvelope
	if err := c.rest.Do(ctx, "POST", "/channels/"+channelID+"/topics", body, &envelope); err != nil {
		return nil, err
	}
	return c.bindForumTopic(envelope.ForumTopic), nil
}

// FetchForumTopic fetches a forum topic from the API.
func (c *Client) FetchForumTopic(ctx context.Context, channelID string, topicID int) (*ForumTopic, error) {
	var envelope forumTopicEnvelope
	if err := c.rest.Do(ctx, "GET", forumTopicPath(channelID, topicID), nil, &envelope); err != nil {
		return nil, err
	}
	return c.bindForumTopic(envelope.ForumTopic), nil
}

// FetchForumTopics fetches a forum channel's topics, most recently bumped
// first.
func (c *Client) FetchForumTopics(ctx context.Context, channelID string) ([]*ForumTopic, error) {
	var envelope forumTopicsEnvelope
	if err := c.rest.Do(ctx, "GET", "/channels/"+channelID+"/topics", nil, &envelope); err != nil {
		return nil, err
	}
	for _, t := range envelope.ForumTopics {
		c.bindForumTopic(t)
	}
	return envelope.ForumTopics, nil
}

// UpdateForumTopic replaces a forum topic's title and content.
func (c *Client) UpdateForumTopic(ctx context.Context, channelID string, topicID int, title, content string) (*ForumTopic, error) {
	body := struct {
		Title   string `json:"title"`
		Content string `json:"content,omitempty"`
	}{Title: title, Content: content}
	var envelope forumTopicEnvelope
	if err := c.rest.Do(ctx, "PATCH", forumTopicPath(channelID, topicID), body, &envelope); err != nil {
		return nil, err
	}
	return c.bindForumTopic(envelope.ForumTopic), nil
}

// DeleteForumTopic deletes a forum topic.
func (c *Client) DeleteForumTopic(ctx context.Context, channelID string, topicID int) error {
	return c.rest.Do(ctx, "DELETE", forumTopicPath(channelID, topicID), nil, nil)
}

// PinForumTopic pins a forum topic.
func (c *Client) PinForumTopic(ctx context.Context, channelID string, topicID int) error {
	return c.rest.Do(ctx, "PUT", forumTopicPath(channelID, topicID)+"/pin", nil, nil)
}

// UnpinForumTopic unpins a forum topic.
func (c *Client) UnpinForumTopic(ctx context.Context, channelID string, topicID int) error {
	return c.rest.Do(ctx, "DELETE", forumTopicPath(channelID, topicID)+"/pin", nil, nil)
}

// LockForumTopic locks a forum topic.
func (c *Client) LockForumTopic(ctx context.Context, channelID string, topicID int) error {
	return c.rest.Do(ctx, "PUT", forumTopicPath(channelID, topicID)+"/lock", nil, nil)
}

// UnlockForumTopic unlocks a forum topic.
func (c *Client) UnlockForumTopic(ctx context.Context, channelID string, topicID int) error {
	return c.rest.Do(ctx, "DELETE", forumTopicPath(channelID, topicID)+"/lock", nil, nil)
}

func (c *Client) bindForumTopic(t *ForumTopic) *ForumTopic {
	if t == nil {
		return nil
	}
	t.client = c
	return t
}
