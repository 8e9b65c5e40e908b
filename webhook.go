package guilded

import (
	"context"
	"time"
)

// Webhook is a channel webhook.
type Webhook struct {
	client *Client

	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ServerID  string     `json:"serverId"`
	ChannelID string     `json:"channelId"`
	Token     string     `json:"token,omitempty"`
	CreatedBy string     `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Deleted reports whether the webhook has been deleted. Webhook update
// events deliver deletions as an update with DeletedAt set.
func (w *Webhook) Deleted() bool {
	return w.DeletedAt != nil
}

// Update renames the webhook and/or moves it to another channel.
func (w *Webhook) Update(ctx context.Context, name, channelID string) (*Webhook, error) {
	return w.client.UpdateWebhook(ctx, w.ServerID, w.ID, name, channelID)
}

// Delete deletes the webhook.
func (w *Webhook) Delete(ctx context.Context) error {
	return w.client.DeleteWebhook(ctx, w.ServerID, w.ID)
}

type webhookEnvelope struct {
	Webhook *Webhook `json:"webhook"`
}

type webhooksEnvelope struct {
	Webhooks []*Webhook `json:"webhooks"`
}

// CreateWebhook creates a webhook in a channel.
func (c *Client) CreateWebhook(ctx context.Context, serverID, channelID, name string) (*Webhook, error) {
	body := struct {
		Name      string `json:"name"`
		ChannelID string `json:"channelId"`
	}{Name: name, ChannelID: channelID}
	var envelope webhookEnvelope
	if err := c.rest.Do(ctx, "POST", "/servers/"+serverID+"/webhooks", body, &envelope); err != nil {
		return nil, err
	}
	return c.bindWebhook(envelope.Webhook), nil
}

// FetchWebhook fetches a webhook from the API.
func (c *Client) FetchWebhook(ctx context.Context, serverID, webhookID string) (*Webhook, error) {
	var envelope webhookEnvelope
	if err := c.rest.Do(ctx, "GET", "/servers/"+serverID+"/webhooks/"+webhookID, nil, &envelope); err != nil {
		return nil, err
	}
	return c.bindWebhook(envelope.Webhook), nil
}

// FetchWebhooks fetches the webhooks for a channel.
func (c *Client) FetchWebhooks(ctx context.Context, serverID, channelID string) ([]*Webhook, error) {
	var envelope webhooksEnvelope
	if err := c.rest.Do(ctx, "GET", "/servers/"+serverID+"/webhooks?channelId="+channelID, nil, &envelope); err != nil {
		return nil, err
	}
	for _, w := range envelope.Webhooks {
		c.bindWebhook(w)
	}
	return envelope.Webhooks, nil
}

// UpdateWebhook renames a webhook and/or moves it to another channel.
// channelID may be empty to leave the channel unchanged.
func (c *Client) UpdateWebhook(ctx context.Context, serverID, webhookID, name, channelID string) (*Webhook, error) {
	body := struct {
		Name      string `json:"name"`
		ChannelID string `json:"channelId,omitempty"`
	}{Name: name, ChannelID: channelID}
	var envelope webhookEnvelope
	if err := c.rest.Do(ctx, "PUT", "/servers/"+serverID+"/webhooks/"+webhookID, body, &envelope); err != nil {
		return nil, err
	}
	return c.bindWebhook(envelope.Webhook), nil
}

// DeleteWebhook deletes a webhook.
func (c *Client) DeleteWebhook(ctx context.Context, serverID, webhookID string) error {
	return c.rest.Do(ctx, "DELETE", "/servers/"+serverID+"/webhooks/"+webhookID, nil, nil)
}

func (c *Client) bindWebhook(w *Webhook) *Webhook {
	if w == nil {
		return nil
	}
	w.client = c
	return w
}
