package guilded

import (
	"context"
	"time"
)

// ListItem is an item in a list channel.
type ListItem struct {
	client *Client

	ID               string        `json:"id"`
	ServerID         string        `json:"serverId"`
	ChannelID        string        `json:"channelId"`
	Message          string        `json:"message"`
	Note             *ListItemNote `json:"note,omitempty"`
	ParentListItemID string        `json:"parentListItemId,omitempty"`

	CreatedBy          string     `json:"createdBy"`
	CreatedByWebhookID string     `json:"createdByWebhookId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedBy          string     `json:"updatedBy,omitempty"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
	CompletedBy        string     `json:"completedBy,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

// ListItemNote is the free-form note attached to a list item.
type ListItemNote struct {
	Content   string     `json:"content"`
	CreatedBy string     `json:"createdBy,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Completed reports whether the item has been checked off.
func (li *ListItem) Completed() bool {
	return li.CompletedAt != nil
}

// Update replaces the item's message and note. note may be empty to clear
// it.
func (li *ListItem) Update(ctx context.Context, message, note string) (*ListItem, error) {
	return li.client.UpdateListItem(ctx, li.ChannelID, li.ID, message, note)
}

// Delete deletes the item.
func (li *ListItem) Delete(ctx context.Context) error {
	return li.client.DeleteListItem(ctx, li.ChannelID, li.ID)
}

// Complete checks the item off.
func (li *ListItem) Complete(ctx context.Context) error {
	return li.client.CompleteListItem(ctx, li.ChannelID, li.ID)
}

// Uncomplete unchecks the item.
func (li *ListItem) Uncomplete(ctx context.Context) error {
	return li.client.UncompleteListItem(ctx, li.ChannelID, li.ID)
}

type listItemEnvelope struct {
	ListItem *ListItem `json:"listItem"`
}

type listItemsEnvelope struct {
	ListItems []*ListItem `json:"listItems"`
}

type listItemBody struct {
	Message string        `json:"message"`
	Note    *ListItemNote `json:"note,omitempty"`
}

func newListItemBody(message, note string) listItemBody {
	body := listItemBody{Message: message}
	if note != "" {
		body.Note = &ListItemNote{Content: note}
	}
	return body
}

// CreateListItem creates an item in a list channel. note may be empty.
func (c *Client) CreateListItem(ctx context.Context, channelID, message, note string) (*ListItem, error) {
	var envelope listItemEnvelope
	if err := c.rest.Do(ctx, "POST", "/channels/"+channelID+"/items", newListItemBody(message, note), &envelope); err != nil {
		return nil, err
	}
	return c.bindListItem(envelope.ListItem), nil
}

// FetchListItem fetches a list item from the API.
func (c *Client) FetchListItem(ctx context.Context, channelID, itemID string) (*ListItem, error) {
	var envelope listItemEnvelope
	if err := c.rest.Do(ctx, "GET", "/channels/"+channelID+"/items/"+itemID, nil, &envelope); err != nil {
		return nil, err
	}
	return c.bindListItem(envelope.ListItem), nil
}

// FetchListItems fetches a list channel's items.
func (c *Client) FetchListItems(ctx context.Context, channelID string) ([]*ListItem, error) {
	var envelope listItemsEnvelope
	if err := c.rest.Do(ctx, "GET", "/channels/"+channelID+"/items", nil, &envelope); err != nil {
		return nil, err
	}
	for _, li := range envelope.ListItems {
		c.bindListItem(li)
	}
	return envelope.ListItems, nil
}

// UpdateListItem replaces a list item's message and note.
func (c *Client) UpdateListItem(ctx context.Context, channelID, itemID, message, note string) (*ListItem, error) {
	var envelope listItemEnvelope
	if err := c.rest.Do(ctx, "PUT", "/channels/"+channelID+"/items/"+itemID, newListItemBody(message, note), &envelope); err != nil {
		return nil, err
	}
	return c.bindListItem(envelope.ListItem), nil
}

// DeleteListItem deletes a list item.
func (c *Client) DeleteListItem(ctx context.Context, channelID, itemID string) error {
	return c.rest.Do(ctx, "DELETE", "/channels/"+channelID+"/items/"+itemID, nil, nil)
}

// CompleteListItem checks a list item off.
func (c *Client) CompleteListItem(ctx context.Context, channelID, itemID string) error {
	return c.rest.Do(ctx, "POST", "/channels/"+channelID+"/items/"+itemID+"/complete", nil, nil)
}

// UncompleteListItem unchecks a list item.
func (c *Client) UncompleteListItem(ctx context.Context, channelID, itemID string) error {
	return c.rest.Do(ctx, "DELETE", "/channels/"+channelID+"/items/"+itemID+"/complete", nil, nil)
}

func (c *Client) bindListItem(li *ListItem) *ListItem {
	if li == nil {
		return nil
	}
	li.client = c
	return li
}
