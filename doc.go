package guilded

import (
	"context"
	"strconv"
	"time"
)

// Doc is a document in a docs channel.
type Doc struct {
	client *Client

	ID        int    `json:"id"`
	ServerID  string `json:"serverId"`
	ChannelID string `json:"channelId"`
	Title     string `json:"title"`
	Content   string `json:"content"`

	CreatedBy string     `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Update replaces the doc's title and content.
func (d *Doc) Update(ctx context.Context, title, content string) (*Doc, error) {
	return d.client.UpdateDoc(ctx, d.ChannelID, d.ID, title, content)
}

// Delete deletes the doc.
func (d *Doc) Delete(ctx context.Context) error {
	return d.client.DeleteDoc(ctx, d.ChannelID, d.ID)
}

type docEnvelope struct {
	Doc *Doc `json:"doc"`
}

type docsEnvelope struct {
	Docs []*Doc `json:"docs"`
}

func docPath(channelID string, docID int) string {
	return "/channels/" + channelID + "/docs/" + strconv.Itoa(docID)
}

// CreateDoc creates a doc in a docs channel.
func (c *Client) CreateDoc(ctx context.Context, channelID, title, content string) (*Doc, error) {
	body := struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}{Title: title, Content: content}
	var envelope docEnvelope
	if err := c.rest.Do(ctx, "POST", "/channels/"+channelID+"/docs", body, &envelope); err != nil {
		return nil, err
	}
	return c.bindDoc(envelope.Doc), nil
}

// FetchDoc fetches a doc from the API.
func (c *Client) FetchDoc(ctx context.Context, channelID string, docID int) (*Doc, error) {
	var envelope docEnvelope
	if err := c.rest.Do(ctx, "GET", docPath(channelID, docID), nil, &envelope); err != nil {
		return nil, err
	}
	return c.bindDoc(envelope.Doc), nil
}

// FetchDocs fetches a docs channel's docs, most recently updated first.
func (c *Client) FetchDocs(ctx context.Context, channelID string) ([]*Doc, error) {
	var envelope docsEnvelope
	if err := c.rest.Do(ctx, "GET", "/channels/"+channelID+"/docs", nil, &envelope); err != nil {
		return nil, err
	}
	for _, d := range envelope.Docs {
		c.bindDoc(d)
	}
	return envelope.Docs, nil
}

// UpdateDoc replaces a doc's title and content.
func (c *Client) UpdateDoc(ctx context.Context, channelID string, docID int, title, content string) (*Doc, error) {
	body := struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}{Title: title, Content: content}
	var envelope docEnvelope
	if err := c.rest.Do(ctx, "PUT", docPath(channelID, docID), body, &envelope); err != nil {
		return nil, err
	}
	return c.bindDoc(envelope.Doc), nil
}

// DeleteDoc deletes a doc.
func (c *Client) DeleteDoc(ctx context.Context, channelID string, docID int) error {
	return c.rest.Do(ctx, "DELETE", docPath(channelID, docID), nil, nil)
}

func (c *Client) bindDoc(d *Doc) *Doc {
	if d == nil {
		return nil
	}
	d.client = c
	return d
}
