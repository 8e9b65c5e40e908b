package guilded

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"
)

// MessagePage is one page of a channel's message history, newest first.
// NextCursor is an opaque token identifying the page of older messages,
// or "" when this is the last page.
type MessagePage struct {
	Messages   []*Message
	NextCursor string
}

// historyCursor identifies a position in a channel's history. It is
// serialized into the opaque cursor strings handed to callers.
type historyCursor struct {
	ChannelID      string    `msgpack:"c"`
	Before         time.Time `msgpack:"b"`
	Limit          int       `msgpack:"l,omitempty"`
	IncludePrivate bool      `msgpack:"p,omitempty"`
}

func serializeCursor(cursor historyCursor) (string, error) {
	b, err := msgpack.Marshal(cursor)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func deserializeCursor(s string) (historyCursor, error) {
	var cursor historyCursor
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return cursor, errors.Wrap(err, "malformed cursor")
	}
	if err := msgpack.Unmarshal(b, &cursor); err != nil {
		return cursor, errors.Wrap(err, "malformed cursor")
	}
	return cursor, nil
}

// MessageHistory fetches one page of a channel's message history, newest
// first. Use the returned page's NextCursor with MessagesAfterCursor to
// walk further back.
func (c *Client) MessageHistory(ctx context.Context, channelID string, opts *MessagesOptions) (*MessagePage, error) {
	if opts == nil {
		opts = &MessagesOptions{}
	}
	messages, err := c.FetchMessages(ctx, channelID, opts)
	if err != nil {
		return nil, err
	}
	page := &MessagePage{Messages: messages}

	// A short page means there's nothing older to fetch.
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(messages) < limit || len(messages) == 0 {
		return page, nil
	}

	oldest := messages[len(messages)-1]
	cursor, err := serializeCursor(historyCursor{
		ChannelID:      channelID,
		Before:         oldest.CreatedAt,
		Limit:          opts.Limit,
		IncludePrivate: opts.IncludePrivate,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error serializing cursor")
	}
	page.NextCursor = cursor
	return page, nil
}

// MessagesAfterCursor fetches the page of history identified by a cursor
// previously returned in a MessagePage.
func (c *Client) MessagesAfterCursor(ctx context.Context, cursor string) (*MessagePage, error) {
	parsed, err := deserializeCursor(cursor)
	if err != nil {
		return nil, err
	}
	return c.MessageHistory(ctx, parsed.ChannelID, &MessagesOptions{
		Before:         parsed.Before,
		Limit:          parsed.Limit,
		IncludePrivate: parsed.IncludePrivate,
	})
}
