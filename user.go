package guilded

import (
	"context"
	"time"
)

// User types as reported by the API.
const (
	UserTypeUser = "user"
	UserTypeBot  = "bot"
)

// User is a Guilded user.
type User struct {
	client *Client

	ID        string    `json:"id"`
	Type      string    `json:"type,omitempty"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	Banner    string    `json:"banner,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	Status *UserStatus `json:"status,omitempty"`
}

// UserStatus is a user's self-set status line.
type UserStatus struct {
	Content string `json:"content,omitempty"`
	EmoteID int    `json:"emoteId,omitempty"`
}

// Bot reports whether the user is a bot account.
func (u *User) Bot() bool {
	return u.Type == UserTypeBot
}

// Mention returns the markup that mentions the user in message content.
func (u *User) Mention() string {
	return "<@" + u.ID + ">"
}

// ProfileURL returns a URL for the user's profile page.
func (u *User) ProfileURL() string {
	return "https://guilded.gg/profile/" + u.ID
}

// CreateDM opens (or reopens) a direct message channel with the user.
func (u *User) CreateDM(ctx context.Context) (*Channel, error) {
	return u.client.CreateDM(ctx, u.ID)
}

// Send opens a direct message channel with the user and sends content to
// it.
func (u *User) Send(ctx context.Context, content string) (*Message, error) {
	channel, err := u.CreateDM(ctx)
	if err != nil {
		return nil, err
	}
	return u.client.SendMessage(ctx, channel.ID, content)
}

// ClientUser is the user the client is logged in as.
type ClientUser struct {
	User

	// BotID is the bot's internal id, distinct from its user id.
	BotID string `json:"botId,omitempty"`
}

type userEnvelope struct {
	User *User `json:"user"`
}

// FetchUser fetches a user from the API.
func (c *Client) FetchUser(ctx context.Context, userID string) (*User, error) {
	var envelope userEnvelope
	if err := c.rest.Do(ctx, "GET", "/users/"+userID, nil, &envelope); err != nil {
		return nil, err
	}
	return c.bindUser(envelope.User), nil
}

// UserOrFetch returns the cached user if present and fetches it from the
// API otherwise.
func (c *Client) UserOrFetch(ctx context.Context, userID string) (*User, error) {
	if u := c.CachedUser(userID); u != nil {
		return u, nil
	}
	return c.FetchUser(ctx, userID)
}

// CreateDM opens (or reopens) a direct message channel with a user.
func (c *Client) CreateDM(ctx context.Context, userID string) (*Channel, error) {
	var envelope channelEnvelope
	if err := c.rest.Do(ctx, "POST", "/users/"+userID+"/channels", nil, &envelope); err != nil {
		return nil, err
	}
	return c.bindChannel(envelope.Channel), nil
}

func (c *Client) bindUser(u *User) *User {
	if u == nil {
		return nil
	}
	u.client = c
	c.state.putUser(u)
	return u
}
