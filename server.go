package guilded

import (
	"context"
	"time"
)

// Server is a Guilded server (historically a "team").
type Server struct {
	client *Client

	ID               string    `json:"id"`
	OwnerID          string    `json:"ownerId"`
	Type             string    `json:"type,omitempty"`
	Name             string    `json:"name"`
	URL              string    `json:"url,omitempty"`
	About            string    `json:"about,omitempty"`
	Avatar           string    `json:"avatar,omitempty"`
	Banner           string    `json:"banner,omitempty"`
	Timezone         string    `json:"timezone,omitempty"`
	IsVerified       bool      `json:"isVerified,omitempty"`
	DefaultChannelID string    `json:"defaultChannelId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// VanityURL returns the server's public URL, or "" if it has no vanity
// slug.
func (s *Server) VanityURL() string {
	if s.URL == "" {
		return ""
	}
	return "https://guilded.gg/" + s.URL
}

// DefaultChannel returns the server's cached default channel, if any.
func (s *Server) DefaultChannel() *Channel {
	if s.DefaultChannelID == "" || s.client == nil {
		return nil
	}
	return s.client.CachedChannel(s.DefaultChannelID)
}

// Member returns the cached member for the given user, if available.
func (s *Server) Member(userID string) *Member {
	if s.client == nil {
		return nil
	}
	return s.client.CachedMember(s.ID, userID)
}

type serverEnvelope struct {
	Server *Server `json:"server"`
}

// FetchServer fetches a server from the API.
func (c *Client) FetchServer(ctx context.Context, serverID string) (*Server, error) {
	var envelope serverEnvelope
	if err := c.rest.Do(ctx, "GET", "/servers/"+serverID, nil, &envelope); err != nil {
		return nil, err
	}
	return c.bindServer(envelope.Server), nil
}

// ServerOrFetch returns the cached server if present and fetches it from
// the API otherwise.
func (c *Client) ServerOrFetch(ctx context.Context, serverID string) (*Server, error) {
	if s := c.CachedServer(serverID); s != nil {
		return s, nil
	}
	return c.FetchServer(ctx, serverID)
}

func (c *Client) bindServer(s *Server) *Server {
	if s == nil {
		return nil
	}
	s.client = c
	c.state.putServer(s)
	c.watchServer(s.ID)
	return s
}
