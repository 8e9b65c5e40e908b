package guilded

import (
	"context"
	"time"
)

// Member is a user's membership in a server.
type Member struct {
	client *Client

	User     User      `json:"user"`
	ServerID string    `json:"serverId,omitempty"`
	Nickname string    `json:"nickname,omitempty"`
	RoleIDs  []int     `json:"roleIds,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
	IsOwner  bool      `json:"isOwner,omitempty"`
}

// DisplayName returns the member's nickname if set, else their name.
func (m *Member) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.User.Name
}

// Mention returns the markup that mentions the member in message content.
func (m *Member) Mention() string {
	return m.User.Mention()
}

// SetNickname sets the member's nickname.
func (m *Member) SetNickname(ctx context.Context, nickname string) error {
	if err := m.client.SetMemberNickname(ctx, m.ServerID, m.User.ID, nickname); err != nil {
		return err
	}
	m.Nickname = nickname
	return nil
}

// ResetNickname clears the member's nickname.
func (m *Member) ResetNickname(ctx context.Context) error {
	if err := m.client.ResetMemberNickname(ctx, m.ServerID, m.User.ID); err != nil {
		return err
	}
	m.Nickname = ""
	return nil
}

// AwardXP awards XP to the member. amount may be negative.
func (m *Member) AwardXP(ctx context.Context, amount int) (total int, err error) {
	return m.client.AwardMemberXP(ctx, m.ServerID, m.User.ID, amount)
}

// Kick removes the member from the server.
func (m *Member) Kick(ctx context.Context) error {
	return m.client.KickMember(ctx, m.ServerID, m.User.ID)
}

// Ban bans the member from the server.
func (m *Member) Ban(ctx context.Context, reason string) (*ServerBan, error) {
	return m.client.CreateBan(ctx, m.ServerID, m.User.ID, reason)
}

// ServerBan is a server ban entry.
type ServerBan struct {
	User      User      `json:"user"`
	Reason    string    `json:"reason,omitempty"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`

	// ServerID is not part of the wire payload for all responses; event
	// decoding fills it in.
	ServerID string `json:"serverId,omitempty"`
}

// SocialLink is a member's linked external account.
type SocialLink struct {
	Type      string `json:"type"`
	Handle    string `json:"handle,omitempty"`
	ServiceID string `json:"serviceId,omitempty"`
}

type memberEnvelope struct {
	Member *Member `json:"member"`
}

type membersEnvelope struct {
	Members []*Member `json:"members"`
}

type banEnvelope struct {
	Ban *ServerBan `json:"serverMemberBan"`
}

type bansEnvelope struct {
	Bans []*ServerBan `json:"serverMemberBans"`
}

// FetchMember fetches a server member from the API.
func (c *Client) FetchMember(ctx context.Context, serverID, userID string) (*Member, error) {
	var envelope memberEnvelope
	if err := c.rest.Do(ctx, "GET", "/servers/"+serverID+"/members/"+userID, nil, &envelope); err != nil {
		return nil, err
	}
	return c.bindMember(serverID, envelope.Member), nil
}

// FetchMembers fetches a server's member list. The API returns summaries:
// only the user id, name, type, and role ids are populated.
func (c *Client) FetchMembers(ctx context.Context, serverID string) ([]*Member, error) {
	var envelope membersEnvelope
	if err := c.rest.Do(ctx, "GET", "/servers/"+serverID+"/members", nil, &envelope); err != nil {
		return nil, err
	}
	for _, m := range envelope.Members {
		c.bindMember(serverID, m)
	}
	return envelope.Members, nil
}

// MemberOrFetch returns the cached member if present and fetches it from
// the API otherwise.
func (c *Client) MemberOrFetch(ctx context.Context, serverID, userID string) (*Member, error) {
	if m := c.CachedMember(serverID, userID); m != nil {
		return m, nil
	}
	return c.FetchMember(ctx, serverID, userID)
}

// KickMember removes a member from a server.
func (c *Client) KickMember(ctx context.Context, serverID, userID string) error {
	return c.rest.Do(ctx, "DELETE", "/servers/"+serverID+"/members/"+userID, nil, nil)
}

// SetMemberNickname sets a member's nickname.
func (c *Client) SetMemberNickname(ctx context.Context, serverID, userID, nickname string) error {
	body := struct {
		Nickname string `json:"nickname"`
	}{Nickname: nickname}
	if err := c.rest.Do(ctx, "PUT", "/servers/"+serverID+"/members/"+userID+"/nickname", body, nil); err != nil {
		return err
	}
	if m := c.CachedMember(serverID, userID); m != nil {
		m.Nickname = nickname
	}
	return nil
}

// ResetMemberNickname clears a member's nickname.
func (c *Client) ResetMemberNickname(ctx context.Context, serverID, userID string) error {
	if err := c.rest.Do(ctx, "DELETE", "/servers/"+serverID+"/members/"+userID+"/nickname", nil, nil); err != nil {
		return err
	}
	if m := c.CachedMember(serverID, userID); m != nil {
		m.Nickname = ""
	}
	return nil
}

// AwardMemberXP awards XP to a member and returns their new total. amount
// may be negative.
func (c *Client) AwardMemberXP(ctx context.Context, serverID, userID string, amount int) (int, error) {
	body := struct {
		Amount int `json:"amount"`
	}{Amount: amount}
	var resp struct {
		Total int `json:"total"`
	}
	if err := c.rest.Do(ctx, "POST", "/servers/"+serverID+"/members/"+userID+"/xp", body, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// SetMemberXP sets a member's XP total directly.
func (c *Client) SetMemberXP(ctx context.Context, serverID, userID string, total int) (int, error) {
	body := struct {
		Total int `json:"total"`
	}{Total: total}
	var resp struct {
		Total int `json:"total"`
	}
	if err := c.rest.Do(ctx, "PUT", "/servers/"+serverID+"/members/"+userID+"/xp", body, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// FetchSocialLink fetches a member's linked external account of the given
// type, e.g. "twitch".
func (c *Client) FetchSocialLink(ctx context.Context, serverID, userID, linkType string) (*SocialLink, error) {
	var resp struct {
		SocialLink *SocialLink `json:"socialLink"`
	}
	if err := c.rest.Do(ctx, "GET", "/servers/"+serverID+"/members/"+userID+"/social-links/"+linkType, nil, &resp); err != nil {
		return nil, err
	}
	return resp.SocialLink, nil
}

// CreateBan bans a user from a server. The user does not need to be a
// current member.
func (c *Client) CreateBan(ctx context.Context, serverID, userID, reason string) (*ServerBan, error) {
	body := struct {
		Reason string `json:"reason,omitempty"`
	}{Reason: reason}
	var envelope banEnvelope
	if err := c.rest.Do(ctx, "POST", "/servers/"+serverID+"/bans/"+userID, body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Ban != nil {
		envelope.Ban.ServerID = serverID
	}
	return envelope.Ban, nil
}

// FetchBan fetches a server ban entry.
func (c *Client) FetchBan(ctx context.Context, serverID, userID string) (*ServerBan, error) {
	var envelope banEnvelope
	if err := c.rest.Do(ctx, "GET", "/servers/"+serverID+"/bans/"+userID, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Ban != nil {
		envelope.Ban.ServerID = serverID
	}
	return envelope.Ban, nil
}

// FetchBans fetches all of a server's ban entries.
func (c *Client) FetchBans(ctx context.Context, serverID string) ([]*ServerBan, error) {
	var envelope bansEnvelope
	if err := c.rest.Do(ctx, "GET", "/servers/"+serverID+"/bans", nil, &envelope); err != nil {
		return nil, err
	}
	for _, ban := range envelope.Bans {
		ban.ServerID = serverID
	}
	return envelope.Bans, nil
}

// DeleteBan removes a server ban entry, unbanning the user.
func (c *Client) DeleteBan(ctx context.Context, serverID, userID string) error {
	return c.rest.Do(ctx, "DELETE", "/servers/"+serverID+"/bans/"+userID, nil, nil)
}

func (c *Client) bindMember(serverID string, m *Member) *Member {
	if m == nil {
		return nil
	}
	m.client = c
	if m.ServerID == "" {
		m.ServerID = serverID
	}
	m.User.client = c
	c.state.putMember(m)
	// Member payloads carry the full user, so the user cache learns
	// about users as their members come and go.
	c.state.putUser(&m.User)
	return m
}
