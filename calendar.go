package guilded

import (
	"context"
	"strconv"
	"time"
)

// CalendarEvent is an event in a calendar channel.
type CalendarEvent struct {
	client *Client

	ID              int    `json:"id"`
	ServerID        string `json:"serverId"`
	ChannelID       string `json:"channelId"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Location        string `json:"location,omitempty"`
	URL             string `json:"url,omitempty"`
	Color           int    `json:"color,omitempty"`
	DurationMinutes int    `json:"duration,omitempty"`
	RSVPLimit       int    `json:"rsvpLimit,omitempty"`
	IsPrivate       bool   `json:"isPrivate,omitempty"`

	StartsAt  time.Time `json:"startsAt"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`

	Cancellation *CalendarEventCancellation `json:"cancellation,omitempty"`
}

// CalendarEventCancellation describes why an event was cancelled.
type CalendarEventCancellation struct {
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
}

// Cancelled reports whether the event has been cancelled.
func (e *CalendarEvent) Cancelled() bool {
	return e.Cancellation != nil
}

// Update applies the given changes to the event.
func (e *CalendarEvent) Update(ctx context.Context, update *CalendarEventUpdate) (*CalendarEvent, error) {
	return e.client.UpdateCalendarEvent(ctx, e.ChannelID, e.ID, update)
}

// Delete deletes the event.
func (e *CalendarEvent) Delete(ctx context.Context) error {
	return e.client.DeleteCalendarEvent(ctx, e.ChannelID, e.ID)
}

// RSVPs fetches the event's RSVP entries.
func (e *CalendarEvent) RSVPs(ctx context.Context) ([]*CalendarEventRSVP, error) {
	return e.client.FetchCalendarEventRSVPs(ctx, e.ChannelID, e.ID)
}

// CalendarEventRSVP is a user's attendance entry for a calendar event.
type CalendarEventRSVP struct {
	CalendarEventID int    `json:"calendarEventId"`
	ChannelID       string `json:"channelId"`
	ServerID        string `json:"serverId"`
	UserID          string `json:"userId"`

	// Status is one of "going", "maybe", "declined", "invited",
	// "waitlisted", or "not responded".
	Status string `json:"status"`

	CreatedBy string     `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// CalendarEventCreate is the payload for creating a calendar event.
type CalendarEventCreate struct {
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Location        string     `json:"location,omitempty"`
	URL             string     `json:"url,omitempty"`
	Color           int        `json:"color,omitempty"`
	StartsAt        *time.Time `json:"startsAt,omitempty"`
	DurationMinutes int        `json:"duration,omitempty"`
	RSVPLimit       int        `json:"rsvpLimit,omitempty"`
	IsPrivate       bool       `json:"isPrivate,omitempty"`
}

// CalendarEventUpdate is the payload for updating a calendar event. Nil
// fields are left unchanged.
type CalendarEventUpdate struct {
	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Location        *string    `json:"location,omitempty"`
	URL             *string    `json:"url,omitempty"`
	Color           *int       `json:"color,omitempty"`
	StartsAt        *time.Time `json:"startsAt,omitempty"`
	DurationMinutes *int       `json:"duration,omitempty"`
	IsPrivate       *bool      `json:"isPrivate,omitempty"`
}

type calendarEventEnvelope struct {
	CalendarEvent *CalendarEvent `json:"calendarEvent"`
}

type calendarEventsEnvelope struct {
	CalendarEvents []*CalendarEvent `json:"calendarEvents"`
}

type calendarEventRSVPEnvelope struct {
	RSVP *CalendarEventRSVP `json:"calendarEventRsvp"`
}

type calendarEventRSVPsEnvelope struct {
	RSVPs []*CalendarEventRSVP `json:"calendarEventRsvps"`
}

func calendarEventPath(channelID string, eventID int) string {
	return "/channels/" + channelID + "/events/" + strconv.Itoa(eventID)
}

// CreateCalendarEvent creates an event in a calendar channel.
func (c *Client) CreateCalendarEvent(ctx context.Context, channelID string, create *CalendarEventCreate) (*CalendarEvent, error) {
	var envelope calendarEventEnvelope
	if err := c.rest.Do(ctx, "POST", "/channels/"+channelID+"/events", create, &envelope); err != nil {
		return nil, err
	}
	return c.bindCalendarEvent(envelope.CalendarEvent), nil
}

// FetchCalendarEvent fetches a calendar event from the API.
func (c *Client) FetchCalendarEvent(ctx context.Context, channelID string, eventID int) (*CalendarEvent, error) {
	var envelope calendarEventEnvelope
	if err := c.rest.Do(ctx, "GET", calendarEventPath(channelID, eventID), nil, &envelope); err != nil {
		return nil, err
	}
	return c.bindCalendarEvent(envelope.CalendarEvent), nil
}

// FetchCalendarEvents fetches a calendar channel's events, soonest first.
func (c *Client) FetchCalendarEvents(ctx context.Context, channelID string) ([]*CalendarEvent, error) {
	var envelope calendarEventsEnvelope
	if err := c.rest.Do(ctx, "GET", "/channels/"+channelID+"/events", nil, &envelope); err != nil {
		return nil, err
	}
	for _, e := range envelope.CalendarEvents {
		c.bindCalendarEvent(e)
	}
	return envelope.CalendarEvents, nil
}

// UpdateCalendarEvent applies the given changes to a calendar event.
func (c *Client) UpdateCalendarEvent(ctx context.Context, channelID string, eventID int, update *CalendarEventUpdate) (*CalendarEvent, error) {
	var envelope calendarEventEnvelope
	if err := c.rest.Do(ctx, "PATCH", calendarEventPath(channelID, eventID), update, &envelope); err != nil {
		return nil, err
	}
	return c.bindCalendarEvent(envelope.CalendarEvent), nil
}

// DeleteCalendarEvent deletes a calendar event.
func (c *Client) DeleteCalendarEvent(ctx context.Context, channelID string, eventID int) error {
	return c.rest.Do(ctx, "DELETE", calendarEventPath(channelID, eventID), nil, nil)
}

// FetchCalendarEventRSVP fetches a user's RSVP for a calendar event.
func (c *Client) FetchCalendarEventRSVP(ctx context.Context, channelID string, eventID int, userID string) (*CalendarEventRSVP, error) {
	var envelope calendarEventRSVPEnvelope
	if err := c.rest.Do(ctx, "GET", calendarEventPath(channelID, eventID)+"/rsvps/"+userID, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.RSVP, nil
}

// FetchCalendarEventRSVPs fetches all RSVPs for a calendar event.
func (c *Client) FetchCalendarEventRSVPs(ctx context.Context, channelID string, eventID int) ([]*CalendarEventRSVP, error) {
	var envelope calendarEventRSVPsEnvelope
	if err := c.rest.Do(ctx, "GET", calendarEventPath(channelID, eventID)+"/rsvps", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.RSVPs, nil
}

// UpsertCalendarEventRSVP creates or updates a user's RSVP for a calendar
// event.
func (c *Client) UpsertCalendarEventRSVP(ctx context.Context, channelID string, eventID int, userID, status string) (*CalendarEventRSVP, error) {
	body := struct {
		Status string `json:"status"`
	}{Status: status}
	var envelope calendarEventRSVPEnvelope
	if err := c.rest.Do(ctx, "PUT", calendarEventPath(channelID, eventID)+"/rsvps/"+userID, body, &envelope); err != nil {
		return nil, err
	}
	return envelope.RSVP, nil
}

// DeleteCalendarEventRSVP deletes a user's RSVP for a calendar event.
func (c *Client) DeleteCalendarEventRSVP(ctx context.Context, channelID string, eventID int, userID string) error {
	return c.rest.Do(ctx, "DELETE", calendarEventPath(channelID, eventID)+"/rsvps/"+userID, nil, nil)
}

func (c *Client) bindCalendarEvent(e *CalendarEvent) *CalendarEvent {
	if e == nil {
		return nil
	}
	e.client = c
	return e
}
