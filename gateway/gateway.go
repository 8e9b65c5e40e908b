// Package gateway implements the client side of Guilded's websocket gateway.
//
// A Connection reads event frames from the gateway and hands them to a
// Handler. Callers generally won't use this package directly; the root
// package's Client manages connections, reconnection, and event dispatch.
package gateway

import (
	"encoding/json"
)

// Operation codes used by gateway frames.
const (
	OpEvent         = 0
	OpWelcome       = 1
	OpResume        = 2
	OpInvalidCursor = 8
	OpInternalError = 9
)

// Frame is a single gateway message.
type Frame struct {
	Op int `json:"op"`

	// EventName is the name of the event being delivered, e.g.
	// "ChatMessageCreated". Only present for OpEvent frames.
	EventName string `json:"t,omitempty"`

	// MessageID identifies the frame for replay. Clients present the last
	// id they saw when reconnecting and the gateway replays everything
	// after it.
	MessageID string `json:"s,omitempty"`

	Data json.RawMessage `json:"d,omitempty"`
}

// WelcomeData is the payload of the OpWelcome frame sent by the gateway
// immediately after the connection is established.
type WelcomeData struct {
	HeartbeatIntervalMS int             `json:"heartbeatIntervalMs"`
	LastMessageID       string          `json:"lastMessageId"`
	BotID               string          `json:"botId"`
	User                json.RawMessage `json:"user"`
}
