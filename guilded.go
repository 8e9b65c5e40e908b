// Package guilded is a client library for the Guilded chat platform's
// bot API.
//
// The entry point is Client: construct one with a bot token, register
// handlers for the events you care about, and call Run to connect to the
// gateway and start dispatching.
//
//	client := guilded.NewClient(token, nil)
//	client.OnMessageCreated(func(e *guilded.MessageCreatedEvent) {
//	    if e.Message.CreatedBy == client.User().ID {
//	        return
//	    }
//	    e.Message.Reply(context.Background(), "pong")
//	})
//	client.Run(context.Background())
package guilded

// Version is the library version.
const Version = "0.3.0"

// DefaultGatewayURL is the production gateway endpoint.
const DefaultGatewayURL = "wss://www.guilded.gg/websocket/v1"
