// Command guilded-echo runs a minimal bot that replies to any message
// beginning with "!echo". It exists mostly as a smoke test and usage
// example.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/guildedgo/guilded"
)

func main() {
	token := pflag.String("token", os.Getenv("GUILDED_TOKEN"), "the bot token (defaults to $GUILDED_TOKEN)")
	prefix := pflag.String("prefix", "!echo", "the command prefix to respond to")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "the --token flag or GUILDED_TOKEN environment variable is required")
		os.Exit(1)
	}

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	client := guilded.NewClient(*token, &guilded.Config{
		Logger: logger,
	})

	client.OnReady(func(e *guilded.ReadyEvent) {
		logger.WithField("user", e.User.Name).Info("connected")
	})

	client.OnMessageCreated(func(e *guilded.MessageCreatedEvent) {
		msg := e.Message
		if msg.ByBot() || !strings.HasPrefix(msg.Content, *prefix) {
			return
		}
		reply := strings.TrimSpace(strings.TrimPrefix(msg.Content, *prefix))
		if reply == "" {
			reply = "..."
		}
		if _, err := msg.Reply(context.Background(), reply); err != nil {
			logger.WithField("error", err.Error()).Error("error sending reply")
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
