package server

import (
	"errors"
	"log/slog"

	"github.com/Tyrowin/relaychat/internal/channel"
)

// Replier delivers a frame to a single connection without blocking.
type Replier interface {
	Reply(payload []byte) bool
}

// Broadcaster delivers a frame to every live connection and returns how
// many connections it was queued for.
type Broadcaster interface {
	Broadcast(payload []byte) int
}

// MessageHandler consumes raw inbound frames read from a connection.
type MessageHandler interface {
	Handle(sender Replier, raw []byte) error
}

// Coordinator validates inbound chat frames, records accepted messages in
// the registry, and relays them to every connection.
type Coordinator struct {
	registry *channel.Registry
	hub      Broadcaster
	log      *slog.Logger
}

// NewCoordinator wires a coordinator to the registry it appends to and the
// broadcaster it fans out through.
func NewCoordinator(registry *channel.Registry, hub Broadcaster, log *slog.Logger) *Coordinator {
	return &Coordinator{registry: registry, hub: hub, log: log}
}

// Handle processes one inbound frame. Rejections are answered with an error
// frame to sender only and returned; nil means the frame was broadcast.
func (c *Coordinator) Handle(sender Replier, raw []byte) error {
	var msg *ChatMessage
	switch parsed := ParseInbound(raw).(type) {
	case *Rejection:
		c.log.Debug("Rejected inbound frame", "kind", parsed.Kind.String(), "reason", parsed.Message)
		c.reject(sender, parsed.Message)
		return parsed
	case *ChatMessage:
		msg = parsed
	}

	if err := c.registry.AppendMessage(msg.ChannelID, msg.Message()); err != nil {
		rejection := &Rejection{Kind: RejectFormat, Message: err.Error()}
		if errors.Is(err, channel.ErrNotFound) {
			rejection.Kind = RejectNotFound
			rejection.Message = errChannelNotFound
		} else if channel.IsValidation(err) {
			rejection.Kind = RejectEmpty
			rejection.Message = errEmptyFields
		}
		c.log.Debug("Rejected chat message", "channel_id", msg.ChannelID, "err", err)
		c.reject(sender, rejection.Message)
		return rejection
	}

	delivered := c.hub.Broadcast(msg.Raw)
	c.log.Debug("Broadcast chat message", "channel_id", msg.ChannelID, "clients", delivered)
	return nil
}

func (c *Coordinator) reject(sender Replier, message string) {
	if sender == nil {
		return
	}
	if !sender.Reply(encodeErrorFrame(message)) {
		c.log.Debug("Dropped error frame for unavailable sender")
	}
}
