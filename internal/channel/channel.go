// Package channel owns the authoritative set of chat channels: their ids,
// names and message histories.
//
// All state lives behind a Registry. Callers only ever see copies, so the
// only way to change a channel is through a Registry operation.
package channel

import "github.com/samber/lo"

// ID identifies a channel. Ids are positive and never reused within a
// process lifetime.
type ID int64

// Message is one chat line appended to a channel's history.
type Message struct {
	UserName string `json:"userName"`
	Text     string `json:"text"`
}

// Channel is a named message stream.
type Channel struct {
	ID       ID        `json:"id"`
	Name     string    `json:"name"`
	Messages []Message `json:"messages"`
}

// clone returns a deep copy whose Messages slice is never nil, so it
// serializes as an empty JSON array.
func (c *Channel) clone() Channel {
	messages := make([]Message, len(c.Messages))
	copy(messages, c.Messages)
	return Channel{ID: c.ID, Name: c.Name, Messages: messages}
}

// Validate checks that both message fields are present. No trimming is
// applied.
func (m Message) Validate() error {
	if m.UserName == "" {
		return &ValidationError{Field: "userName", Reason: "must not be empty"}
	}
	if m.Text == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	return nil
}

// Names returns the names of the given channels in order.
func Names(channels []Channel) []string {
	return lo.Map(channels, func(c Channel, _ int) string { return c.Name })
}
