package discord

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced channel, message or member
// does not exist (or the bot cannot see it).
var ErrNotFound = errors.New("discord: not found")

// ErrUnreachable is returned by SendDirectMessage when the recipient
// disallows DMs. Callers treat it as soft failure.
var ErrUnreachable = errors.New("discord: user unreachable")

// MessageRef locates a posted message for later reaction reads.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// EmbedField is one name/value pair inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed mirrors the subset of the platform embed object the bot uses.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	ImageURL    string       `json:"-"`
	Footer      string       `json:"-"`
	Timestamp   time.Time    `json:"-"`
}

// Message is the payload for thread posts and DMs.
type Message struct {
	Content string
	Embeds  []Embed
}

// Gateway is the capability set the bot consumes from the chat
// platform. Everything behind it is a slow, failure-prone network
// call; callers decide per call whether a failure is fatal.
type Gateway interface {
	// CreateThread opens a new thread in a forum channel with an
	// initial message and returns the thread id.
	CreateThread(ctx context.Context, forumID, title string, initial Message) (string, error)
	PostMessage(ctx context.Context, channelID string, msg Message) (MessageRef, error)
	// ReactToMessage adds emoji as the bot's own reaction.
	ReactToMessage(ctx context.Context, ref MessageRef, emoji string) error
	// ReactionCount returns the current number of emoji reactions on
	// the message, including the bot's own.
	ReactionCount(ctx context.Context, ref MessageRef, emoji string) (int, error)
	SendDirectMessage(ctx context.Context, userID string, msg Message) error
	RenameThread(ctx context.Context, threadID, newTitle string) error
	DeleteThread(ctx context.Context, threadID string) error
	// HasRole reports whether the guild member holds any of roleIDs.
	HasRole(ctx context.Context, memberID string, roleIDs []string) (bool, error)
	// UserTag returns a human-readable name for a user id, for embeds.
	UserTag(ctx context.Context, userID string) (string, error)
}
