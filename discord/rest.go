package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const apiBase = "https://discord.com/api/v10"

// RestGateway talks to the platform's REST API with the bot token.
// It deliberately covers only the capability set in Gateway; nothing
// here listens to the event gateway.
type RestGateway struct {
	token   string
	guildID string
	client  *http.Client
	logger  *zap.Logger
}

func NewRestGateway(token, guildID string, logger *zap.Logger) *RestGateway {
	return &RestGateway{
		token:   token,
		guildID: guildID,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// Wire forms of the embed sub-objects the API expects.
type wireEmbed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Image       *wireImage   `json:"image,omitempty"`
	Footer      *wireFooter  `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type wireImage struct {
	URL string `json:"url"`
}

type wireFooter struct {
	Text string `json:"text"`
}

func toWireEmbeds(embeds []Embed) []wireEmbed {
	out := make([]wireEmbed, 0, len(embeds))
	for _, e := range embeds {
		w := wireEmbed{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			Color:       e.Color,
			Fields:      e.Fields,
		}
		if e.ImageURL != "" {
			w.Image = &wireImage{URL: e.ImageURL}
		}
		if e.Footer != "" {
			w.Footer = &wireFooter{Text: e.Footer}
		}
		if !e.Timestamp.IsZero() {
			w.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
		}
		out = append(out, w)
	}
	return out
}

type wireMessage struct {
	Content string      `json:"content,omitempty"`
	Embeds  []wireEmbed `json:"embeds,omitempty"`
}

func (g *RestGateway) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiBase+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+g.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode == http.StatusForbidden {
		return ErrUnreachable
	}
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord: %s %s returned %d: %s", method, path, resp.StatusCode, detail)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (g *RestGateway) CreateThread(ctx context.Context, forumID, title string, initial Message) (string, error) {
	payload := struct {
		Name                string      `json:"name"`
		AutoArchiveDuration int         `json:"auto_archive_duration"`
		Message             wireMessage `json:"message"`
	}{
		Name:                title,
		AutoArchiveDuration: 1440,
		Message:             wireMessage{Content: initial.Content, Embeds: toWireEmbeds(initial.Embeds)},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := g.do(ctx, http.MethodPost, "/channels/"+forumID+"/threads", payload, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (g *RestGateway) PostMessage(ctx context.Context, channelID string, msg Message) (MessageRef, error) {
	var posted struct {
		ID        string `json:"id"`
		ChannelID string `json:"channel_id"`
	}
	payload := wireMessage{Content: msg.Content, Embeds: toWireEmbeds(msg.Embeds)}
	if err := g.do(ctx, http.MethodPost, "/channels/"+channelID+"/messages", payload, &posted); err != nil {
		return MessageRef{}, err
	}
	return MessageRef{ChannelID: posted.ChannelID, MessageID: posted.ID}, nil
}

func (g *RestGateway) ReactToMessage(ctx context.Context, ref MessageRef, emoji string) error {
	path := fmt.Sprintf("/channels/%s/messages/%s/reactions/%s/@me",
		ref.ChannelID, ref.MessageID, url.PathEscape(emoji))
	return g.do(ctx, http.MethodPut, path, nil, nil)
}

func (g *RestGateway) ReactionCount(ctx context.Context, ref MessageRef, emoji string) (int, error) {
	var message struct {
		Reactions []struct {
			Count int `json:"count"`
			Emoji struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"emoji"`
		} `json:"reactions"`
	}
	path := fmt.Sprintf("/channels/%s/messages/%s", ref.ChannelID, ref.MessageID)
	if err := g.do(ctx, http.MethodGet, path, nil, &message); err != nil {
		return 0, err
	}
	for _, r := range message.Reactions {
		// Custom emoji arrive as name:id, unicode ones as the glyph.
		if r.Emoji.Name == emoji || r.Emoji.Name+":"+r.Emoji.ID == emoji {
			return r.Count, nil
		}
	}
	return 0, nil
}

func (g *RestGateway) SendDirectMessage(ctx context.Context, userID string, msg Message) error {
	var channel struct {
		ID string `json:"id"`
	}
	payload := struct {
		RecipientID string `json:"recipient_id"`
	}{RecipientID: userID}
	if err := g.do(ctx, http.MethodPost, "/users/@me/channels", payload, &channel); err != nil {
		return err
	}
	_, err := g.PostMessage(ctx, channel.ID, msg)
	return err
}

func (g *RestGateway) RenameThread(ctx context.Context, threadID, newTitle string) error {
	payload := struct {
		Name string `json:"name"`
	}{Name: newTitle}
	return g.do(ctx, http.MethodPatch, "/channels/"+threadID, payload, nil)
}

func (g *RestGateway) DeleteThread(ctx context.Context, threadID string) error {
	return g.do(ctx, http.MethodDelete, "/channels/"+threadID, nil, nil)
}

func (g *RestGateway) HasRole(ctx context.Context, memberID string, roleIDs []string) (bool, error) {
	var member struct {
		Roles []string `json:"roles"`
	}
	path := fmt.Sprintf("/guilds/%s/members/%s", g.guildID, memberID)
	if err := g.do(ctx, http.MethodGet, path, nil, &member); err != nil {
		return false, err
	}
	for _, held := range member.Roles {
		for _, wanted := range roleIDs {
			if held == wanted {
				return true, nil
			}
		}
	}
	return false, nil
}

func (g *RestGateway) UserTag(ctx context.Context, userID string) (string, error) {
	var user struct {
		Username      string `json:"username"`
		Discriminator string `json:"discriminator"`
	}
	if err := g.do(ctx, http.MethodGet, "/users/"+userID, nil, &user); err != nil {
		return "", err
	}
	if user.Discriminator != "" && user.Discriminator != "0" {
		return user.Username + "#" + user.Discriminator, nil
	}
	return user.Username, nil
}
