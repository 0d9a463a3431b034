package monitor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"craftbot/discord"
	"craftbot/models"
	"craftbot/storage"

	"go.uber.org/zap"
)

const steamColor = 0x1b2838

// Monitor polls the game's Steam discussion board and DMs the
// configured moderators about threads it has not notified before.
// "Already seen" lives in postgres, so restarts never re-announce.
type Monitor struct {
	store    storage.DiscussionStorage
	gateway  discord.Gateway
	cfg      models.Config
	logger   *zap.Logger
	client   *http.Client
	interval time.Duration
	baseURL  string
}

func New(store storage.DiscussionStorage, gateway discord.Gateway, cfg models.Config, logger *zap.Logger) *Monitor {
	interval := time.Duration(cfg.MonitorIntervalS) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Monitor{
		store:    store,
		gateway:  gateway,
		cfg:      cfg,
		logger:   logger,
		client:   &http.Client{Timeout: 20 * time.Second},
		interval: interval,
		baseURL:  "https://steamcommunity.com",
	}
}

// Run announces startup, performs one immediate check, then polls
// until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	if m.cfg.SteamAppID == "" || len(m.cfg.MonitorUserIDs) == 0 {
		m.logger.Info("steam forum monitor disabled: no app id or recipients configured")
		return
	}

	m.logger.Info("steam forum monitor started",
		zap.String("appID", m.cfg.SteamAppID), zap.Duration("interval", m.interval))
	m.sendStartupNotification(ctx)
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("steam forum monitor stopped")
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check fetches the board once and notifies about unseen recent
// threads. Exported so a single pass can be driven in tests.
func (m *Monitor) Check(ctx context.Context) {
	url := fmt.Sprintf("%s/app/%s/discussions/", m.baseURL, m.cfg.SteamAppID)
	page, err := m.fetch(ctx, url)
	if err != nil {
		m.logger.Error("failed to fetch steam forum", zap.Error(err))
		return
	}

	for _, discussion := range RecentDiscussions(page) {
		seen, err := m.store.Seen(ctx, discussion.Link)
		if err != nil {
			m.logger.Error("failed to check seen state", zap.String("link", discussion.Link), zap.Error(err))
			continue
		}
		if seen {
			continue
		}

		m.logger.Info("new steam discussion",
			zap.String("title", discussion.Title), zap.String("author", discussion.Author))
		m.notify(ctx, discussion)

		record := &models.SeenDiscussion{
			Link:   discussion.Link,
			Title:  discussion.Title,
			Author: discussion.Author,
		}
		if err := m.store.MarkSeen(ctx, record); err != nil {
			m.logger.Error("failed to mark discussion seen", zap.String("link", discussion.Link), zap.Error(err))
		}
	}
}

func (m *Monitor) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("steam returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (m *Monitor) notify(ctx context.Context, discussion Discussion) {
	preview := discussion.Content
	if len(preview) > 2048 {
		preview = preview[:2048]
	}
	if preview == "" {
		preview = "*No content preview available*"
	}
	embed := discord.Embed{
		Color:       steamColor,
		Title:       discussion.Title,
		URL:         discussion.Link,
		Description: preview,
		Fields: []discord.EmbedField{
			{Name: "👤 Author", Value: discussion.Author, Inline: true},
		},
		Footer:    "Steam Community",
		Timestamp: time.Now(),
	}
	msg := discord.Message{Embeds: []discord.Embed{embed}}
	for _, userID := range m.cfg.MonitorUserIDs {
		if err := m.gateway.SendDirectMessage(ctx, userID, msg); err != nil {
			m.logger.Error("failed to DM moderator about discussion",
				zap.String("userID", userID), zap.Error(err))
		}
	}
}

func (m *Monitor) sendStartupNotification(ctx context.Context) {
	embed := discord.Embed{
		Color:       steamColor,
		Title:       "Monitor Started",
		Description: "The Steam forum monitor has started and is now watching for new discussions.",
		Timestamp:   time.Now(),
	}
	msg := discord.Message{Embeds: []discord.Embed{embed}}
	for _, userID := range m.cfg.MonitorUserIDs {
		if err := m.gateway.SendDirectMessage(ctx, userID, msg); err != nil {
			m.logger.Error("failed to send startup notification",
				zap.String("userID", userID), zap.Error(err))
		}
	}
}
