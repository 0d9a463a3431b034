package warnings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"craftbot/challenge"
	"craftbot/discord"
	"craftbot/models"
	"craftbot/storage"

	"go.uber.org/zap"
)

// Service issues and manages moderation warnings. The DM to the
// warned member is best-effort; the database row is the record.
type Service struct {
	store   storage.WarningStorage
	audit   storage.AuditStorage
	gateway discord.Gateway
	cfg     models.Config
	logger  *zap.Logger
}

func NewService(store storage.WarningStorage, audit storage.AuditStorage, gateway discord.Gateway, cfg models.Config, logger *zap.Logger) *Service {
	return &Service{store: store, audit: audit, gateway: gateway, cfg: cfg, logger: logger}
}

func (s *Service) requireModerator(ctx context.Context, actorID string) error {
	ok, err := s.gateway.HasRole(ctx, actorID, s.cfg.ModeratorRoleIDs)
	if err != nil {
		return fmt.Errorf("role check: %w", err)
	}
	if !ok {
		return challenge.ErrUnauthorized
	}
	return nil
}

// Issue warns a member, either with free-form reason text or by
// predefined template id.
func (s *Service) Issue(ctx context.Context, actorID, userID, reason string, predefinedID *uint, notify bool) (*models.Warning, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}

	if predefinedID != nil {
		template, err := s.store.GetPredefined(ctx, *predefinedID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, challenge.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("loading warning template: %w", err)
		}
		reason = template.Text
	}
	if reason == "" {
		return nil, challenge.ErrNoUpdates
	}

	warning := &models.Warning{
		UserID:       userID,
		ModeratorID:  actorID,
		Reason:       reason,
		PredefinedID: predefinedID,
	}
	if err := s.store.CreateWarning(ctx, warning); err != nil {
		s.logger.Error("failed to create warning", zap.String("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("creating warning: %w", err)
	}

	if notify {
		notice := discord.Message{Embeds: []discord.Embed{{
			Color:       0xFF0000,
			Title:       "You Have Received a Warning",
			Description: reason,
			Footer:      "Repeated warnings may lead to removal from the community.",
			Timestamp:   time.Now(),
		}}}
		if err := s.gateway.SendDirectMessage(ctx, userID, notice); err != nil {
			s.logger.Error("failed to DM warned user", zap.String("userID", userID), zap.Error(err))
		}
	}

	s.recordAudit(ctx, "Warning Issued", actorID, userID, reason)
	return warning, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Warning, error) {
	return s.store.ListWarningsForUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]models.Warning, error) {
	return s.store.ListWarnings(ctx)
}

// Edit replaces the reason text of an issued warning.
func (s *Service) Edit(ctx context.Context, actorID string, warningID uint, reason string) error {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return err
	}
	if reason == "" {
		return challenge.ErrNoUpdates
	}

	warning, err := s.store.GetWarning(ctx, warningID)
	if errors.Is(err, storage.ErrNotFound) {
		return challenge.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading warning: %w", err)
	}

	warning.Reason = reason
	if err := s.store.SaveWarning(ctx, warning); err != nil {
		return fmt.Errorf("updating warning: %w", err)
	}
	s.recordAudit(ctx, "Warning Edited", actorID, warning.UserID, reason)
	return nil
}

func (s *Service) Delete(ctx context.Context, actorID string, warningID uint) error {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return err
	}
	warning, err := s.store.GetWarning(ctx, warningID)
	if errors.Is(err, storage.ErrNotFound) {
		return challenge.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading warning: %w", err)
	}
	if err := s.store.DeleteWarning(ctx, warningID); err != nil {
		return fmt.Errorf("deleting warning: %w", err)
	}
	s.recordAudit(ctx, "Warning Deleted", actorID, warning.UserID, warning.Reason)
	return nil
}

// ClearUser removes every warning a member has accumulated.
func (s *Service) ClearUser(ctx context.Context, actorID, userID string) (int64, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return 0, err
	}
	cleared, err := s.store.ClearUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clearing warnings: %w", err)
	}
	s.recordAudit(ctx, "Warnings Cleared", actorID, userID, fmt.Sprintf("%d warnings removed", cleared))
	return cleared, nil
}

// Predefined template management.

func (s *Service) CreateTemplate(ctx context.Context, actorID, name, text string) (*models.PredefinedWarning, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	template := &models.PredefinedWarning{Name: name, Text: text}
	if err := s.store.CreatePredefined(ctx, template); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, challenge.ErrConflict
		}
		return nil, fmt.Errorf("creating template: %w", err)
	}
	return template, nil
}

func (s *Service) ListTemplates(ctx context.Context) ([]models.PredefinedWarning, error) {
	return s.store.ListPredefined(ctx)
}

func (s *Service) UpdateTemplate(ctx context.Context, actorID string, id uint, name, text string) error {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return err
	}
	template, err := s.store.GetPredefined(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return challenge.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading template: %w", err)
	}
	if name != "" {
		template.Name = name
	}
	if text != "" {
		template.Text = text
	}
	return s.store.SavePredefined(ctx, template)
}

func (s *Service) DeleteTemplate(ctx context.Context, actorID string, id uint) error {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return err
	}
	return s.store.DeletePredefined(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, action, actorID, subject, detail string) {
	entry := &models.AuditEntry{Action: action, ActorID: actorID, Subject: subject, Detail: detail}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Error("failed to record audit entry", zap.String("action", action), zap.Error(err))
	}
	if s.cfg.AuditChannelID == "" {
		return
	}
	embed := discord.Embed{
		Color: 0xFFA500,
		Title: action,
		Fields: []discord.EmbedField{
			{Name: "Moderator", Value: fmt.Sprintf("<@%s>", actorID), Inline: true},
			{Name: "User", Value: fmt.Sprintf("<@%s>", subject), Inline: true},
			{Name: "Detail", Value: detail},
		},
		Timestamp: time.Now(),
	}
	if _, err := s.gateway.PostMessage(ctx, s.cfg.AuditChannelID, discord.Message{Embeds: []discord.Embed{embed}}); err != nil {
		s.logger.Error("failed to post audit embed", zap.String("action", action), zap.Error(err))
	}
}
