package challenge

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"craftbot/discord"
	"craftbot/models"
	"craftbot/storage"

	"go.uber.org/zap"
)

var allowedImageSuffixes = []string{".png", ".jpg", ".jpeg", ".gif"}

func validImageURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}
	path := strings.ToLower(parsed.Path)
	for _, suffix := range allowedImageSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// Submit records or revises a member's entry for the challenge
// currently accepting submissions. Resubmission overwrites the draft
// in place; a finalized entry rejects further writes. The returned
// bool reports whether an existing draft was updated.
func (s *Service) Submit(ctx context.Context, userID, imageURL, description string) (*models.Submission, bool, error) {
	if !validImageURL(imageURL) {
		return nil, false, ErrInvalidImage
	}
	if description == "" {
		description = "No description provided."
	}

	open, err := s.challenges.GetOpen(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, ErrNoActiveChallenge
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up active challenge: %w", err)
	}
	if open.State != models.StateSubmissions {
		// Past the submission window the member's own entry, if any, is
		// frozen; tell them that rather than "no active challenge".
		if frozen, err := s.submissions.GetForUser(ctx, userID, open.ID); err == nil && frozen.Finalized {
			return nil, false, ErrFinalized
		}
		return nil, false, ErrNoActiveChallenge
	}

	existing, err := s.submissions.GetForUser(ctx, userID, open.ID)
	switch {
	case err == nil:
		if existing.Finalized {
			return nil, false, ErrFinalized
		}
		existing.ImageURL = imageURL
		existing.Description = description
		if err := s.submissions.Save(ctx, existing); err != nil {
			s.logger.Error("failed to update submission", zap.Uint("submissionID", existing.ID), zap.Error(err))
			return nil, false, fmt.Errorf("updating submission: %w", err)
		}
		s.sendReceipt(ctx, existing, true)
		s.auditSubmission(ctx, existing, open, true)
		return existing, true, nil

	case errors.Is(err, storage.ErrNotFound):
		created := &models.Submission{
			UserID:      userID,
			ChallengeID: open.ID,
			ImageURL:    imageURL,
			Description: description,
		}
		if err := s.submissions.Create(ctx, created); err != nil {
			if storage.IsUniqueViolation(err) {
				// Two submits from the same user raced; the composite
				// unique index kept one row, revise that one.
				return s.Submit(ctx, userID, imageURL, description)
			}
			s.logger.Error("failed to create submission", zap.String("userID", userID), zap.Error(err))
			return nil, false, fmt.Errorf("creating submission: %w", err)
		}
		s.sendReceipt(ctx, created, false)
		s.auditSubmission(ctx, created, open, false)
		return created, false, nil

	default:
		return nil, false, fmt.Errorf("looking up submission: %w", err)
	}
}

// sendReceipt DMs the member a confirmation of their entry. Failure
// never blocks the submission.
func (s *Service) sendReceipt(ctx context.Context, sub *models.Submission, updated bool) {
	receipt := discord.Message{Embeds: []discord.Embed{submissionReceiptEmbed(sub, updated)}}
	if err := s.gateway.SendDirectMessage(ctx, sub.UserID, receipt); err != nil {
		s.logger.Warn("failed to DM submission receipt", zap.String("userID", sub.UserID), zap.Error(err))
	}
}

func (s *Service) auditSubmission(ctx context.Context, sub *models.Submission, open *models.Challenge, updated bool) {
	action := "New Submission"
	if updated {
		action = "Submission Updated"
	}
	s.recordAudit(ctx, action, sub.UserID, fmt.Sprintf("submission:%d", sub.ID), sub.Description,
		[]discord.EmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%s>", sub.UserID)},
			{Name: "Challenge ID", Value: fmt.Sprint(open.ID)},
			{Name: "Submission Description", Value: sub.Description},
			{Name: "Image URL", Value: sub.ImageURL},
		})
	s.events.Publish(Event{Type: EventSubmission, ChallengeID: open.ID})
}

// MySubmission returns the member's entry for the challenge currently
// open, together with that challenge. Read-only.
func (s *Service) MySubmission(ctx context.Context, userID string) (*models.Submission, *models.Challenge, error) {
	open, err := s.challenges.GetOpen(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrNoActiveChallenge
	}
	if err != nil {
		return nil, nil, fmt.Errorf("looking up active challenge: %w", err)
	}

	sub, err := s.submissions.GetForUser(ctx, userID, open.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, open, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("looking up submission: %w", err)
	}
	return sub, open, nil
}

// DeleteSubmission removes an entry regardless of lifecycle state,
// optionally notifying its author by DM. The DM is best-effort.
func (s *Service) DeleteSubmission(ctx context.Context, actorID string, submissionID uint, notifyUser bool) error {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return err
	}

	sub, err := s.submissions.GetByID(ctx, submissionID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading submission: %w", err)
	}

	if err := s.submissions.Delete(ctx, submissionID); err != nil {
		return fmt.Errorf("deleting submission: %w", err)
	}

	if notifyUser {
		notice := discord.Message{Embeds: []discord.Embed{submissionDeletedEmbed(sub.Description)}}
		if err := s.gateway.SendDirectMessage(ctx, sub.UserID, notice); err != nil {
			s.logger.Error("failed to notify user about deletion",
				zap.String("userID", sub.UserID), zap.Error(err))
		}
	}

	actorTag, err := s.gateway.UserTag(ctx, actorID)
	if err != nil {
		actorTag = actorID
	}
	s.recordAudit(ctx, "Submission Deleted", actorID, fmt.Sprintf("submission:%d", submissionID), sub.Description,
		[]discord.EmbedField{
			{Name: "Moderator", Value: actorTag, Inline: true},
			{Name: "Submission ID", Value: fmt.Sprint(submissionID), Inline: true},
			{Name: "User ID", Value: sub.UserID, Inline: true},
			{Name: "Description", Value: sub.Description},
		})
	s.events.Publish(Event{Type: EventSubmissionGone, ChallengeID: sub.ChallengeID})
	return nil
}
