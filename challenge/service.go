package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"craftbot/discord"
	"craftbot/models"
	"craftbot/storage"

	"go.uber.org/zap"
)

const fallbackVoteEmoji = "👍"

// Service is the challenge lifecycle state machine and submission
// ledger. Precondition checks run before any mutation; announcement
// and DM failures after a mutation are logged and never roll it back.
type Service struct {
	challenges  storage.ChallengeStorage
	submissions storage.SubmissionStorage
	reminders   storage.ReminderStorage
	audit       storage.AuditStorage
	gateway     discord.Gateway
	cfg         models.Config
	logger      *zap.Logger
	events      EventSink
	now         func() time.Time
}

func NewService(
	challenges storage.ChallengeStorage,
	submissions storage.SubmissionStorage,
	reminders storage.ReminderStorage,
	audit storage.AuditStorage,
	gateway discord.Gateway,
	cfg models.Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		challenges:  challenges,
		submissions: submissions,
		reminders:   reminders,
		audit:       audit,
		gateway:     gateway,
		cfg:         cfg,
		logger:      logger,
		events:      noopSink{},
		now:         time.Now,
	}
}

// SetEventSink attaches the dashboard event hub. Must be called
// before the service starts handling requests.
func (s *Service) SetEventSink(sink EventSink) {
	if sink != nil {
		s.events = sink
	}
}

// requireModerator gates every moderator-only operation on the
// configured role list before anything else runs.
func (s *Service) requireModerator(ctx context.Context, actorID string) error {
	ok, err := s.gateway.HasRole(ctx, actorID, s.cfg.ModeratorRoleIDs)
	if err != nil {
		s.logger.Error("role check failed", zap.String("actorID", actorID), zap.Error(err))
		return fmt.Errorf("role check: %w", err)
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// recordAudit writes the durable audit row and mirrors it to the
// audit channel. Both halves are best-effort.
func (s *Service) recordAudit(ctx context.Context, action, actorID, subject, detail string, fields []discord.EmbedField) {
	entry := &models.AuditEntry{Action: action, ActorID: actorID, Subject: subject, Detail: detail}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Error("failed to record audit entry", zap.String("action", action), zap.Error(err))
	}
	if s.cfg.AuditChannelID == "" {
		return
	}
	embed := auditEmbed(action, fields)
	if _, err := s.gateway.PostMessage(ctx, s.cfg.AuditChannelID, discord.Message{Embeds: []discord.Embed{embed}}); err != nil {
		s.logger.Error("failed to post audit embed", zap.String("action", action), zap.Error(err))
	}
}

// StartChallengeInput carries the start-challenge parameters.
type StartChallengeInput struct {
	ActorID          string
	Theme            string
	Description      string
	SubmissionsClose time.Time
	VotingBegins     time.Time
	VotingEnds       time.Time
	ImageURL         string
}

// StartChallenge opens a new challenge: creates the discussion
// thread, persists the record in Submissions, schedules reminders and
// announces it. Fails with ErrConflict while another challenge is
// accepting submissions or voting.
func (s *Service) StartChallenge(ctx context.Context, in StartChallengeInput) (*models.Challenge, error) {
	if err := s.requireModerator(ctx, in.ActorID); err != nil {
		return nil, err
	}

	if _, err := s.challenges.GetOpen(ctx); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("checking active challenge: %w", err)
	}

	if in.Theme == "" {
		in.Theme = "The possibilities are endless!"
	}
	if in.Description == "" {
		in.Description = "No description provided."
	}

	initial := discord.Message{
		Content: fmt.Sprintf("<@&%s>  A new community challenge has begun! Feel free to discuss the challenge here. "+
			"Enter your submission via /submit when you're ready! You may revise your submission until voting has started. "+
			"Additionally, submissions will remain private until voting has started!", s.cfg.ContestRoleID),
	}
	if in.ImageURL != "" {
		initial.Embeds = []discord.Embed{{ImageURL: in.ImageURL}}
	}
	threadID, err := s.gateway.CreateThread(ctx, s.cfg.ChallengeForumID, "Challenge: "+in.Theme, initial)
	if err != nil {
		s.logger.Error("failed to create challenge thread", zap.Error(err))
		return nil, fmt.Errorf("creating challenge thread: %w", err)
	}

	newChallenge := &models.Challenge{
		Theme:            in.Theme,
		Description:      in.Description,
		State:            models.StateSubmissions,
		SubmissionsClose: in.SubmissionsClose,
		VotingBegins:     in.VotingBegins,
		VotingEnds:       in.VotingEnds,
		ThreadID:         threadID,
		ImageURL:         in.ImageURL,
		Active:           true,
	}
	if err := s.challenges.Create(ctx, newChallenge); err != nil {
		if storage.IsUniqueViolation(err) {
			// Lost the start race; the partial unique index on active
			// is the authoritative check.
			if delErr := s.gateway.DeleteThread(ctx, threadID); delErr != nil {
				s.logger.Error("failed to delete orphaned thread", zap.String("threadID", threadID), zap.Error(delErr))
			}
			return nil, ErrConflict
		}
		s.logger.Error("failed to create challenge", zap.Error(err))
		return nil, fmt.Errorf("creating challenge: %w", err)
	}

	reminders := ReminderTimes(s.now(), newChallenge.SubmissionsClose, DefaultReminderOffsets, newChallenge.ID)
	if err := s.reminders.CreateBatch(ctx, reminders); err != nil {
		s.logger.Error("failed to schedule reminders", zap.Uint("challengeID", newChallenge.ID), zap.Error(err))
	}

	// Announcements are best-effort from here on.
	startEmbed := startAnnouncementEmbed(newChallenge)
	if _, err := s.gateway.PostMessage(ctx, threadID, discord.Message{Embeds: []discord.Embed{startEmbed}}); err != nil {
		s.logger.Error("failed to post challenge embed", zap.Uint("challengeID", newChallenge.ID), zap.Error(err))
	}
	if s.cfg.GeneralChatID != "" {
		announce := generalAnnouncementEmbed(s.cfg.ChallengeForumID)
		if _, err := s.gateway.PostMessage(ctx, s.cfg.GeneralChatID, discord.Message{Embeds: []discord.Embed{announce}}); err != nil {
			s.logger.Error("failed to post general announcement", zap.Uint("challengeID", newChallenge.ID), zap.Error(err))
		}
	}

	s.recordAudit(ctx, "Challenge Started", in.ActorID, fmt.Sprintf("challenge:%d", newChallenge.ID), in.Theme,
		[]discord.EmbedField{
			{Name: "Challenge ID", Value: fmt.Sprint(newChallenge.ID)},
			{Name: "Theme", Value: in.Theme},
		})
	s.events.Publish(Event{Type: EventChallengeStarted, ChallengeID: newChallenge.ID, Detail: in.Theme})

	return newChallenge, nil
}

// StartVoting freezes every submission of the challenge, posts one
// ballot message per submission with the vote reaction seeded, and
// transitions the challenge to Voting.
func (s *Service) StartVoting(ctx context.Context, actorID string, challengeID uint) error {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return err
	}

	current, err := s.getChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	if current.State != models.StateSubmissions {
		return ErrInvalidState
	}

	entries, err := s.submissions.ListByChallenge(ctx, challengeID)
	if err != nil {
		return fmt.Errorf("listing submissions: %w", err)
	}
	if len(entries) == 0 {
		return ErrEmpty
	}

	// Where the ballots go: the challenge thread, or a dedicated
	// voting thread in dual mode.
	votingChannel := current.ThreadID
	votingThreadID := ""
	announcement := votingAnnouncementEmbed(current.Theme)
	if s.cfg.VotingMode == "dual" {
		created, err := s.gateway.CreateThread(ctx, s.cfg.ChallengeForumID, "Voting: "+current.Theme,
			discord.Message{Embeds: []discord.Embed{announcement}})
		if err != nil {
			s.logger.Error("failed to create voting thread", zap.Uint("challengeID", challengeID), zap.Error(err))
			return fmt.Errorf("creating voting thread: %w", err)
		}
		votingChannel = created
		votingThreadID = created
	} else {
		if _, err := s.gateway.PostMessage(ctx, votingChannel, discord.Message{Embeds: []discord.Embed{announcement}}); err != nil {
			s.logger.Error("failed to announce voting", zap.Uint("challengeID", challengeID), zap.Error(err))
		}
	}

	voteEmoji := s.cfg.VoteEmoji
	if voteEmoji == "" {
		voteEmoji = fallbackVoteEmoji
	}
	for i := range entries {
		sub := &entries[i]
		tag, err := s.gateway.UserTag(ctx, sub.UserID)
		if err != nil {
			tag = sub.UserID
		}
		ref, err := s.gateway.PostMessage(ctx, votingChannel, discord.Message{Embeds: []discord.Embed{ballotEmbed(sub, tag)}})
		if err != nil {
			// A missing ballot tallies as zero votes later; the rest
			// of the submissions still get theirs.
			s.logger.Error("failed to post ballot",
				zap.Uint("submissionID", sub.ID), zap.Error(err))
			continue
		}
		if err := s.gateway.ReactToMessage(ctx, ref, voteEmoji); err != nil && voteEmoji != fallbackVoteEmoji {
			s.logger.Warn("custom vote emoji rejected, falling back",
				zap.String("emoji", voteEmoji), zap.Error(err))
			voteEmoji = fallbackVoteEmoji
			err = s.gateway.ReactToMessage(ctx, ref, voteEmoji)
			if err != nil {
				s.logger.Error("failed to seed vote reaction", zap.Uint("submissionID", sub.ID), zap.Error(err))
			}
		} else if err != nil {
			s.logger.Error("failed to seed vote reaction", zap.Uint("submissionID", sub.ID), zap.Error(err))
		}
		sub.MessageID = ref.MessageID
		sub.ChannelID = ref.ChannelID
		if err := s.submissions.Save(ctx, sub); err != nil {
			s.logger.Error("failed to record ballot ref", zap.Uint("submissionID", sub.ID), zap.Error(err))
		}
	}

	if err := s.submissions.FinalizeAll(ctx, challengeID); err != nil {
		return fmt.Errorf("finalizing submissions: %w", err)
	}
	fields := map[string]interface{}{
		"state":            models.StateVoting,
		"voting_thread_id": votingThreadID,
		"vote_emoji":       voteEmoji,
	}
	if err := s.challenges.UpdateFields(ctx, challengeID, fields); err != nil {
		return fmt.Errorf("transitioning to voting: %w", err)
	}

	// Submission-deadline reminders are moot once voting begins.
	if err := s.reminders.CancelForChallenge(ctx, challengeID); err != nil {
		s.logger.Error("failed to cancel reminders", zap.Uint("challengeID", challengeID), zap.Error(err))
	}

	s.recordAudit(ctx, "Voting Started", actorID, fmt.Sprintf("challenge:%d", challengeID), current.Theme,
		[]discord.EmbedField{{Name: "Challenge ID", Value: fmt.Sprint(challengeID)}})
	s.events.Publish(Event{Type: EventVotingStarted, ChallengeID: challengeID})
	return nil
}

// EndVoting tallies the reactions on every finalized submission,
// ranks them, announces the results and closes the challenge. A
// failed reaction fetch scores that submission zero and is logged;
// the tally continues.
func (s *Service) EndVoting(ctx context.Context, actorID string, challengeID uint) (RankedResults, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return RankedResults{}, err
	}

	current, err := s.getChallenge(ctx, challengeID)
	if err != nil {
		return RankedResults{}, err
	}
	if current.State != models.StateVoting {
		return RankedResults{}, ErrInvalidState
	}

	finalized, err := s.submissions.ListFinalized(ctx, challengeID)
	if err != nil {
		return RankedResults{}, fmt.Errorf("listing finalized submissions: %w", err)
	}
	if len(finalized) == 0 {
		return RankedResults{}, ErrEmpty
	}

	voteEmoji := current.VoteEmoji
	if voteEmoji == "" {
		voteEmoji = fallbackVoteEmoji
	}

	entries := make([]RankedSubmission, 0, len(finalized))
	for _, sub := range finalized {
		votes := 0
		if sub.MessageID != "" {
			raw, err := s.gateway.ReactionCount(ctx,
				discord.MessageRef{ChannelID: sub.ChannelID, MessageID: sub.MessageID}, voteEmoji)
			if err != nil {
				s.logger.Error("failed to fetch reactions, counting zero",
					zap.Uint("submissionID", sub.ID), zap.Error(err))
			} else {
				votes = CountVotes(raw)
			}
		}
		entries = append(entries, RankedSubmission{Submission: sub, Votes: votes})
	}

	results := Rank(entries)
	for _, entry := range results.Ranking {
		sub := entry.Submission
		sub.VoteCount = entry.Votes
		if err := s.submissions.Save(ctx, &sub); err != nil {
			s.logger.Error("failed to persist vote count", zap.Uint("submissionID", sub.ID), zap.Error(err))
		}
	}

	tags := make(map[string]string, len(results.Top))
	for _, entry := range results.Top {
		if tag, err := s.gateway.UserTag(ctx, entry.Submission.UserID); err == nil {
			tags[entry.Submission.UserID] = tag
		}
	}

	closedChannel := current.ThreadID
	if current.VotingThreadID != "" {
		closedChannel = current.VotingThreadID
	}
	if _, err := s.gateway.PostMessage(ctx, closedChannel,
		discord.Message{Embeds: []discord.Embed{votingClosedEmbed(current.Theme)}}); err != nil {
		s.logger.Error("failed to post voting-closed notice", zap.Uint("challengeID", challengeID), zap.Error(err))
	}
	summary := resultsEmbed(current.Theme, results.Top, tags)
	for _, channelID := range s.cfg.ModeratorChannelIDs {
		if _, err := s.gateway.PostMessage(ctx, channelID, discord.Message{Embeds: []discord.Embed{summary}}); err != nil {
			s.logger.Error("failed to post results", zap.String("channelID", channelID), zap.Error(err))
		}
	}

	fields := map[string]interface{}{"state": models.StateClosed, "active": false}
	if err := s.challenges.UpdateFields(ctx, challengeID, fields); err != nil {
		return RankedResults{}, fmt.Errorf("closing challenge: %w", err)
	}
	if err := s.reminders.CancelForChallenge(ctx, challengeID); err != nil {
		s.logger.Error("failed to cancel reminders", zap.Uint("challengeID", challengeID), zap.Error(err))
	}

	s.recordAudit(ctx, "Voting Ended", actorID, fmt.Sprintf("challenge:%d", challengeID), current.Theme,
		[]discord.EmbedField{{Name: "Challenge ID", Value: fmt.Sprint(challengeID)}})
	s.events.Publish(Event{Type: EventChallengeClosed, ChallengeID: challengeID})
	return results, nil
}

// DeleteChallenge removes the challenge, its submissions and its
// threads. Thread deletion is best-effort; the rows always go.
func (s *Service) DeleteChallenge(ctx context.Context, actorID string, challengeID uint) error {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return err
	}

	current, err := s.getChallenge(ctx, challengeID)
	if err != nil {
		return err
	}

	for _, threadID := range []string{current.ThreadID, current.VotingThreadID} {
		if threadID == "" {
			continue
		}
		if err := s.gateway.DeleteThread(ctx, threadID); err != nil {
			s.logger.Error("failed to delete thread", zap.String("threadID", threadID), zap.Error(err))
		}
	}

	if err := s.challenges.Delete(ctx, challengeID); err != nil {
		return fmt.Errorf("deleting challenge: %w", err)
	}
	if err := s.submissions.DeleteByChallenge(ctx, challengeID); err != nil {
		// Unlike the thread deletes above, leftover submission rows are
		// real state; the caller must know the cascade did not finish.
		return fmt.Errorf("deleting submissions for challenge %d: %w", challengeID, err)
	}
	if err := s.reminders.CancelForChallenge(ctx, challengeID); err != nil {
		s.logger.Error("failed to cancel reminders", zap.Uint("challengeID", challengeID), zap.Error(err))
	}

	actorTag, err := s.gateway.UserTag(ctx, actorID)
	if err != nil {
		actorTag = actorID
	}
	s.recordAudit(ctx, "Challenge Deleted", actorID, fmt.Sprintf("challenge:%d", challengeID), current.Theme,
		[]discord.EmbedField{
			{Name: "Challenge ID", Value: fmt.Sprint(challengeID)},
			{Name: "Theme", Value: current.Theme},
			{Name: "Deleted By", Value: actorTag},
		})
	s.events.Publish(Event{Type: EventChallengeDeleted, ChallengeID: challengeID})
	return nil
}

// ChallengeUpdate is a sparse field update; nil means leave as is.
type ChallengeUpdate struct {
	Theme            *string
	Description      *string
	SubmissionsClose *time.Time
	VotingBegins     *time.Time
	VotingEnds       *time.Time
}

// UpdateChallenge applies a sparse update while the challenge is
// still accepting submissions, renames the thread on a theme change,
// reschedules reminders on a deadline change and announces the diff.
func (s *Service) UpdateChallenge(ctx context.Context, actorID string, challengeID uint, update ChallengeUpdate) error {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return err
	}

	current, err := s.getChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	if current.State != models.StateSubmissions {
		return ErrInvalidState
	}

	fields := map[string]interface{}{}
	var diff []discord.EmbedField
	if update.Theme != nil {
		fields["theme"] = *update.Theme
		diff = append(diff, discord.EmbedField{Name: "Theme", Value: *update.Theme})
	}
	if update.Description != nil {
		fields["description"] = *update.Description
		diff = append(diff, discord.EmbedField{Name: "Description", Value: *update.Description})
	}
	if update.SubmissionsClose != nil {
		fields["submissions_close"] = *update.SubmissionsClose
		diff = append(diff, discord.EmbedField{Name: "Submissions Close", Value: discordTime(*update.SubmissionsClose, "F")})
	}
	if update.VotingBegins != nil {
		fields["voting_begins"] = *update.VotingBegins
		diff = append(diff, discord.EmbedField{Name: "Voting Begins", Value: discordTime(*update.VotingBegins, "F")})
	}
	if update.VotingEnds != nil {
		fields["voting_ends"] = *update.VotingEnds
		diff = append(diff, discord.EmbedField{Name: "Voting Ends", Value: discordTime(*update.VotingEnds, "F")})
	}
	if len(fields) == 0 {
		return ErrNoUpdates
	}

	if err := s.challenges.UpdateFields(ctx, challengeID, fields); err != nil {
		return fmt.Errorf("updating challenge: %w", err)
	}

	if update.Theme != nil {
		if err := s.gateway.RenameThread(ctx, current.ThreadID, "Challenge: "+*update.Theme); err != nil {
			s.logger.Error("failed to rename thread", zap.String("threadID", current.ThreadID), zap.Error(err))
		}
	}

	// A moved deadline invalidates the scheduled reminders.
	if update.SubmissionsClose != nil {
		if err := s.reminders.CancelForChallenge(ctx, challengeID); err != nil {
			s.logger.Error("failed to cancel reminders", zap.Uint("challengeID", challengeID), zap.Error(err))
		}
		reminders := ReminderTimes(s.now(), *update.SubmissionsClose, DefaultReminderOffsets, challengeID)
		if err := s.reminders.CreateBatch(ctx, reminders); err != nil {
			s.logger.Error("failed to reschedule reminders", zap.Uint("challengeID", challengeID), zap.Error(err))
		}
	}

	updateNotice := discord.Embed{
		Color:       colorChallenge,
		Title:       "Challenge Updated",
		Description: "The following changes have been made to this challenge:",
		Fields:      diff,
		Timestamp:   s.now(),
	}
	if _, err := s.gateway.PostMessage(ctx, current.ThreadID, discord.Message{Embeds: []discord.Embed{updateNotice}}); err != nil {
		s.logger.Error("failed to announce update", zap.Uint("challengeID", challengeID), zap.Error(err))
	}

	s.recordAudit(ctx, "Challenge Updated", actorID, fmt.Sprintf("challenge:%d", challengeID), "",
		append([]discord.EmbedField{{Name: "Challenge ID", Value: fmt.Sprint(challengeID)}}, diff...))
	s.events.Publish(Event{Type: EventChallengeUpdated, ChallengeID: challengeID})
	return nil
}

// ListChallenges returns every challenge, newest first.
func (s *Service) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	return s.challenges.ListAll(ctx)
}

// ListActiveChallenges returns challenges still in Submissions or Voting.
func (s *Service) ListActiveChallenges(ctx context.Context) ([]models.Challenge, error) {
	return s.challenges.ListOpen(ctx)
}

func (s *Service) getChallenge(ctx context.Context, id uint) (*models.Challenge, error) {
	current, err := s.challenges.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading challenge: %w", err)
	}
	return current, nil
}
