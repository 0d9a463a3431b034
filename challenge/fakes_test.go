package challenge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"craftbot/discord"
	"craftbot/models"
	"craftbot/storage"
)

// In-memory doubles for the storage interfaces and the chat gateway.
// They enforce the same uniqueness rules postgres does so the race
// handling paths are exercisable without a database.

var errDuplicate = errors.New(`duplicate key value violates unique constraint`)

type fakeChallengeStore struct {
	rows   map[uint]*models.Challenge
	nextID uint
}

func newFakeChallengeStore() *fakeChallengeStore {
	return &fakeChallengeStore{rows: map[uint]*models.Challenge{}, nextID: 1}
}

func (f *fakeChallengeStore) GetOpen(context.Context) (*models.Challenge, error) {
	for _, row := range f.rows {
		if row.IsOpen() {
			copied := *row
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeChallengeStore) GetByID(_ context.Context, id uint) (*models.Challenge, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeChallengeStore) Create(_ context.Context, challenge *models.Challenge) error {
	if challenge.Active {
		for _, row := range f.rows {
			if row.Active {
				return errDuplicate
			}
		}
	}
	challenge.ID = f.nextID
	f.nextID++
	copied := *challenge
	f.rows[challenge.ID] = &copied
	return nil
}

func (f *fakeChallengeStore) Save(_ context.Context, challenge *models.Challenge) error {
	copied := *challenge
	f.rows[challenge.ID] = &copied
	return nil
}

func (f *fakeChallengeStore) UpdateFields(_ context.Context, id uint, fields map[string]interface{}) error {
	row, ok := f.rows[id]
	if !ok {
		return storage.ErrNotFound
	}
	for name, value := range fields {
		switch name {
		case "state":
			row.State = value.(string)
		case "theme":
			row.Theme = value.(string)
		case "description":
			row.Description = value.(string)
		case "submissions_close":
			row.SubmissionsClose = value.(time.Time)
		case "voting_begins":
			row.VotingBegins = value.(time.Time)
		case "voting_ends":
			row.VotingEnds = value.(time.Time)
		case "voting_thread_id":
			row.VotingThreadID = value.(string)
		case "vote_emoji":
			row.VoteEmoji = value.(string)
		case "active":
			row.Active = value.(bool)
		default:
			return fmt.Errorf("fake store: unknown field %q", name)
		}
	}
	return nil
}

func (f *fakeChallengeStore) Delete(_ context.Context, id uint) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeChallengeStore) ListAll(context.Context) ([]models.Challenge, error) {
	var all []models.Challenge
	for _, row := range f.rows {
		all = append(all, *row)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all, nil
}

func (f *fakeChallengeStore) ListOpen(context.Context) ([]models.Challenge, error) {
	var open []models.Challenge
	for _, row := range f.rows {
		if row.IsOpen() && row.Active {
			open = append(open, *row)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID > open[j].ID })
	return open, nil
}

type fakeSubmissionStore struct {
	rows   map[uint]*models.Submission
	nextID uint
	base   time.Time
	// forceDuplicateOnce makes the next Create fail as the composite
	// unique index would when two submits race.
	forceDuplicateOnce bool
	failDeleteCascade  bool
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{
		rows:   map[uint]*models.Submission{},
		nextID: 1,
		base:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeSubmissionStore) GetForUser(_ context.Context, userID string, challengeID uint) (*models.Submission, error) {
	for _, row := range f.rows {
		if row.UserID == userID && row.ChallengeID == challengeID {
			copied := *row
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeSubmissionStore) GetByID(_ context.Context, id uint) (*models.Submission, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeSubmissionStore) Create(_ context.Context, submission *models.Submission) error {
	if f.forceDuplicateOnce {
		f.forceDuplicateOnce = false
		return errDuplicate
	}
	for _, row := range f.rows {
		if row.UserID == submission.UserID && row.ChallengeID == submission.ChallengeID {
			return errDuplicate
		}
	}
	submission.ID = f.nextID
	submission.CreatedAt = f.base.Add(time.Duration(f.nextID) * time.Second)
	f.nextID++
	copied := *submission
	f.rows[submission.ID] = &copied
	return nil
}

func (f *fakeSubmissionStore) Save(_ context.Context, submission *models.Submission) error {
	copied := *submission
	f.rows[submission.ID] = &copied
	return nil
}

func (f *fakeSubmissionStore) ListByChallenge(_ context.Context, challengeID uint) ([]models.Submission, error) {
	return f.list(challengeID, false), nil
}

func (f *fakeSubmissionStore) ListFinalized(_ context.Context, challengeID uint) ([]models.Submission, error) {
	return f.list(challengeID, true), nil
}

func (f *fakeSubmissionStore) list(challengeID uint, finalizedOnly bool) []models.Submission {
	var out []models.Submission
	for _, row := range f.rows {
		if row.ChallengeID != challengeID {
			continue
		}
		if finalizedOnly && !row.Finalized {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (f *fakeSubmissionStore) FinalizeAll(_ context.Context, challengeID uint) error {
	for _, row := range f.rows {
		if row.ChallengeID == challengeID {
			row.Finalized = true
		}
	}
	return nil
}

func (f *fakeSubmissionStore) Delete(_ context.Context, id uint) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeSubmissionStore) DeleteByChallenge(_ context.Context, challengeID uint) error {
	if f.failDeleteCascade {
		return errors.New("database down")
	}
	for id, row := range f.rows {
		if row.ChallengeID == challengeID {
			delete(f.rows, id)
		}
	}
	return nil
}

type fakeReminderStore struct {
	rows   map[uint]*models.Reminder
	nextID uint
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{rows: map[uint]*models.Reminder{}, nextID: 1}
}

func (f *fakeReminderStore) CreateBatch(_ context.Context, reminders []models.Reminder) error {
	for i := range reminders {
		reminders[i].ID = f.nextID
		f.nextID++
		copied := reminders[i]
		f.rows[copied.ID] = &copied
	}
	return nil
}

func (f *fakeReminderStore) Due(_ context.Context, now time.Time) ([]models.Reminder, error) {
	var due []models.Reminder
	for _, row := range f.rows {
		if !row.Fired && !row.Cancelled && !row.FireAt.After(now) {
			due = append(due, *row)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].FireAt.Before(due[j].FireAt) })
	return due, nil
}

func (f *fakeReminderStore) MarkFired(_ context.Context, id uint) error {
	if row, ok := f.rows[id]; ok {
		row.Fired = true
	}
	return nil
}

func (f *fakeReminderStore) MarkCancelled(_ context.Context, id uint) error {
	if row, ok := f.rows[id]; ok {
		row.Cancelled = true
	}
	return nil
}

func (f *fakeReminderStore) CancelForChallenge(_ context.Context, challengeID uint) error {
	for _, row := range f.rows {
		if row.ChallengeID == challengeID && !row.Fired {
			row.Cancelled = true
		}
	}
	return nil
}

func (f *fakeReminderStore) PurgeSettled(_ context.Context, before time.Time) (int64, error) {
	var purged int64
	for id, row := range f.rows {
		if (row.Fired || row.Cancelled) && row.UpdatedAt.Before(before) {
			delete(f.rows, id)
			purged++
		}
	}
	return purged, nil
}

func (f *fakeReminderStore) pending(challengeID uint) int {
	count := 0
	for _, row := range f.rows {
		if row.ChallengeID == challengeID && !row.Fired && !row.Cancelled {
			count++
		}
	}
	return count
}

type fakeAuditStore struct {
	entries []models.AuditEntry
}

func (f *fakeAuditStore) Record(_ context.Context, entry *models.AuditEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditStore) List(_ context.Context, limit int) ([]models.AuditEntry, error) {
	return f.entries, nil
}

type postedMessage struct {
	channelID string
	msg       discord.Message
}

// fakeGateway records every outbound call and can be primed to fail
// specific operations.
type fakeGateway struct {
	moderators map[string]bool

	threads      map[string]string // threadID -> title
	nextThread   int
	posted       []postedMessage
	nextMessage  int
	reactions    map[string]map[string]int // "channel/message" -> emoji -> raw count
	dms          map[string][]discord.Message
	deleted      []string
	renamed      map[string]string
	rejectEmoji  string
	failReact    bool
	failPost     bool
	failThreads  bool
	failCounts   map[string]bool // "channel/message" -> fail ReactionCount
	hasRoleError error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		moderators: map[string]bool{},
		threads:    map[string]string{},
		reactions:  map[string]map[string]int{},
		dms:        map[string][]discord.Message{},
		renamed:    map[string]string{},
		failCounts: map[string]bool{},
	}
}

func refKey(ref discord.MessageRef) string {
	return ref.ChannelID + "/" + ref.MessageID
}

func (f *fakeGateway) CreateThread(_ context.Context, forumID, title string, initial discord.Message) (string, error) {
	if f.failThreads {
		return "", errors.New("gateway down")
	}
	f.nextThread++
	threadID := fmt.Sprintf("thread-%d", f.nextThread)
	f.threads[threadID] = title
	f.posted = append(f.posted, postedMessage{channelID: threadID, msg: initial})
	return threadID, nil
}

func (f *fakeGateway) PostMessage(_ context.Context, channelID string, msg discord.Message) (discord.MessageRef, error) {
	if f.failPost {
		return discord.MessageRef{}, errors.New("gateway down")
	}
	f.nextMessage++
	ref := discord.MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("msg-%d", f.nextMessage)}
	f.posted = append(f.posted, postedMessage{channelID: channelID, msg: msg})
	return ref, nil
}

func (f *fakeGateway) ReactToMessage(_ context.Context, ref discord.MessageRef, emoji string) error {
	if f.failReact || emoji == f.rejectEmoji {
		return errors.New("unknown emoji")
	}
	if f.reactions[refKey(ref)] == nil {
		f.reactions[refKey(ref)] = map[string]int{}
	}
	f.reactions[refKey(ref)][emoji]++
	return nil
}

func (f *fakeGateway) ReactionCount(_ context.Context, ref discord.MessageRef, emoji string) (int, error) {
	if f.failCounts[refKey(ref)] {
		return 0, errors.New("gateway down")
	}
	return f.reactions[refKey(ref)][emoji], nil
}

func (f *fakeGateway) SendDirectMessage(_ context.Context, userID string, msg discord.Message) error {
	f.dms[userID] = append(f.dms[userID], msg)
	return nil
}

func (f *fakeGateway) RenameThread(_ context.Context, threadID, newTitle string) error {
	f.renamed[threadID] = newTitle
	return nil
}

func (f *fakeGateway) DeleteThread(_ context.Context, threadID string) error {
	delete(f.threads, threadID)
	f.deleted = append(f.deleted, threadID)
	return nil
}

func (f *fakeGateway) HasRole(_ context.Context, memberID string, _ []string) (bool, error) {
	if f.hasRoleError != nil {
		return false, f.hasRoleError
	}
	return f.moderators[memberID], nil
}

func (f *fakeGateway) UserTag(_ context.Context, userID string) (string, error) {
	return "tag:" + userID, nil
}

// addVotes bumps the raw reaction count on a ballot, simulating member
// reactions on top of the bot's seed.
func (f *fakeGateway) addVotes(ref discord.MessageRef, emoji string, count int) {
	if f.reactions[refKey(ref)] == nil {
		f.reactions[refKey(ref)] = map[string]int{}
	}
	f.reactions[refKey(ref)][emoji] += count
}

type recordingSink struct {
	events []Event
}

func (r *recordingSink) Publish(event Event) {
	r.events = append(r.events, event)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
