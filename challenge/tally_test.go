package challenge

import (
	"testing"
	"time"

	"craftbot/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestCountVotes(t *testing.T) {
	// The bot's seed reaction is discounted, never below zero.
	assert.Equal(t, 0, CountVotes(0))
	assert.Equal(t, 0, CountVotes(1))
	assert.Equal(t, 1, CountVotes(2))
	assert.Equal(t, 9, CountVotes(10))
	assert.Equal(t, 0, CountVotes(-3))
}

func submissionAt(id uint, createdAt time.Time) models.Submission {
	return models.Submission{Model: gorm.Model{ID: id, CreatedAt: createdAt}}
}

func TestRankOrdersByVotesThenSubmissionTime(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []RankedSubmission{
		{Submission: submissionAt(1, base.Add(2 * time.Hour)), Votes: 5},
		{Submission: submissionAt(2, base), Votes: 5},
		{Submission: submissionAt(3, base.Add(time.Hour)), Votes: 7},
		{Submission: submissionAt(4, base.Add(3 * time.Hour)), Votes: 1},
	}

	results := Rank(entries)

	ids := make([]uint, 0, len(results.Ranking))
	for _, entry := range results.Ranking {
		ids = append(ids, entry.Submission.ID)
	}
	// 7 votes first; the 5-vote tie resolves to the earlier submission.
	assert.Equal(t, []uint{3, 2, 1, 4}, ids)
}

func TestRankTopIsAtMostThree(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []RankedSubmission{
		{Submission: submissionAt(1, base), Votes: 4},
		{Submission: submissionAt(2, base.Add(time.Minute)), Votes: 3},
		{Submission: submissionAt(3, base.Add(2 * time.Minute)), Votes: 2},
		{Submission: submissionAt(4, base.Add(3 * time.Minute)), Votes: 1},
	}

	results := Rank(entries)
	assert.Len(t, results.Top, 3)
	assert.Len(t, results.Ranking, 4)
	assert.Equal(t, uint(1), results.Top[0].Submission.ID)

	short := Rank(entries[:2])
	assert.Len(t, short.Top, 2)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []RankedSubmission{
		{Submission: submissionAt(1, base), Votes: 1},
		{Submission: submissionAt(2, base.Add(time.Minute)), Votes: 9},
	}

	Rank(entries)
	assert.Equal(t, uint(1), entries[0].Submission.ID)
}
