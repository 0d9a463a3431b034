package challenge

import (
	"sort"

	"craftbot/models"
)

// RankedSubmission is one submission with its tallied vote count.
type RankedSubmission struct {
	Submission models.Submission
	Votes      int
}

// RankedResults is the outcome of closing a vote.
type RankedResults struct {
	Ranking []RankedSubmission
	// Top holds up to the first three entries of Ranking.
	Top []RankedSubmission
}

// CountVotes converts a raw reaction count into a vote count by
// discounting the bot's own seed reaction, floored at zero.
func CountVotes(rawReactions int) int {
	if rawReactions <= 1 {
		return 0
	}
	return rawReactions - 1
}

// Rank sorts entries by vote count descending. Equal counts rank by
// earlier submission time, so early entrants win ties.
func Rank(entries []RankedSubmission) RankedResults {
	ranking := make([]RankedSubmission, len(entries))
	copy(ranking, entries)

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].Votes != ranking[j].Votes {
			return ranking[i].Votes > ranking[j].Votes
		}
		return ranking[i].Submission.CreatedAt.Before(ranking[j].Submission.CreatedAt)
	})

	top := ranking
	if len(top) > 3 {
		top = top[:3]
	}
	return RankedResults{Ranking: ranking, Top: top}
}
