package challenge

import (
	"fmt"
	"time"

	"craftbot/discord"
	"craftbot/models"
)

// Embed colors carried over from the bot's original palette.
const (
	colorChallenge = 0x7700ff
	colorReminder  = 0xFF9300
	colorVoting    = 0x3498DB
	colorClosed    = 0xe74c3c
	colorResults   = 0x2ecc71
	colorAudit     = 0xFFA500
	colorDeleted   = 0xFF0000
)

// discordTime renders an instant as the platform's client-localized
// timestamp markup.
func discordTime(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

func startAnnouncementEmbed(c *models.Challenge) discord.Embed {
	return discord.Embed{
		Color: colorChallenge,
		Title: "Community Challenge Started!",
		Fields: []discord.EmbedField{
			{Name: "Theme", Value: c.Theme},
			{Name: "Description", Value: c.Description},
			{Name: "Submissions Close", Value: discordTime(c.SubmissionsClose, "F")},
			{Name: "Voting Begins", Value: discordTime(c.VotingBegins, "F")},
			{Name: "Voting Ends", Value: discordTime(c.VotingEnds, "F")},
			{Name: "How to Participate", Value: "1. Type /submit in any channel.\n2. Upload your Image.\n3. Optionally, add the lore/backstory via the \"description\"!"},
		},
		Footer:    "Good luck! We can't wait to see your submissions!",
		Timestamp: time.Now(),
	}
}

func generalAnnouncementEmbed(forumID string) discord.Embed {
	return discord.Embed{
		Color: colorChallenge,
		Title: "🚨 A New Community Challenge Has Started! 🚨",
		Description: fmt.Sprintf(
			"A new community challenge has just started! Visit <#%s> to learn more.\n\n"+
				"Want to be notified about current and future challenges? Grant yourself the \"Challenge Alerts\" role by typing `/challengealerts`.",
			forumID),
		Timestamp: time.Now(),
	}
}

func reminderEmbed(c *models.Challenge, label string) discord.Embed {
	return discord.Embed{
		Color: colorReminder,
		Title: "⏰ Submission Deadline Approaching!",
		Description: fmt.Sprintf(
			"**Only %s left** to submit your entry for:\n\"%s\"\n\n"+
				"Submissions close %s\n\nUse `/submit` to enter your submission!",
			label, c.Theme, discordTime(c.SubmissionsClose, "R")),
		Timestamp: time.Now(),
	}
}

func votingAnnouncementEmbed(theme string) discord.Embed {
	return discord.Embed{
		Color: colorVoting,
		Title: "Voting for the Community Challenge has Started!",
		Description: fmt.Sprintf(
			"The voting process for this challenge submissions is now live! 🗳️\n\n**The theme of this challenge is:** %s", theme),
		Footer:    "Vote for your favorite submissions!",
		Timestamp: time.Now(),
	}
}

func ballotEmbed(sub *models.Submission, userTag string) discord.Embed {
	return discord.Embed{
		Color:       colorVoting,
		Title:       "Community Challenge Submission",
		Description: fmt.Sprintf("Submitted by: **%s**", userTag),
		ImageURL:    sub.ImageURL,
		Footer:      fmt.Sprintf("Submission ID: %d", sub.ID),
		Timestamp:   time.Now(),
	}
}

func votingClosedEmbed(theme string) discord.Embed {
	return discord.Embed{
		Color:       colorClosed,
		Title:       fmt.Sprintf("Voting for the %q Challenge has Closed!", theme),
		Description: "The top submissions will be announced soon!",
		Timestamp:   time.Now(),
	}
}

func resultsEmbed(theme string, top []RankedSubmission, tags map[string]string) discord.Embed {
	embed := discord.Embed{
		Color:       colorResults,
		Title:       fmt.Sprintf("Top Submissions of the %q Challenge", theme),
		Description: "Here are the top submissions based on votes:",
		Timestamp:   time.Now(),
	}
	for rank, entry := range top {
		tag := tags[entry.Submission.UserID]
		if tag == "" {
			tag = entry.Submission.UserID
		}
		description := entry.Submission.Description
		if description == "" {
			description = "No description provided."
		}
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:  fmt.Sprintf("Rank %d: %s", rank+1, tag),
			Value: fmt.Sprintf("Votes: %d\nDescription: %s", entry.Votes, description),
		})
	}
	return embed
}

func submissionReceiptEmbed(sub *models.Submission, updated bool) discord.Embed {
	title := "Submission Received"
	description := "Your entry has been successfully submitted!"
	color := colorResults
	if updated {
		title = "Submission Updated"
		description = "Your previous submission has been successfully updated!"
		color = colorVoting
	}
	return discord.Embed{
		Color:       color,
		Title:       title,
		Description: description,
		Fields: []discord.EmbedField{
			{Name: "Submission Description", Value: sub.Description},
			{Name: "Image URL", Value: sub.ImageURL},
		},
		ImageURL:  sub.ImageURL,
		Footer:    "Thank you for participating!",
		Timestamp: time.Now(),
	}
}

func submissionDeletedEmbed(description string) discord.Embed {
	return discord.Embed{
		Color:       colorDeleted,
		Title:       "Submission Deleted",
		Description: "Your submission has been removed by a moderator.",
		Fields: []discord.EmbedField{
			{Name: "Reason", Value: "Violation of community guidelines or inappropriate content."},
			{Name: "Deleted Submission", Value: description},
		},
		Timestamp: time.Now(),
	}
}

func auditEmbed(action string, fields []discord.EmbedField) discord.Embed {
	return discord.Embed{
		Color:     colorAudit,
		Title:     action,
		Fields:    fields,
		Timestamp: time.Now(),
	}
}
