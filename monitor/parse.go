package monitor

import (
	"regexp"
	"strconv"
	"strings"
)

// Discussion is one forum topic scraped from the board page.
type Discussion struct {
	ID         string
	Title      string
	Author     string
	Link       string
	Posted     string
	MinutesAgo int
	Content    string
}

// The board page has no API; topics are cut out of the HTML the same
// way the bot always has. Go's regexp has no lookahead, so sticky
// topics are filtered by inspecting the captured class list instead.
var (
	topicPattern = regexp.MustCompile(`(?s)<div[^>]*?class="forum_topic([^"]*)"[^>]*?data-gidforumtopic="([^"]*)"[^>]*>(.*?)<div class="forum_topic_lastpost"[^>]*>([^<]+)</div>`)
	namePattern  = regexp.MustCompile(`(?s)<div class="forum_topic_name[^"]*"[^>]*>(.*?)</div>`)
	opPattern    = regexp.MustCompile(`(?s)<div class="forum_topic_op"[^>]*>([^<]+)`)
	linkPattern  = regexp.MustCompile(`<a[^>]*?href="([^"]+)"`)
	hoverPattern = regexp.MustCompile(`(?s)<div class="topic_hover_text">(.*?)</div>`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	agoPattern   = regexp.MustCompile(`(?i)(\d+)\s*(minute|minutes|hour|hours)\s*ago`)
	recentCheck  = regexp.MustCompile(`(?i)just now|\d+\s*(minutes?|hours?)\s*ago`)
)

func decodeEntities(s string) string {
	replacer := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&amp;", "&",
	)
	return replacer.Replace(s)
}

func cleanHTML(s string) string {
	s = decodeEntities(s)
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\t", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// parseTimeAgo converts "just now" / "N minutes ago" / "N hours ago"
// into minutes. Returns -1 for anything else.
func parseTimeAgo(s string) int {
	if strings.EqualFold(strings.TrimSpace(s), "just now") {
		return 0
	}
	match := agoPattern.FindStringSubmatch(s)
	if match == nil {
		return -1
	}
	amount, err := strconv.Atoi(match[1])
	if err != nil {
		return -1
	}
	if strings.HasPrefix(strings.ToLower(match[2]), "hour") {
		return amount * 60
	}
	return amount
}

// RecentDiscussions extracts the non-sticky topics whose last post is
// recent (just now, or minutes/hours ago).
func RecentDiscussions(page string) []Discussion {
	var discussions []Discussion
	for _, match := range topicPattern.FindAllStringSubmatch(page, -1) {
		classes, id, body, lastPost := match[1], match[2], match[3], match[4]
		if strings.Contains(classes, "sticky") {
			continue
		}

		var title string
		if nameMatch := namePattern.FindStringSubmatch(body); nameMatch != nil {
			title = cleanHTML(nameMatch[1])
		}
		if title == "" {
			continue
		}

		posted := cleanHTML(lastPost)
		if !recentCheck.MatchString(posted) {
			continue
		}
		minutesAgo := parseTimeAgo(posted)
		if minutesAgo < 0 {
			continue
		}

		var author string
		if opMatch := opPattern.FindStringSubmatch(body); opMatch != nil {
			author = cleanHTML(opMatch[1])
		}
		var link string
		if linkMatch := linkPattern.FindStringSubmatch(body); linkMatch != nil {
			link = linkMatch[1]
		}
		if link == "" {
			continue
		}
		var content string
		if hoverMatch := hoverPattern.FindStringSubmatch(decodeEntities(body)); hoverMatch != nil {
			content = cleanHTML(hoverMatch[1])
		}

		discussions = append(discussions, Discussion{
			ID:         id,
			Title:      title,
			Author:     author,
			Link:       link,
			Posted:     posted,
			MinutesAgo: minutesAgo,
			Content:    content,
		})
	}
	return discussions
}
