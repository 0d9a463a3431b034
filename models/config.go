package models

// Config holds everything the bot reads at startup. Database fields
// come from config.json like the rest; secrets (bot token, JWT key,
// dashboard password) may be overridden from the environment.
type Config struct {
	DBHost     string `json:"db_host"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_sslmode"`

	DiscordToken string `json:"discord_token"`
	GuildID      string `json:"guild_id"`

	// Role gates and notification targets.
	ModeratorRoleIDs    []string `json:"moderator_role_ids"`
	ContestRoleID       string   `json:"contest_role_id"`
	ChallengeForumID    string   `json:"challenge_forum_id"`
	GeneralChatID       string   `json:"general_chat_id"`
	AuditChannelID      string   `json:"audit_channel_id"`
	ModeratorChannelIDs []string `json:"moderator_channel_ids"`

	// Voting behavior, consolidated from the historical variants:
	// "single" posts ballots into the challenge thread, "dual" opens a
	// dedicated voting thread. VoteEmoji may be a custom emoji in
	// name:id form; the gateway falls back to 👍 when it is rejected.
	VotingMode string `json:"voting_mode"`
	VoteEmoji  string `json:"vote_emoji"`

	// Steam forum monitor.
	SteamAppID       string   `json:"steam_app_id"`
	MonitorUserIDs   []string `json:"monitor_user_ids"`
	MonitorIntervalS int      `json:"monitor_interval_seconds"`

	// Dashboard.
	JWTKey            string   `json:"jwt_key"`
	DashboardPassword string   `json:"dashboard_password"`
	AllowedOrigins    []string `json:"allowed_origins"`
}
