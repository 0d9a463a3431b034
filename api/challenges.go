package api

import (
	"net/http"
	"strconv"
	"time"

	"craftbot/challenge"
	"craftbot/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChallengeController struct {
	service *challenge.Service
	logger  *zap.Logger
}

func NewChallengeController(service *challenge.Service, logger *zap.Logger) *ChallengeController {
	return &ChallengeController{service: service, logger: logger}
}

func (cc *ChallengeController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/challenges", cc.list)
	group.GET("/challenges/active", cc.listActive)
	group.POST("/challenges", cc.start)
	group.PUT("/challenges/:id", cc.update)
	group.DELETE("/challenges/:id", cc.remove)
	group.POST("/challenges/:id/voting/start", cc.startVoting)
	group.POST("/challenges/:id/voting/end", cc.endVoting)
}

// parseDeadline accepts the bot's historical "YYYY-MM-DD HH:MM:SS"
// form (read as UTC) as well as RFC 3339.
func parseDeadline(value string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

type challengeView struct {
	ID               uint      `json:"id"`
	Theme            string    `json:"theme"`
	Description      string    `json:"description"`
	State            string    `json:"state"`
	SubmissionsClose time.Time `json:"submissionsClose"`
	VotingBegins     time.Time `json:"votingBegins"`
	VotingEnds       time.Time `json:"votingEnds"`
	ThreadID         string    `json:"threadId"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toChallengeView(c models.Challenge) challengeView {
	return challengeView{
		ID:               c.ID,
		Theme:            c.Theme,
		Description:      c.Description,
		State:            c.State,
		SubmissionsClose: c.SubmissionsClose,
		VotingBegins:     c.VotingBegins,
		VotingEnds:       c.VotingEnds,
		ThreadID:         c.ThreadID,
		IsActive:         c.Active,
		CreatedAt:        c.CreatedAt,
	}
}

func (cc *ChallengeController) list(c *gin.Context) {
	challenges, err := cc.service.ListChallenges(c.Request.Context())
	if err != nil {
		replyError(c, cc.logger, err)
		return
	}
	views := make([]challengeView, 0, len(challenges))
	for _, item := range challenges {
		views = append(views, toChallengeView(item))
	}
	c.JSON(http.StatusOK, views)
}

func (cc *ChallengeController) listActive(c *gin.Context) {
	challenges, err := cc.service.ListActiveChallenges(c.Request.Context())
	if err != nil {
		replyError(c, cc.logger, err)
		return
	}
	views := make([]challengeView, 0, len(challenges))
	for _, item := range challenges {
		views = append(views, toChallengeView(item))
	}
	c.JSON(http.StatusOK, views)
}

type startChallengeRequest struct {
	Theme            string `json:"theme" binding:"required"`
	Description      string `json:"description"`
	SubmissionsClose string `json:"submissionsClose" binding:"required"`
	VotingBegins     string `json:"votingBegins" binding:"required"`
	VotingEnds       string `json:"votingEnds" binding:"required"`
	ImageURL         string `json:"imageUrl"`
}

func (cc *ChallengeController) start(c *gin.Context) {
	var req startChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	submissionsClose, ok := parseDeadline(req.SubmissionsClose)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submissionsClose date"})
		return
	}
	votingBegins, ok := parseDeadline(req.VotingBegins)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid votingBegins date"})
		return
	}
	votingEnds, ok := parseDeadline(req.VotingEnds)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid votingEnds date"})
		return
	}

	created, err := cc.service.StartChallenge(c.Request.Context(), challenge.StartChallengeInput{
		ActorID:          memberID(c),
		Theme:            req.Theme,
		Description:      req.Description,
		SubmissionsClose: submissionsClose,
		VotingBegins:     votingBegins,
		VotingEnds:       votingEnds,
		ImageURL:         req.ImageURL,
	})
	if err != nil {
		replyError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toChallengeView(*created))
}

type updateChallengeRequest struct {
	Theme            *string `json:"theme"`
	Description      *string `json:"description"`
	SubmissionsClose *string `json:"submissionsClose"`
	VotingBegins     *string `json:"votingBegins"`
	VotingEnds       *string `json:"votingEnds"`
}

func (cc *ChallengeController) update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid challenge id"})
		return
	}
	var req updateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	update := challenge.ChallengeUpdate{Theme: req.Theme, Description: req.Description}
	for _, field := range []struct {
		raw  *string
		dest **time.Time
		name string
	}{
		{req.SubmissionsClose, &update.SubmissionsClose, "submissionsClose"},
		{req.VotingBegins, &update.VotingBegins, "votingBegins"},
		{req.VotingEnds, &update.VotingEnds, "votingEnds"},
	} {
		if field.raw == nil {
			continue
		}
		parsed, ok := parseDeadline(*field.raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + field.name + " date"})
			return
		}
		*field.dest = &parsed
	}

	if err := cc.service.UpdateChallenge(c.Request.Context(), memberID(c), uint(id), update); err != nil {
		replyError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Challenge has been updated successfully."})
}

func (cc *ChallengeController) remove(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid challenge id"})
		return
	}
	if err := cc.service.DeleteChallenge(c.Request.Context(), memberID(c), uint(id)); err != nil {
		replyError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Challenge has been deleted successfully."})
}

func (cc *ChallengeController) startVoting(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid challenge id"})
		return
	}
	if err := cc.service.StartVoting(c.Request.Context(), memberID(c), uint(id)); err != nil {
		replyError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Voting has been started!"})
}

type rankedView struct {
	SubmissionID uint   `json:"submissionId"`
	UserID       string `json:"userId"`
	ImageURL     string `json:"imageUrl"`
	Description  string `json:"description"`
	Votes        int    `json:"votes"`
}

func (cc *ChallengeController) endVoting(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid challenge id"})
		return
	}
	results, err := cc.service.EndVoting(c.Request.Context(), memberID(c), uint(id))
	if err != nil {
		replyError(c, cc.logger, err)
		return
	}

	top := make([]rankedView, 0, len(results.Top))
	for _, entry := range results.Top {
		top = append(top, rankedView{
			SubmissionID: entry.Submission.ID,
			UserID:       entry.Submission.UserID,
			ImageURL:     entry.Submission.ImageURL,
			Description:  entry.Submission.Description,
			Votes:        entry.Votes,
		})
	}
	c.JSON(http.StatusOK, gin.H{"message": "Voting has been ended and results have been posted.", "top": top})
}
