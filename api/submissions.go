package api

import (
	"net/http"
	"strconv"

	"craftbot/challenge"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SubmissionController struct {
	service *challenge.Service
	logger  *zap.Logger
}

func NewSubmissionController(service *challenge.Service, logger *zap.Logger) *SubmissionController {
	return &SubmissionController{service: service, logger: logger}
}

func (sc *SubmissionController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/submissions", sc.submit)
	group.GET("/submissions/mine", sc.mine)
	group.DELETE("/submissions/:id", sc.remove)
}

type submitRequest struct {
	UserID      string `json:"userId" binding:"required"`
	ImageURL    string `json:"imageUrl" binding:"required"`
	Description string `json:"description"`
}

func (sc *SubmissionController) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sub, updated, err := sc.service.Submit(c.Request.Context(), req.UserID, req.ImageURL, req.Description)
	if err != nil {
		replyError(c, sc.logger, err)
		return
	}

	message := "Your entry has been successfully submitted!"
	status := http.StatusCreated
	if updated {
		message = "Your previous submission has been successfully updated!"
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"message":      message,
		"submissionId": sub.ID,
		"finalized":    sub.Finalized,
	})
}

func (sc *SubmissionController) mine(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		userID = memberID(c)
	}

	sub, open, err := sc.service.MySubmission(c.Request.Context(), userID)
	if err != nil {
		replyError(c, sc.logger, err)
		return
	}
	if sub == nil {
		c.JSON(http.StatusOK, gin.H{
			"challengeId": open.ID,
			"theme":       open.Theme,
			"state":       open.State,
			"submission":  nil,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"challengeId": open.ID,
		"theme":       open.Theme,
		"state":       open.State,
		"submission": gin.H{
			"id":          sub.ID,
			"imageUrl":    sub.ImageURL,
			"description": sub.Description,
			"finalized":   sub.Finalized,
			"submittedAt": sub.CreatedAt,
		},
	})
}

func (sc *SubmissionController) remove(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}
	notify, _ := strconv.ParseBool(c.DefaultQuery("notify", "false"))

	if err := sc.service.DeleteSubmission(c.Request.Context(), memberID(c), uint(id), notify); err != nil {
		replyError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Submission has been deleted successfully."})
}
