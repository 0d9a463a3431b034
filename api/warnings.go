package api

import (
	"net/http"
	"strconv"

	"craftbot/warnings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WarningController struct {
	service *warnings.Service
	logger  *zap.Logger
}

func NewWarningController(service *warnings.Service, logger *zap.Logger) *WarningController {
	return &WarningController{service: service, logger: logger}
}

func (wc *WarningController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/warnings/predefined", wc.listTemplates)
	group.POST("/warnings/predefined", wc.createTemplate)
	group.PUT("/warnings/predefined/:id", wc.updateTemplate)
	group.DELETE("/warnings/predefined/:id", wc.deleteTemplate)

	group.GET("/warnings/issued", wc.listIssued)
	group.POST("/warnings/issued", wc.issue)
	group.PUT("/warnings/issued/:id", wc.edit)
	group.DELETE("/warnings/issued/:id", wc.deleteIssued)
	group.DELETE("/warnings/user/:userId", wc.clearUser)
}

func (wc *WarningController) listTemplates(c *gin.Context) {
	templates, err := wc.service.ListTemplates(c.Request.Context())
	if err != nil {
		replyError(c, wc.logger, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

type templateRequest struct {
	Name string `json:"name" binding:"required"`
	Text string `json:"text" binding:"required"`
}

func (wc *WarningController) createTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	template, err := wc.service.CreateTemplate(c.Request.Context(), memberID(c), req.Name, req.Text)
	if err != nil {
		replyError(c, wc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

func (wc *WarningController) updateTemplate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}
	var req struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := wc.service.UpdateTemplate(c.Request.Context(), memberID(c), uint(id), req.Name, req.Text); err != nil {
		replyError(c, wc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template updated"})
}

func (wc *WarningController) deleteTemplate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}
	if err := wc.service.DeleteTemplate(c.Request.Context(), memberID(c), uint(id)); err != nil {
		replyError(c, wc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

func (wc *WarningController) listIssued(c *gin.Context) {
	if userID := c.Query("userId"); userID != "" {
		issued, err := wc.service.ListForUser(c.Request.Context(), userID)
		if err != nil {
			replyError(c, wc.logger, err)
			return
		}
		c.JSON(http.StatusOK, issued)
		return
	}
	issued, err := wc.service.ListAll(c.Request.Context())
	if err != nil {
		replyError(c, wc.logger, err)
		return
	}
	c.JSON(http.StatusOK, issued)
}

type issueRequest struct {
	UserID       string `json:"userId" binding:"required"`
	Reason       string `json:"reason"`
	PredefinedID *uint  `json:"predefinedId"`
	Notify       bool   `json:"notify"`
}

func (wc *WarningController) issue(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	warning, err := wc.service.Issue(c.Request.Context(), memberID(c), req.UserID, req.Reason, req.PredefinedID, req.Notify)
	if err != nil {
		replyError(c, wc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, warning)
}

func (wc *WarningController) edit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid warning id"})
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := wc.service.Edit(c.Request.Context(), memberID(c), uint(id), req.Reason); err != nil {
		replyError(c, wc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Warning updated"})
}

func (wc *WarningController) deleteIssued(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid warning id"})
		return
	}
	if err := wc.service.Delete(c.Request.Context(), memberID(c), uint(id)); err != nil {
		replyError(c, wc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Warning deleted"})
}

func (wc *WarningController) clearUser(c *gin.Context) {
	cleared, err := wc.service.ClearUser(c.Request.Context(), memberID(c), c.Param("userId"))
	if err != nil {
		replyError(c, wc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}
