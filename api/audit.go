package api

import (
	"net/http"
	"strconv"

	"craftbot/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuditController struct {
	store  storage.AuditStorage
	logger *zap.Logger
}

func NewAuditController(store storage.AuditStorage, logger *zap.Logger) *AuditController {
	return &AuditController{store: store, logger: logger}
}

func (ac *AuditController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/audit", ac.list)
}

func (ac *AuditController) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := ac.store.List(c.Request.Context(), limit)
	if err != nil {
		replyError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
