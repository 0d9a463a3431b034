package api

import (
	"crypto/subtle"
	"net/http"

	"craftbot/middlewares"
	"craftbot/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type AuthController struct {
	rdb    *redis.Client
	cfg    models.Config
	logger *zap.Logger
}

func NewAuthController(rdb *redis.Client, cfg models.Config, logger *zap.Logger) *AuthController {
	return &AuthController{rdb: rdb, cfg: cfg, logger: logger}
}

func (a *AuthController) RegisterRoutes(engine *gin.Engine, authed *gin.RouterGroup) {
	engine.POST("/api/auth/login", a.login)
	authed.POST("/auth/logout", a.logout)
}

type loginRequest struct {
	MemberID string `json:"memberId"`
	Password string `json:"password"`
}

// login exchanges the shared dashboard password and the moderator's
// member id for a JWT. Role enforcement happens per operation, not
// here; the password only keeps strangers off the API.
func (a *AuthController) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.MemberID == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.cfg.DashboardPassword)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := middlewares.GenerateToken(c.Request.Context(), a.rdb, a.cfg, req.MemberID, a.logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (a *AuthController) logout(c *gin.Context) {
	sessionID := c.GetString(middlewares.ContextSessionID)
	if err := middlewares.RevokeSession(c.Request.Context(), a.rdb, sessionID); err != nil {
		a.logger.Error("failed to revoke session", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
