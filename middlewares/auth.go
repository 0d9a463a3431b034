package middlewares

import (
	"net/http"
	"strings"

	"craftbot/models"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Context keys set for downstream handlers.
const (
	ContextMemberID  = "memberID"
	ContextSessionID = "sessionID"
)

// AuthRequired validates the Bearer token and its backing Redis
// session, then exposes the member id to the handler.
func AuthRequired(rdb *redis.Client, cfg models.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if strings.HasPrefix(tokenString, "Bearer ") {
			tokenString = strings.TrimPrefix(tokenString, "Bearer ")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
			return
		}

		claims := &models.DashboardClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTKey), nil
		})
		if err != nil || !token.Valid {
			logger.Error("failed to validate dashboard token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if _, err := rdb.Get(c.Request.Context(), "session:"+claims.SessionID).Result(); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			return
		}

		c.Set(ContextMemberID, claims.MemberID)
		c.Set(ContextSessionID, claims.SessionID)
		c.Next()
	}
}
