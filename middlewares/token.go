package middlewares

import (
	"context"
	"time"

	"craftbot/models"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionTTL = 24 * time.Hour

// GenerateToken issues a dashboard JWT for a moderator and records
// the backing session in Redis. Logging out deletes the session,
// which invalidates the token before its expiry.
func GenerateToken(ctx context.Context, rdb *redis.Client, cfg models.Config, memberID string, logger *zap.Logger) (string, error) {
	sessionID := uuid.New().String()

	if err := rdb.Set(ctx, "session:"+sessionID, memberID, sessionTTL).Err(); err != nil {
		logger.Error("failed to store session", zap.Error(err))
		return "", err
	}

	claims := &models.DashboardClaims{
		MemberID:  memberID,
		SessionID: sessionID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(sessionTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTKey))
}

// RevokeSession removes the Redis session backing a token.
func RevokeSession(ctx context.Context, rdb *redis.Client, sessionID string) error {
	return rdb.Del(ctx, "session:"+sessionID).Err()
}
