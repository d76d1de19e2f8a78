package middleware

import (
	"net/http"

	"study_garden/pkg/auth"
	"study_garden/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const UserIDKey = "user_id"

// RequireUser resolves the authenticated Telegram user into the user id that
// scopes every task and ledger operation.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		telegramUser, ok := auth.UserFromContext(c)
		if !ok {
			log.Error("telegram user data not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if telegramUser.ID <= 0 {
			log.Info("rejected request without user id", zap.String("username", telegramUser.Username))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user id is required"})
			return
		}

		c.Set(UserIDKey, telegramUser.ID)
		c.Next()
	}
}

// UserID returns the id set by RequireUser.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(UserIDKey)
}
