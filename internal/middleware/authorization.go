package middleware

import (
	"net/http"

	"challenge75/internal/service"
	"challenge75/pkg/auth"
	"challenge75/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type Authorization struct {
	userService service.UserServiceI
}

func NewAuthorization(userService service.UserServiceI) *Authorization {
	return &Authorization{
		userService: userService,
	}
}

// RegisteredOnly rejects authenticated identities that never
// registered an account. The feed and day routes are participant-only
// surfaces; a valid Telegram token alone is not enough.
func (a *Authorization) RegisteredOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		userData, exists := c.Get(auth.ContextUserKey)
		if !exists {
			log.Error("telegram user data not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"kind": "NOT_AUTHENTICATED", "message": "not authenticated"})
			return
		}

		identity, ok := userData.(*auth.TelegramUserData)
		if !ok {
			log.Error("invalid type assertion for telegram user data")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"kind": "STORAGE_FAILURE", "message": "internal server error"})
			return
		}

		_, err := a.userService.GetUserByTelegramID(c.Request.Context(), identity.ID)
		if err != nil {
			log.Info("unregistered identity on participant endpoint",
				zap.Int64("telegram_id", identity.ID))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"kind": "FORBIDDEN", "message": "account not registered"})
			return
		}

		c.Next()
	}
}
