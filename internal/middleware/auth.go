// File: internal/middleware/auth.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inzerio_backend/internal/common"
	"inzerio_backend/internal/firebase"
)

// AuthMiddleware verifies the Firebase ID token from the Authorization
// header and stores the caller's UID in the request context.
func AuthMiddleware(fbService *firebase.FirebaseService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := common.GetTokenFromContext(c)
		if tokenString == "" {
			logger.Debug("Authorization header missing or malformed")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		token, err := fbService.VerifyIDToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Warn("ID token verification failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired token."))
			return
		}

		c.Set(common.UserIDKey, token.UID)

		logger.Debug("User authenticated successfully", zap.String("userID", token.UID))
		c.Next()
	}
}
