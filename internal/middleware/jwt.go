package middleware

import (
	"net/http"
	"strings"

	"github.com/MaksymY11/mates-backend/internal/constants"
	"github.com/MaksymY11/mates-backend/internal/service"
	ctxutil "github.com/MaksymY11/mates-backend/pkg/context"
	"github.com/MaksymY11/mates-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type JWTMiddleware struct {
	authService *service.AuthService
}

func NewJWTMiddleware(authService *service.AuthService) *JWTMiddleware {
	return &JWTMiddleware{authService: authService}
}

// RequireAuth validates the bearer access token and stores the
// authenticated email in the request context. Validation is signature plus
// expiry only; the store is never consulted. Every failure mode returns the
// same generic 401.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.GetLogger().Warn("Missing Authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			unauthorized(c)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.GetLogger().Warn("Invalid Authorization header format",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			unauthorized(c)
			return
		}

		email, err := m.authService.Authorize(tokenParts[1])
		if err != nil {
			logger.GetLogger().Warn("Invalid or expired access token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			unauthorized(c)
			return
		}

		c.Set(constants.GinKeyUserEmail, email)
		c.Request = c.Request.WithContext(ctxutil.WithUserEmail(c.Request.Context(), email))

		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"message": "Unauthorized",
	})
	c.Abort()
}
