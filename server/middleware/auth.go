package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/voicegate/errors"
	"github.com/skillsenselab/voicegate/auth/session"
)

// SessionClaimsKey is the Gin context key holding verified session claims.
const SessionClaimsKey = "session_claims"

// SessionAuth returns a Gin middleware that requires a valid Bearer session
// token. Verified claims are stored in the Gin context under SessionClaimsKey.
func SessionAuth(sessions *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.Unauthorized("Authorization header required."))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, apperrors.Unauthorized("Invalid authorization header format."))
			return
		}

		claims, err := sessions.Verify(parts[1])
		if err != nil {
			appErr, ok := apperrors.AsAppError(err)
			if !ok {
				appErr = apperrors.InvalidToken()
			}
			abortWithError(c, appErr)
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Next()
	}
}

// SessionClaims extracts verified session claims from the Gin context.
func SessionClaims(c *gin.Context) (*session.Claims, bool) {
	v, ok := c.Get(SessionClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*session.Claims)
	return claims, ok
}

func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
