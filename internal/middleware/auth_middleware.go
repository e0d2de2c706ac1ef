package middleware

import (
	"strings"

	autherrors "go-hrms/internal/auth/errors"
	"go-hrms/internal/auth/token"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthMiddleware validates the bearer access token and stores the principal
// on the request context.
func AuthMiddleware(tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.AbortWithError(c, autherrors.ErrTokenNotFound)
			return
		}

		claims, err := tokens.Parse(tokenString, token.TypeAccess)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.AbortWithError(c, autherrors.ErrInvalidToken)
			return
		}

		ctx := contextutil.WithPrincipal(c.Request.Context(), contextutil.Principal{
			UserID:      userID,
			IsSuperuser: claims.IsSuperuser,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", userID.String())

		c.Next()
	}
}
