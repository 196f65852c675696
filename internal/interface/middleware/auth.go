package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-catalog-api/internal/application"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/helpers"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/response"
)

const CtxUserIDKey = "userID"

// Auth authorizes the request's session token and sets userID in the Gin
// context. A missing token is 403, an invalid or expired one 401.
func Auth(svc *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := svc.Authorize(c.Request.Context(), TokenFromRequest(c))
		switch {
		case errors.Is(err, application.ErrTokenMissing):
			response.Abort(c, http.StatusForbidden, "Token missing", nil)
			return
		case err != nil:
			response.Abort(c, http.StatusUnauthorized, "Invalid token", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

// TokenFromRequest looks at the Authorization header first ("Bearer <t>" or
// the bare token) and falls back to the access_token cookie.
func TokenFromRequest(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		scheme, rest, _ := strings.Cut(h, " ")
		if strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(rest)
		}
		return h
	}
	if tok, err := c.Cookie(helpers.AccessTokenCookie); err == nil {
		return tok
	}
	return ""
}
