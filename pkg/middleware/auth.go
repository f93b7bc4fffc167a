package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/edumart/edumart-server-go/pkg/identity"
	"github.com/edumart/edumart-server-go/pkg/response"
	"github.com/edumart/edumart-server-go/pkg/types"
)

const userIDKey = "user_id"

// Auth validates the bearer token issued by the identity provider and loads
// the caller's user id into the request context. Requests reaching feature
// handlers always carry a validated user id.
func Auth(jwtSecret string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := userIDFromToken(c, jwtSecret)
		if err != nil {
			response.ErrorWithLog(logger, c, http.StatusUnauthorized, "Authentication required.", err)
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// OptionalAuth loads the user id when a valid token is present but lets
// anonymous requests through. Used by public course endpoints that unlock
// full video URLs for enrolled viewers.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := userIDFromToken(c, jwtSecret); err == nil {
			c.Set(userIDKey, userID)
		}
		c.Next()
	}
}

// RequireEducator gates educator-only operations on the role claim held by
// the external identity provider. The check is a pass-through string
// comparison; no local role model exists.
func RequireEducator(client *identity.Client, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.ErrorWithLog(logger, c, http.StatusUnauthorized, "Authentication required.", nil)
			c.Abort()
			return
		}

		role, err := client.GetUserRole(c.Request.Context(), userID)
		if err != nil {
			response.ErrorWithLog(logger, c, http.StatusBadGateway, "Failed to verify educator role.", err)
			c.Abort()
			return
		}

		if role != types.RoleEducator {
			response.ErrorWithLog(logger, c, http.StatusForbidden, "Unauthorized: educator role required.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID retrieves the authenticated user id from the context.
func GetUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}

func userIDFromToken(c *gin.Context, jwtSecret string) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("malformed authorization header")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token missing subject claim")
	}

	return subject, nil
}
