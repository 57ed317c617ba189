package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"quizcraft/services"
)

const actorKey = "actor"

// Authenticator resolves a bearer token to the calling user.
type Authenticator interface {
	Authenticate(token string) (*services.Actor, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// caller under "user_id" and "actor".
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		actor, err := auth.Authenticate(token)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			} else {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not verify token", "retryable": true})
			}
			c.Abort()
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets
// anonymous requests through otherwise.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if actor, err := auth.Authenticate(token); err == nil {
				setActor(c, actor)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated caller, or nil for anonymous requests.
func ActorFrom(c *gin.Context) *services.Actor {
	value, exists := c.Get(actorKey)
	if !exists {
		return nil
	}
	actor, _ := value.(*services.Actor)
	return actor
}

func setActor(c *gin.Context, actor *services.Actor) {
	c.Set("user_id", actor.UserID)
	c.Set(actorKey, actor)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
