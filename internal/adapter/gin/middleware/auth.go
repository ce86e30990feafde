package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-auth-service/internal/usecase/user"
	"user-auth-service/pkg/logger"
	"user-auth-service/pkg/token"
)

// actorKey is the gin context key the authenticated actor is stored
// under.
const actorKey = "auth_actor"

// Auth authenticates requests with a Bearer access token. On success
// the actor is stored in the gin context for handlers and the user id
// is added to the request context for log correlation. Refresh tokens
// are rejected here, they are only good for the refresh endpoint.
func Auth(tokens *token.Manager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authorization header must be 'Bearer <token>'",
			})
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			logger.WithContext(c.Request.Context(), log).Warn("access token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "could not validate credentials",
			})
			return
		}

		c.Set(actorKey, user.Actor{ID: claims.UserID, Role: claims.Role})

		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, strconv.FormatInt(claims.UserID, 10))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// SetActor stores the actor in the gin context the way Auth does.
func SetActor(c *gin.Context, actor user.Actor) {
	c.Set(actorKey, actor)
}

// GetActor returns the actor stored by Auth, if any.
func GetActor(c *gin.Context) (user.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return user.Actor{}, false
	}
	actor, ok := v.(user.Actor)
	return actor, ok
}

// RequireRole allows the request through only when the authenticated
// actor has one of the given roles. It must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "not enough permissions",
			})
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "not enough permissions",
		})
	}
}
