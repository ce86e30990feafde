package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-auth-service/internal/usecase/apiclient"
	apperrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/logger"
)

// APIKeyHeader is the header external systems authenticate with.
const APIKeyHeader = "X-API-Key"

// apiClientKey is the gin context key the validated client is stored
// under.
const apiClientKey = "api_client"

// APIKey authenticates external systems by their X-API-Key header. A
// missing key is a 401, an unknown or revoked key a 403. The validated
// client is stored in the gin context.
func APIKey(clients apiclient.Usecase, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, err := clients.ValidateKey(c.Request.Context(), c.GetHeader(APIKeyHeader))
		if err != nil {
			status := apperrors.StatusCode(err)
			label := "forbidden"
			message := err.Error()
			switch {
			case status == http.StatusUnauthorized:
				label = "unauthorized"
			case status >= http.StatusInternalServerError:
				logger.WithContext(c.Request.Context(), log).Error("api key validation failed", zap.Error(err))
				label = "internal_error"
				message = "An internal error occurred"
			}
			c.AbortWithStatusJSON(status, gin.H{
				"error":   label,
				"message": message,
			})
			return
		}

		c.Set(apiClientKey, client)
		c.Next()
	}
}

// SetAPIClient stores the client in the gin context the way APIKey
// does.
func SetAPIClient(c *gin.Context, client *apiclient.ClientResponse) {
	c.Set(apiClientKey, client)
}

// GetAPIClient returns the client stored by APIKey, if any.
func GetAPIClient(c *gin.Context) (*apiclient.ClientResponse, bool) {
	v, ok := c.Get(apiClientKey)
	if !ok {
		return nil, false
	}
	client, ok := v.(*apiclient.ClientResponse)
	return client, ok
}
