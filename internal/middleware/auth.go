// File: internal/middleware/auth.go
package middleware

import (
	"errors"

	"crm_gateway_backend/internal/common"
	"crm_gateway_backend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ClientKeyHeader carries the opaque key each browser uses to address its
	// server-side session slot. It replaces the SPA's browser-storage slot.
	ClientKeyHeader = "X-Client-Key"

	clientKeyContextKey = "clientKey"
	sessionContextKey   = "session"
)

// ClientKey ensures every request carries a client key. A fresh key is minted
// and echoed back when the browser has none yet.
func ClientKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(ClientKeyHeader)
		if key == "" {
			key = uuid.NewString()
		}
		c.Header(ClientKeyHeader, key)
		c.Set(clientKeyContextKey, key)
		c.Next()
	}
}

// GetClientKey returns the client key set by the ClientKey middleware.
func GetClientKey(c *gin.Context) string {
	return c.GetString(clientKeyContextKey)
}

// AuthMiddleware resolves the caller's session and rejects requests without
// one. Handlers behind it can rely on GetSession returning a snapshot.
func AuthMiddleware(repo session.Repository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GetClientKey(c)
		sess, err := repo.Get(c.Request.Context(), key)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				logger.Error("Failed to load session", zap.Error(err), zap.String("client_key", key))
				common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not load session."))
				return
			}
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Please log in to continue."))
			return
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// GetSession returns the session snapshot stored by AuthMiddleware, or nil.
func GetSession(c *gin.Context) *session.Session {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil
	}
	sess, ok := value.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}
