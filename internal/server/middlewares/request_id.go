package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/session"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
	SessionIDHeader = "X-Session-ID"
	SessionIDKey    = "session_id"
)

func RequestIDMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header(RequestIDHeader, requestID)

		c.Set(RequestIDKey, requestID)

		c.Next()
	}
}

// SessionMiddleware resolves the client session. Unknown or malformed ids are replaced
// by a fresh one, echoed back so the client can reuse it.
func SessionMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionIDHeader)
		if _, err := uuid.Parse(sessionID); err != nil {
			if sessionID != "" {
				logger.Debug("Replacing malformed session id", zap.String("session_id", sessionID))
			}
			sessionID = session.NewID()
		}

		c.Header(SessionIDHeader, sessionID)

		c.Set(SessionIDKey, sessionID)

		c.Next()
	}
}
