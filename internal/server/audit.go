package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// audit records an action taken through the API on the audit logger.
func audit(logger *zap.Logger, c *gin.Context, action, details string) {
	logger.Named("audit").Info(action,
		zap.String("details", details),
		zap.String("client_ip", c.ClientIP()),
		zap.String(requestIDKey, requestID(c)),
	)
}
