package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/barberflow/internal/logger"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(logger.ContextRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(logger.ContextRequestID, rid)
		c.Set(logger.ContextRequestID, rid)
		c.Next()
	}
}
