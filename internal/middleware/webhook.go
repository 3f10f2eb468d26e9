package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barberflow/internal/httperr"
)

const WebhookTokenHeader = "X-Webhook-Token"

// WebhookToken requires the shared n8n token. An empty token disables the
// check.
func WebhookToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := c.GetHeader(WebhookTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			httperr.Unauthorized(c, "invalid_webhook_token", "Token do webhook inválido.")
			c.Abort()
			return
		}
		c.Next()
	}
}
