package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/klinova/klinova-api/pkg/logger"
)

// InternalErrorMessage is the only detail a caller ever sees for a 500.
const InternalErrorMessage = "Erreur interne du serveur"

// Recovery turns a panic into a generic 500. The stack goes to the log only.
func Recovery(base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.FromContext(c.Request.Context(), base).Errorw("panic recovered",
					"panic", r,
					"stack", string(debug.Stack()),
				)
				if c.Writer.Written() {
					c.Abort()
					return
				}
				if WantsJSON(c) {
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": InternalErrorMessage})
					return
				}
				c.Abort()
				c.String(http.StatusInternalServerError, InternalErrorMessage)
			}
		}()
		c.Next()
	}
}

// WantsJSON reports whether the caller asked for a JSON answer via Accept.
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(strings.ToLower(c.GetHeader("Accept")), "application/json")
}
