package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger logs one line per request. Server errors log at warn.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()

		var evt *zerolog.Event
		if status >= http.StatusInternalServerError {
			evt = log.Warn()
		} else {
			evt = log.Debug()
		}

		if last := c.Errors.Last(); last != nil {
			evt = evt.Err(last.Err)
		}

		evt.Dur("latency", time.Since(start)).
			Str("remote_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("uri", c.Request.RequestURI).
			Int("status", status).
			Msg("request")
	}
}
