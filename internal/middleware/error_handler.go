package middleware

import (
	"net/http"
	"time"

	"cajacontrol/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var respuestaErrorInterno = apierror.New("Error interno del servidor")

// ErrorHandler drains errors attached to the gin context after the chain ran
// and answers with the generic 500 envelope. Driver messages and stack traces
// stay in the log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if last := c.Errors.Last(); last != nil {
			log.Error().
				Err(last.Err).
				Str("request_id", c.GetString(RequestIDKey)).
				Str("method", c.Request.Method).
				Str("path", c.FullPath()).
				Msg("unhandled error")
			c.AbortWithStatusJSON(http.StatusInternalServerError, respuestaErrorInterno)
		}
	}
}

// Recovery turns a panic anywhere down the chain into a logged 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("request_id", c.GetString(RequestIDKey)).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, respuestaErrorInterno)
			}
		}()
		c.Next()
	}
}

// Logger emits one structured line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		inicio := time.Now()
		c.Next()
		log.Info().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(inicio)).
			Msg("request")
	}
}
