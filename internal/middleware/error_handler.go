package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stockpulse/internal/domain/dto"
	"github.com/guttosm/stockpulse/internal/logger"
)

// ErrorHandler turns errors attached with c.Error into a 500 JSON response
// when the handler did not write one itself.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}
	last := c.Errors.Last()
	logger.L().Error().Err(last.Err).Str("request_id", RequestIDFrom(c)).Str("path", c.Request.URL.Path).Msg("request failed")

	if c.Writer.Written() {
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", last.Err))
}

// AbortWithError stops the chain and writes the standard error envelope.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	AbortWithResponse(c, status, dto.NewErrorResponse(message, err))
}

// AbortWithResponse stops the chain and writes resp as JSON.
func AbortWithResponse(c *gin.Context, status int, resp dto.ErrorResponse) {
	logger.L().Debug().Str("request_id", RequestIDFrom(c)).Int("status", status).Str("error", resp.Error()).Msg("request aborted")
	c.AbortWithStatusJSON(status, resp)
}
