package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/masterchef/backend/internal/apperrors"
)

// ErrorHandler writes the JSON body for errors handlers attached with
// c.Error and did not respond to themselves
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status := apperrors.HTTPStatus(err)

		fields := []zap.Field{
			zap.String("request_id", RequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.String("code", string(apperrors.KindOf(err))),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}

		if !c.Writer.Written() {
			c.JSON(status, apperrors.ToResponse(err))
		}
	}
}

// Recovery turns a panic into a 500 JSON response
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.String("request_id", RequestID(c)),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.Response{
					Message: "internal server error",
					Code:    apperrors.Internal,
				})
			}
		}()
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperrors.HTTPStatus(err), apperrors.ToResponse(err))
}
