package factory

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func NewModuleLogger(module string) *logrus.Entry {
	return logrus.WithField("module", module)
}

// LoggerWithContext attaches the request id, preferring the response header
// set by the request-id middleware.
func LoggerWithContext(logger *logrus.Entry, ctx echo.Context) *logrus.Entry {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if ctx == nil {
		return logger
	}

	requestID := strings.TrimSpace(ctx.Response().Header().Get(echo.HeaderXRequestID))
	if requestID == "" {
		requestID = strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
	}
	if requestID == "" {
		return logger
	}
	return logger.WithField("request_id", requestID)
}
