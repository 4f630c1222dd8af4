package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-receipts/app/factory"
	"github.com/vibast-solutions/ms-go-receipts/app/service"
	"github.com/vibast-solutions/ms-go-receipts/app/types"
)

func writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Success: false, Message: message})
}

// writeServiceError maps service sentinels onto HTTP statuses. Anything
// unmapped is logged with the request id and hidden behind a 500.
func writeServiceError(ctx echo.Context, logger *logrus.Entry, err error, logMessage string) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrProviderUnsupported):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPaymentNotFound):
		return writeError(ctx, http.StatusNotFound, "payment not found")
	case errors.Is(err, service.ErrReceiptNotFound):
		return writeError(ctx, http.StatusNotFound, "receipt not found")
	case errors.Is(err, service.ErrUserNotFound):
		return writeError(ctx, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrInvalidSignature):
		return writeError(ctx, http.StatusUnauthorized, "invalid signature")
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeError(ctx, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return writeError(ctx, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrPaymentNotCompleted):
		return writeError(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrGateway):
		factory.LoggerWithContext(logger, ctx).WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusInternalServerError, "payment gateway error")
	case errors.Is(err, service.ErrNotification):
		factory.LoggerWithContext(logger, ctx).WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusInternalServerError, err.Error())
	case errors.Is(err, service.ErrReminderNotLogged):
		factory.LoggerWithContext(logger, ctx).WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusInternalServerError, service.ErrReminderNotLogged.Error())
	default:
		factory.LoggerWithContext(logger, ctx).WithError(err).Error(logMessage)
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}
