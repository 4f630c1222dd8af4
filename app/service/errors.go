package service

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrReceiptNotFound     = errors.New("receipt not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrGateway             = errors.New("gateway error")
	ErrConflict            = errors.New("conflict")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrProviderUnsupported = errors.New("provider is not supported")
	ErrPaymentNotCompleted = errors.New("payment is not completed")
	ErrNotification        = errors.New("notification failed")
	ErrReminderNotLogged   = errors.New("Failed to log reminder")
	ErrInvalidCredentials  = errors.New("Invalid credentials")
	ErrUnauthorized        = errors.New("unauthorized")
)
