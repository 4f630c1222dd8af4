package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-receipts/app/factory"
	"github.com/vibast-solutions/ms-go-receipts/app/mapper"
	"github.com/vibast-solutions/ms-go-receipts/app/service"
	"github.com/vibast-solutions/ms-go-receipts/app/types"
	"github.com/vibast-solutions/ms-go-receipts/config"
)

type AdminController struct {
	adminService    *service.AdminService
	paymentService  *service.PaymentService
	receiptService  *service.ReceiptService
	userService     *service.UserService
	reminderService *service.ReminderService
	cfg             config.AdminConfig
	logger          *logrus.Entry
}

func NewAdminController(
	adminService *service.AdminService,
	paymentService *service.PaymentService,
	receiptService *service.ReceiptService,
	userService *service.UserService,
	reminderService *service.ReminderService,
	cfg config.AdminConfig,
) *AdminController {
	return &AdminController{
		adminService:    adminService,
		paymentService:  paymentService,
		receiptService:  receiptService,
		userService:     userService,
		reminderService: reminderService,
		cfg:             cfg,
		logger:          factory.NewModuleLogger("admin-controller"),
	}
}

// RequireAdmin resolves the bearer token into an admin session.
func (c *AdminController) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := bearerToken(ctx)
			if token == "" {
				return writeError(ctx, http.StatusUnauthorized, "unauthorized")
			}

			sess, err := c.adminService.Authenticate(ctx.Request().Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					return writeError(ctx, http.StatusUnauthorized, "unauthorized")
				}
				return writeServiceError(ctx, c.logger, err, "Admin authentication failed")
			}

			ctx.Set(adminSessionKey, sess)
			return next(ctx)
		}
	}
}

func (c *AdminController) Login(ctx echo.Context) error {
	req, err := types.NewAdminLoginRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	token, admin, err := c.adminService.Login(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			factory.LoggerWithContext(c.logger, ctx).WithField("ip", ctx.RealIP()).Warn("admin_login_rejected")
		}
		return writeServiceError(ctx, c.logger, err, "Admin login failed")
	}

	return ctx.JSON(http.StatusOK, &types.AdminLoginResponse{
		Success:   true,
		Token:     token,
		ExpiresIn: int64(c.cfg.SessionTTL.Seconds()),
		Admin:     mapper.AdminToType(admin),
	})
}

func (c *AdminController) Logout(ctx echo.Context) error {
	token := bearerToken(ctx)
	if token == "" {
		return writeError(ctx, http.StatusUnauthorized, "unauthorized")
	}
	if err := c.adminService.Logout(ctx.Request().Context(), token); err != nil {
		return writeServiceError(ctx, c.logger, err, "Admin logout failed")
	}
	return ctx.JSON(http.StatusOK, &types.MessageResponse{Success: true, Message: "Logged out"})
}

func (c *AdminController) Stats(ctx echo.Context) error {
	stats, err := c.adminService.Stats(ctx.Request().Context())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Load stats failed")
	}
	return ctx.JSON(http.StatusOK, mapper.StatsToType(stats))
}

func (c *AdminController) ListPayments(ctx echo.Context) error {
	req, err := types.NewListPaymentsRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, total, err := c.paymentService.ListPayments(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "List payments failed")
	}

	return ctx.JSON(http.StatusOK, &types.ListPaymentsResponse{
		Success:  true,
		Payments: mapper.PaymentsToType(items),
		Total:    total,
		Page:     pageOrDefault(req.GetPage()),
		Limit:    limitOrDefault(req.GetLimit()),
	})
}

func (c *AdminController) OverrideStatus(ctx echo.Context) error {
	req, err := types.NewOverrideStatusRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.OverrideStatus(ctx.Request().Context(), req.GetId(), req, adminActor(ctx))
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Override payment status failed")
	}

	factory.LoggerWithContext(c.logger, ctx).WithFields(logrus.Fields{
		"payment_id": item.ID,
		"status":     item.Status,
		"actor":      adminActor(ctx),
	}).Info("payment_status_overridden")
	return ctx.JSON(http.StatusOK, &types.PaymentResponse{Success: true, Payment: mapper.PaymentToType(item)})
}

func (c *AdminController) ApprovePayment(ctx echo.Context) error {
	req, err := types.NewGetPaymentRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.ApprovePayment(ctx.Request().Context(), req.GetId(), adminActor(ctx))
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Approve payment failed")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentResponse{Success: true, Payment: mapper.PaymentToType(item)})
}

func (c *AdminController) ResendReceipt(ctx echo.Context) error {
	req, err := types.NewGetPaymentRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.receiptService.ResendReceipt(ctx.Request().Context(), req.GetId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Resend receipt failed")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentResponse{Success: true, Payment: mapper.PaymentToType(item)})
}

func (c *AdminController) ListReceipts(ctx echo.Context) error {
	req, err := types.NewSearchRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	views, total, err := c.receiptService.ListReceipts(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "List receipts failed")
	}

	return ctx.JSON(http.StatusOK, &types.ListReceiptsResponse{
		Success:  true,
		Receipts: mapper.ReceiptViewsToType(views),
		Total:    total,
		Page:     pageOrDefault(req.GetPage()),
		Limit:    limitOrDefault(req.GetLimit()),
	})
}

func (c *AdminController) ListUsers(ctx echo.Context) error {
	req, err := types.NewSearchRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, total, err := c.userService.ListUsers(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "List users failed")
	}

	return ctx.JSON(http.StatusOK, &types.ListUsersResponse{
		Success: true,
		Users:   mapper.UsersToType(items),
		Total:   total,
		Page:    pageOrDefault(req.GetPage()),
		Limit:   limitOrDefault(req.GetLimit()),
	})
}

func (c *AdminController) CreateUser(ctx echo.Context) error {
	req, err := types.NewCreateUserRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	user, err := c.userService.FindOrCreate(ctx.Request().Context(), service.CustomerDetails{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Create user failed")
	}

	return ctx.JSON(http.StatusOK, &types.UserResponse{Success: true, User: mapper.UserToType(user)})
}

// SendReminder answers 200 with success=false when the channel fails; the
// reminder is logged either way.
func (c *AdminController) SendReminder(ctx echo.Context) error {
	req, err := types.NewSendReminderRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.reminderService.SendReminder(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Send reminder failed")
	}
	if !result.Delivered {
		factory.LoggerWithContext(c.logger, ctx).WithFields(logrus.Fields{
			"payment_id": req.GetPaymentId(),
			"channel":    req.GetChannel(),
			"error":      result.Message,
		}).Warn("reminder_delivery_failed")
	}

	return ctx.JSON(http.StatusOK, &types.ReminderResponse{
		Success:  result.Delivered,
		Message:  result.Message,
		Reminder: mapper.ReminderToType(result.Reminder),
	})
}

func (c *AdminController) ListReminders(ctx echo.Context) error {
	req, err := types.NewListRemindersRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.reminderService.ListReminders(ctx.Request().Context(), req.GetPaymentId(), req.GetLimit())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "List reminders failed")
	}

	return ctx.JSON(http.StatusOK, &types.ListRemindersResponse{Success: true, Reminders: mapper.RemindersToType(items)})
}

func (c *AdminController) DirectReceipt(ctx echo.Context) error {
	req, err := types.NewDirectReceiptRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.receiptService.GenerateDirectReceipt(ctx.Request().Context(), req, adminActor(ctx))
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Generate direct receipt failed")
	}

	return ctx.JSON(http.StatusOK, &types.DirectReceiptResponse{
		Success:       true,
		Message:       "Receipt generated and sent successfully",
		ReceiptNumber: result.ReceiptNumber,
	})
}
