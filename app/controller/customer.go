package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-receipts/app/factory"
	"github.com/vibast-solutions/ms-go-receipts/app/mapper"
	"github.com/vibast-solutions/ms-go-receipts/app/service"
	"github.com/vibast-solutions/ms-go-receipts/app/types"
)

type CustomerController struct {
	userService    *service.UserService
	paymentService *service.PaymentService
	links          linkSigner
	logger         *logrus.Entry
}

func NewCustomerController(userService *service.UserService, paymentService *service.PaymentService, links linkSigner) *CustomerController {
	return &CustomerController{
		userService:    userService,
		paymentService: paymentService,
		links:          links,
		logger:         factory.NewModuleLogger("customers-controller"),
	}
}

func (c *CustomerController) Login(ctx echo.Context) error {
	req, err := types.NewCustomerLoginRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	user, err := c.userService.LoginByMobile(ctx.Request().Context(), req.GetMobile())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Customer login failed")
	}

	resp := &types.UserResponse{Success: true, User: mapper.UserToType(user)}
	signCustomer(c.links, resp.User)
	return ctx.JSON(http.StatusOK, resp)
}

func (c *CustomerController) ListPayments(ctx echo.Context) error {
	req, err := types.NewCustomerPaymentsRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	if _, err := c.userService.GetUser(ctx.Request().Context(), req.GetUserId()); err != nil {
		return writeServiceError(ctx, c.logger, err, "Get customer failed")
	}
	items, total, err := c.paymentService.ListPayments(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "List customer payments failed")
	}

	payments := mapper.PaymentsToType(items)
	for _, payment := range payments {
		signPayment(c.links, payment)
	}

	return ctx.JSON(http.StatusOK, &types.ListPaymentsResponse{
		Success:  true,
		Payments: payments,
		Total:    total,
		Page:     pageOrDefault(req.GetPage()),
		Limit:    limitOrDefault(req.GetLimit()),
	})
}
