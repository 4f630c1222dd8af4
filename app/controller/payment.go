package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-receipts/app/access"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/factory"
	"github.com/vibast-solutions/ms-go-receipts/app/mapper"
	"github.com/vibast-solutions/ms-go-receipts/app/service"
	"github.com/vibast-solutions/ms-go-receipts/app/types"
)

type PaymentController struct {
	paymentService *service.PaymentService
	links          linkSigner
	logger         *logrus.Entry
}

func NewPaymentController(paymentService *service.PaymentService, links linkSigner) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		links:          links,
		logger:         factory.NewModuleLogger("payments-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *PaymentController) CreatePayment(ctx echo.Context) error {
	req, err := types.NewCreatePaymentRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.CreatePayment(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Create payment failed")
	}

	factory.LoggerWithContext(c.logger, ctx).WithFields(logrus.Fields{
		"payment_id": item.ID,
		"gateway":    item.Gateway,
	}).Info("payment_created")
	return ctx.JSON(http.StatusCreated, c.signedPayment(item))
}

func (c *PaymentController) CreateQRPayment(ctx echo.Context) error {
	req, err := types.NewCreateQRPaymentRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.CreateQRPayment(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Create QR payment failed")
	}

	return ctx.JSON(http.StatusCreated, c.signedPayment(item))
}

func (c *PaymentController) GetPayment(ctx echo.Context) error {
	req, err := types.NewGetPaymentRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.GetPayment(ctx.Request().Context(), req.GetId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Get payment failed")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentResponse{Success: true, Payment: mapper.PaymentToType(item)})
}

// RefreshPaymentStatus polls the gateway for a pending payment. It backs the
// return URL handed to the gateway.
func (c *PaymentController) RefreshPaymentStatus(ctx echo.Context) error {
	req, err := types.NewGetPaymentRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.RefreshPaymentStatus(ctx.Request().Context(), req.GetId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Refresh payment status failed")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentResponse{Success: true, Payment: mapper.PaymentToType(item)})
}

func (c *PaymentController) PaymentDetails(ctx echo.Context) error {
	req, err := types.NewPaymentDetailsRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	details, err := c.paymentService.GetPaymentDetails(ctx.Request().Context(), req.GetOrderId(), req.GetPaymentId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Get payment details failed")
	}
	if err := c.links.Verify(linkToken(ctx), access.ScopePayment, details.Payment.ID); err != nil {
		return writeError(ctx, http.StatusUnauthorized, err.Error())
	}

	resp := &types.PaymentDetailsResponse{
		Success: true,
		Payment: mapper.PaymentToType(details.Payment),
		User:    mapper.UserToType(details.User),
		Receipt: mapper.ReceiptToType(details.Receipt),
	}
	signReceipt(c.links, resp.Receipt)
	return ctx.JSON(http.StatusOK, resp)
}

func (c *PaymentController) SubmitUTR(ctx echo.Context) error {
	req, err := types.NewSubmitUTRRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.SubmitUTR(ctx.Request().Context(), req.GetId(), req.GetUtr())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Submit UTR failed")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentResponse{Success: true, Payment: mapper.PaymentToType(item)})
}

// HandleCallback accepts gateway webhooks. The gateway comes from the path.
func (c *PaymentController) HandleCallback(ctx echo.Context) error {
	return c.handleCallback(ctx, "")
}

// VerifyRazorpayPayment accepts the checkout handler payload posted by the
// browser after a Razorpay payment.
func (c *PaymentController) VerifyRazorpayPayment(ctx echo.Context) error {
	return c.handleCallback(ctx, entity.GatewayRazorpay)
}

func (c *PaymentController) handleCallback(ctx echo.Context, gateway string) error {
	req, err := types.NewHandleCallbackRequestFromContext(ctx, gateway)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.HandleCallback(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Handle gateway callback failed")
	}

	factory.LoggerWithContext(c.logger, ctx).WithFields(logrus.Fields{
		"payment_id": item.ID,
		"gateway":    req.GetGateway(),
		"status":     item.Status,
	}).Info("gateway_callback_processed")
	if gateway == "" {
		return ctx.JSON(http.StatusOK, &types.PaymentResponse{Success: true, Payment: mapper.PaymentToType(item)})
	}
	return ctx.JSON(http.StatusOK, c.signedPayment(item))
}

// signedPayment hands the caller that created or verified a payment the link
// token for reading it back.
func (c *PaymentController) signedPayment(item *entity.Payment) *types.PaymentResponse {
	payment := mapper.PaymentToType(item)
	signPayment(c.links, payment)
	return &types.PaymentResponse{Success: true, Payment: payment}
}
