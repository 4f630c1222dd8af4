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

const mimeApplicationPDF = "application/pdf"

type ReceiptController struct {
	receiptService *service.ReceiptService
	links          linkSigner
	logger         *logrus.Entry
}

func NewReceiptController(receiptService *service.ReceiptService, links linkSigner) *ReceiptController {
	return &ReceiptController{
		receiptService: receiptService,
		links:          links,
		logger:         factory.NewModuleLogger("receipts-controller"),
	}
}

func (c *ReceiptController) GetReceipt(ctx echo.Context) error {
	req, err := types.NewGetReceiptRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	view, err := c.receiptService.GetReceipt(ctx.Request().Context(), req.GetId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Get receipt failed")
	}

	return ctx.JSON(http.StatusOK, receiptResponse(view))
}

func (c *ReceiptController) DownloadReceiptPDF(ctx echo.Context) error {
	req, err := types.NewGetReceiptRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	view, pdf, err := c.receiptService.RenderReceiptPDF(ctx.Request().Context(), req.GetId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Render receipt failed")
	}

	return writePDF(ctx, view.Receipt.ReceiptNumber, pdf)
}

func (c *ReceiptController) EmailReceipt(ctx echo.Context) error {
	req, err := types.NewGetReceiptRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	if _, err := c.receiptService.EmailReceipt(ctx.Request().Context(), req.GetId()); err != nil {
		return writeServiceError(ctx, c.logger, err, "Email receipt failed")
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{Success: true, Message: "Receipt sent successfully"})
}

// EnsurePaymentReceipt issues the receipt of a completed payment on first use.
func (c *ReceiptController) EnsurePaymentReceipt(ctx echo.Context) error {
	req, err := types.NewEnsureReceiptRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	receipt, err := c.receiptService.EnsureReceipt(ctx.Request().Context(), req.GetPaymentId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Ensure receipt failed")
	}
	view, err := c.receiptService.GetReceipt(ctx.Request().Context(), receipt.ID)
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Get receipt failed")
	}

	resp := receiptResponse(view)
	signReceipt(c.links, resp.Receipt)
	return ctx.JSON(http.StatusOK, resp)
}

func (c *ReceiptController) DownloadPaymentReceiptPDF(ctx echo.Context) error {
	req, err := types.NewEnsureReceiptRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	view, pdf, err := c.receiptService.EnsureReceiptPDF(ctx.Request().Context(), req.GetPaymentId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Render receipt failed")
	}

	return writePDF(ctx, view.Receipt.ReceiptNumber, pdf)
}

func receiptResponse(view *service.ReceiptView) *types.ReceiptResponse {
	return &types.ReceiptResponse{
		Success: true,
		Receipt: mapper.ReceiptToType(view.Receipt),
		Payment: mapper.PaymentToType(view.Payment),
		User:    mapper.UserToType(view.User),
	}
}

func writePDF(ctx echo.Context, receiptNumber string, pdf []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+receiptNumber+`.pdf"`)
	return ctx.Blob(http.StatusOK, mimeApplicationPDF, pdf)
}
