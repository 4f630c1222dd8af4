package types

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const (
	maxPageLimit    = 100
	maxCallbackBody = 1 << 20
)

var minimumAmount = decimal.NewFromInt(1)

func NewCreatePaymentRequestFromContext(ctx echo.Context) (*CreatePaymentRequest, error) {
	var body CreatePaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	body.Phone = strings.TrimSpace(body.Phone)
	body.Address = strings.TrimSpace(body.Address)
	body.PaymentMode = strings.ToLower(strings.TrimSpace(body.PaymentMode))
	body.Gateway = strings.ToLower(strings.TrimSpace(body.Gateway))
	body.ServiceType = strings.TrimSpace(body.ServiceType)
	body.ReturnUrl = strings.TrimSpace(body.ReturnUrl)

	return &body, nil
}

func (r *CreatePaymentRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.GetAmount().LessThan(minimumAmount) {
		return errors.New("amount must be at least 1")
	}
	switch r.GetGateway() {
	case "", "razorpay", "cashfree", "phonepe":
	default:
		return errors.New("gateway must be razorpay, cashfree or phonepe")
	}
	return nil
}

func NewCreateQRPaymentRequestFromContext(ctx echo.Context) (*CreateQRPaymentRequest, error) {
	var body CreateQRPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	body.Phone = strings.TrimSpace(body.Phone)
	body.Address = strings.TrimSpace(body.Address)
	body.ServiceType = strings.TrimSpace(body.ServiceType)
	body.Utr = strings.TrimSpace(body.Utr)

	return &body, nil
}

func (r *CreateQRPaymentRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.GetAmount().LessThan(minimumAmount) {
		return errors.New("amount must be at least 1")
	}
	return nil
}

func NewGetPaymentRequestFromContext(ctx echo.Context) (*GetPaymentRequest, error) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	return &GetPaymentRequest{Id: id}, nil
}

func (r *GetPaymentRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid payment id")
	}
	return nil
}

func NewListPaymentsRequestFromContext(ctx echo.Context) (*ListPaymentsRequest, error) {
	req := &ListPaymentsRequest{
		Status:  strings.ToLower(strings.TrimSpace(ctx.QueryParam("status"))),
		Gateway: strings.ToLower(strings.TrimSpace(ctx.QueryParam("gateway"))),
	}

	var err error
	if req.UserId, err = parseUintQuery(ctx, "user_id"); err != nil {
		return nil, err
	}
	if req.Page, req.Limit, err = parsePaging(ctx); err != nil {
		return nil, err
	}

	return req, nil
}

// NewCustomerPaymentsRequestFromContext scopes the listing to the customer in
// the path.
func NewCustomerPaymentsRequestFromContext(ctx echo.Context) (*ListPaymentsRequest, error) {
	req, err := NewListPaymentsRequestFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.UserId, err = parseIDParam(ctx, "id"); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *ListPaymentsRequest) Validate() error {
	return validatePaging(r.GetPage(), r.GetLimit())
}

func NewPaymentDetailsRequestFromContext(ctx echo.Context) (*PaymentDetailsRequest, error) {
	req := &PaymentDetailsRequest{
		OrderId:   firstQueryParam(ctx, "order_id", "orderId"),
		PaymentId: firstQueryParam(ctx, "payment_id", "paymentId"),
	}
	return req, nil
}

func (r *PaymentDetailsRequest) Validate() error {
	if r.GetOrderId() == "" && r.GetPaymentId() == "" {
		return errors.New("order_id or payment_id is required")
	}
	return nil
}

func NewSubmitUTRRequestFromContext(ctx echo.Context) (*SubmitUTRRequest, error) {
	var body SubmitUTRRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	body.Id = id
	body.Utr = strings.TrimSpace(body.Utr)

	return &body, nil
}

func (r *SubmitUTRRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid payment id")
	}
	if r.GetUtr() == "" {
		return errors.New("utr is required")
	}
	return nil
}

// NewHandleCallbackRequestFromContext keeps the raw body untouched, since the
// gateway signature covers the exact bytes.
func NewHandleCallbackRequestFromContext(ctx echo.Context, gateway string) (*HandleCallbackRequest, error) {
	gateway = strings.ToLower(strings.TrimSpace(gateway))
	if gateway == "" {
		gateway = strings.ToLower(strings.TrimSpace(ctx.Param("gateway")))
	}

	payload, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxCallbackBody))
	if err != nil {
		return nil, err
	}

	return &HandleCallbackRequest{
		Gateway:   gateway,
		Signature: callbackSignature(ctx, gateway),
		Payload:   string(payload),
	}, nil
}

func (r *HandleCallbackRequest) Validate() error {
	if r.GetGateway() == "" {
		return errors.New("gateway is required")
	}
	if strings.TrimSpace(r.GetPayload()) == "" {
		return errors.New("payload is required")
	}
	return nil
}

func callbackSignature(ctx echo.Context, gateway string) string {
	header := ctx.Request().Header
	switch gateway {
	case "cashfree":
		return strings.TrimSpace(header.Get("x-webhook-signature"))
	case "phonepe":
		return strings.TrimSpace(header.Get("X-VERIFY"))
	case "razorpay":
		return strings.TrimSpace(header.Get("X-Razorpay-Signature"))
	default:
		return ""
	}
}

func NewGetReceiptRequestFromContext(ctx echo.Context) (*GetReceiptRequest, error) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	return &GetReceiptRequest{Id: id}, nil
}

func (r *GetReceiptRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid receipt id")
	}
	return nil
}

func NewEnsureReceiptRequestFromContext(ctx echo.Context) (*EnsureReceiptRequest, error) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	return &EnsureReceiptRequest{PaymentId: id}, nil
}

func (r *EnsureReceiptRequest) Validate() error {
	if r.GetPaymentId() == 0 {
		return errors.New("invalid payment id")
	}
	return nil
}

func NewSearchRequestFromContext(ctx echo.Context) (*SearchRequest, error) {
	req := &SearchRequest{Search: strings.TrimSpace(ctx.QueryParam("search"))}

	var err error
	if req.Page, req.Limit, err = parsePaging(ctx); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *SearchRequest) Validate() error {
	return validatePaging(r.GetPage(), r.GetLimit())
}

func NewCreateUserRequestFromContext(ctx echo.Context) (*CreateUserRequest, error) {
	var body CreateUserRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	body.Phone = strings.TrimSpace(body.Phone)
	body.Address = strings.TrimSpace(body.Address)

	return &body, nil
}

func (r *CreateUserRequest) Validate() error {
	return validateStruct(r)
}

func NewCustomerLoginRequestFromContext(ctx echo.Context) (*CustomerLoginRequest, error) {
	var body CustomerLoginRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Mobile = strings.TrimSpace(body.Mobile)
	return &body, nil
}

func (r *CustomerLoginRequest) Validate() error {
	if r.GetMobile() == "" {
		return errors.New("mobile is required")
	}
	if !IsValidPhone(r.GetMobile()) {
		return errors.New("mobile is invalid")
	}
	return nil
}

// NewAdminLoginRequestFromContext accepts the login name as identifier,
// username or email.
func NewAdminLoginRequestFromContext(ctx echo.Context) (*AdminLoginRequest, error) {
	var body struct {
		Identifier string `json:"identifier"`
		Username   string `json:"username"`
		Email      string `json:"email"`
		Password   string `json:"password"`
	}
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	identifier := strings.TrimSpace(body.Identifier)
	if identifier == "" {
		identifier = strings.TrimSpace(body.Username)
	}
	if identifier == "" {
		identifier = strings.TrimSpace(body.Email)
	}

	return &AdminLoginRequest{Identifier: identifier, Password: body.Password}, nil
}

func (r *AdminLoginRequest) Validate() error {
	if r.GetIdentifier() == "" || r.GetPassword() == "" {
		return errors.New("username and password are required")
	}
	return nil
}

func NewOverrideStatusRequestFromContext(ctx echo.Context) (*OverrideStatusRequest, error) {
	var body OverrideStatusRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	body.Id = id
	body.Status = strings.ToLower(strings.TrimSpace(body.Status))
	body.Reason = strings.TrimSpace(body.Reason)

	return &body, nil
}

func (r *OverrideStatusRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid payment id")
	}
	switch r.GetStatus() {
	case "pending", "completed", "failed", "cancelled":
		return nil
	default:
		return errors.New("status must be pending, completed, failed or cancelled")
	}
}

func NewSendReminderRequestFromContext(ctx echo.Context) (*SendReminderRequest, error) {
	var body SendReminderRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Channel = strings.ToLower(strings.TrimSpace(body.Channel))
	body.Message = strings.TrimSpace(body.Message)
	return &body, nil
}

func (r *SendReminderRequest) Validate() error {
	if r.GetPaymentId() == 0 || r.GetChannel() == "" || r.GetMessage() == "" {
		return errors.New("Missing required fields")
	}
	return nil
}

func NewListRemindersRequestFromContext(ctx echo.Context) (*ListRemindersRequest, error) {
	paymentID, err := parseUintQuery(ctx, "payment_id")
	if err != nil {
		return nil, err
	}
	limit, err := parseInt32Query(ctx, "limit")
	if err != nil {
		return nil, err
	}
	return &ListRemindersRequest{PaymentId: paymentID, Limit: limit}, nil
}

func (r *ListRemindersRequest) Validate() error {
	if r.GetPaymentId() == 0 {
		return errors.New("payment_id is required")
	}
	if r.GetLimit() < 0 || r.GetLimit() > maxPageLimit {
		return errors.New("limit must be between 1 and 100")
	}
	return nil
}

func NewDirectReceiptRequestFromContext(ctx echo.Context) (*DirectReceiptRequest, error) {
	var body DirectReceiptRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.ProjectName = strings.TrimSpace(body.ProjectName)
	body.CustomerName = strings.TrimSpace(body.CustomerName)
	body.CustomerEmail = strings.ToLower(strings.TrimSpace(body.CustomerEmail))
	body.CustomerPhone = strings.TrimSpace(body.CustomerPhone)
	body.CustomerAddress = strings.TrimSpace(body.CustomerAddress)
	body.PaymentMode = strings.TrimSpace(body.PaymentMode)
	body.ServiceType = strings.TrimSpace(body.ServiceType)
	body.Description = strings.TrimSpace(body.Description)
	body.ReceiptNumber = strings.TrimSpace(body.ReceiptNumber)

	return &body, nil
}

func (r *DirectReceiptRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if !r.GetAmount().IsPositive() {
		return errors.New("amount must be > 0")
	}
	return nil
}

func parseIDParam(ctx echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(ctx.Param(name)), 10, 64)
}

func parseUintQuery(ctx echo.Context, name string) (uint64, error) {
	raw := strings.TrimSpace(ctx.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func parseInt32Query(ctx echo.Context, name string) (int32, error) {
	raw := strings.TrimSpace(ctx.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func parsePaging(ctx echo.Context) (int32, int32, error) {
	page, err := parseInt32Query(ctx, "page")
	if err != nil {
		return 0, 0, err
	}
	limit, err := parseInt32Query(ctx, "limit")
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func validatePaging(page, limit int32) error {
	if page < 0 {
		return errors.New("page must be >= 1")
	}
	if limit < 0 || limit > maxPageLimit {
		return errors.New("limit must be between 1 and 100")
	}
	return nil
}

func firstQueryParam(ctx echo.Context, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(ctx.QueryParam(name)); v != "" {
			return v
		}
	}
	return ""
}
