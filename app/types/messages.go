package types

import "github.com/shopspring/decimal"

type CreatePaymentRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Email       string          `json:"email" validate:"required,email,max=255"`
	Phone       string          `json:"phone" validate:"required,phone"`
	Address     string          `json:"address" validate:"max=1024"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentMode string          `json:"paymentMode" validate:"required"`
	Gateway     string          `json:"gateway"`
	ServiceType string          `json:"serviceType" validate:"max=255"`
	ReturnUrl   string          `json:"returnUrl" validate:"omitempty,url"`
}

func (r *CreatePaymentRequest) GetName() string            { return r.Name }
func (r *CreatePaymentRequest) GetEmail() string           { return r.Email }
func (r *CreatePaymentRequest) GetPhone() string           { return r.Phone }
func (r *CreatePaymentRequest) GetAddress() string         { return r.Address }
func (r *CreatePaymentRequest) GetAmount() decimal.Decimal { return r.Amount }
func (r *CreatePaymentRequest) GetPaymentMode() string     { return r.PaymentMode }
func (r *CreatePaymentRequest) GetGateway() string         { return r.Gateway }
func (r *CreatePaymentRequest) GetServiceType() string     { return r.ServiceType }
func (r *CreatePaymentRequest) GetReturnUrl() string       { return r.ReturnUrl }

type CreateQRPaymentRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Email       string          `json:"email" validate:"required,email,max=255"`
	Phone       string          `json:"phone" validate:"required,phone"`
	Address     string          `json:"address" validate:"max=1024"`
	Amount      decimal.Decimal `json:"amount"`
	ServiceType string          `json:"serviceType" validate:"max=255"`
	Utr         string          `json:"utr"`
}

func (r *CreateQRPaymentRequest) GetName() string            { return r.Name }
func (r *CreateQRPaymentRequest) GetEmail() string           { return r.Email }
func (r *CreateQRPaymentRequest) GetPhone() string           { return r.Phone }
func (r *CreateQRPaymentRequest) GetAddress() string         { return r.Address }
func (r *CreateQRPaymentRequest) GetAmount() decimal.Decimal { return r.Amount }
func (r *CreateQRPaymentRequest) GetServiceType() string     { return r.ServiceType }
func (r *CreateQRPaymentRequest) GetUtr() string             { return r.Utr }

type GetPaymentRequest struct {
	Id uint64 `json:"id"`
}

func (r *GetPaymentRequest) GetId() uint64 {
	if r == nil {
		return 0
	}
	return r.Id
}

type ListPaymentsRequest struct {
	UserId  uint64 `json:"userId"`
	Status  string `json:"status"`
	Gateway string `json:"gateway"`
	Page    int32  `json:"page"`
	Limit   int32  `json:"limit"`
}

func (r *ListPaymentsRequest) GetUserId() uint64  { return r.UserId }
func (r *ListPaymentsRequest) GetStatus() string  { return r.Status }
func (r *ListPaymentsRequest) GetGateway() string { return r.Gateway }
func (r *ListPaymentsRequest) GetPage() int32     { return r.Page }
func (r *ListPaymentsRequest) GetLimit() int32    { return r.Limit }

type PaymentDetailsRequest struct {
	OrderId   string `json:"orderId"`
	PaymentId string `json:"paymentId"`
}

func (r *PaymentDetailsRequest) GetOrderId() string   { return r.OrderId }
func (r *PaymentDetailsRequest) GetPaymentId() string { return r.PaymentId }

type SubmitUTRRequest struct {
	Id  uint64 `json:"id"`
	Utr string `json:"utr"`
}

func (r *SubmitUTRRequest) GetId() uint64  { return r.Id }
func (r *SubmitUTRRequest) GetUtr() string { return r.Utr }

type HandleCallbackRequest struct {
	Gateway   string `json:"gateway"`
	Signature string `json:"signature"`
	Payload   string `json:"payload"`
}

func (r *HandleCallbackRequest) GetGateway() string   { return r.Gateway }
func (r *HandleCallbackRequest) GetSignature() string { return r.Signature }
func (r *HandleCallbackRequest) GetPayload() string   { return r.Payload }

type GetReceiptRequest struct {
	Id uint64 `json:"id"`
}

func (r *GetReceiptRequest) GetId() uint64 {
	if r == nil {
		return 0
	}
	return r.Id
}

type EnsureReceiptRequest struct {
	PaymentId uint64 `json:"paymentId"`
}

func (r *EnsureReceiptRequest) GetPaymentId() uint64 {
	if r == nil {
		return 0
	}
	return r.PaymentId
}

type SearchRequest struct {
	Search string `json:"search"`
	Page   int32  `json:"page"`
	Limit  int32  `json:"limit"`
}

func (r *SearchRequest) GetSearch() string { return r.Search }
func (r *SearchRequest) GetPage() int32    { return r.Page }
func (r *SearchRequest) GetLimit() int32   { return r.Limit }

type CreateUserRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Address string `json:"address" validate:"max=1024"`
}

type CustomerLoginRequest struct {
	Mobile string `json:"mobile"`
}

func (r *CustomerLoginRequest) GetMobile() string { return r.Mobile }

type AdminLoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (r *AdminLoginRequest) GetIdentifier() string { return r.Identifier }
func (r *AdminLoginRequest) GetPassword() string   { return r.Password }

type OverrideStatusRequest struct {
	Id     uint64 `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (r *OverrideStatusRequest) GetId() uint64     { return r.Id }
func (r *OverrideStatusRequest) GetStatus() string { return r.Status }
func (r *OverrideStatusRequest) GetReason() string { return r.Reason }

type SendReminderRequest struct {
	PaymentId uint64 `json:"paymentId"`
	Channel   string `json:"channel"`
	Message   string `json:"message"`
}

func (r *SendReminderRequest) GetPaymentId() uint64 { return r.PaymentId }
func (r *SendReminderRequest) GetChannel() string   { return r.Channel }
func (r *SendReminderRequest) GetMessage() string   { return r.Message }

type ListRemindersRequest struct {
	PaymentId uint64 `json:"paymentId"`
	Limit     int32  `json:"limit"`
}

func (r *ListRemindersRequest) GetPaymentId() uint64 { return r.PaymentId }
func (r *ListRemindersRequest) GetLimit() int32      { return r.Limit }

type DirectReceiptRequest struct {
	ProjectName     string          `json:"projectName" validate:"max=255"`
	CustomerName    string          `json:"customerName" validate:"required,max=255"`
	CustomerEmail   string          `json:"customerEmail" validate:"required,email,max=255"`
	CustomerPhone   string          `json:"customerPhone" validate:"omitempty,phone"`
	CustomerAddress string          `json:"customerAddress" validate:"max=1024"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMode     string          `json:"paymentMode" validate:"max=64"`
	ServiceType     string          `json:"serviceType" validate:"max=255"`
	Description     string          `json:"description" validate:"max=4000"`
	ReceiptNumber   string          `json:"receiptNumber"`
}

func (r *DirectReceiptRequest) GetProjectName() string     { return r.ProjectName }
func (r *DirectReceiptRequest) GetName() string            { return r.CustomerName }
func (r *DirectReceiptRequest) GetEmail() string           { return r.CustomerEmail }
func (r *DirectReceiptRequest) GetPhone() string           { return r.CustomerPhone }
func (r *DirectReceiptRequest) GetAddress() string         { return r.CustomerAddress }
func (r *DirectReceiptRequest) GetAmount() decimal.Decimal { return r.Amount }
func (r *DirectReceiptRequest) GetPaymentMode() string     { return r.PaymentMode }
func (r *DirectReceiptRequest) GetServiceType() string     { return r.ServiceType }
func (r *DirectReceiptRequest) GetDescription() string     { return r.Description }
func (r *DirectReceiptRequest) GetReceiptNumber() string   { return r.ReceiptNumber }

type HealthResponse struct {
	Status string `json:"status"`
}

func (r *HealthResponse) GetStatus() string {
	if r == nil {
		return ""
	}
	return r.Status
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Payment struct {
	Id                    uint64  `json:"id"`
	UserId                uint64  `json:"userId"`
	Amount                float64 `json:"amount"`
	Currency              string  `json:"currency"`
	PaymentMode           string  `json:"paymentMode"`
	Status                string  `json:"status"`
	ReceiptNumber         string  `json:"receiptNumber"`
	ServiceType           string  `json:"serviceType,omitempty"`
	Gateway               string  `json:"gateway"`
	GatewayOrderId        string  `json:"gatewayOrderId,omitempty"`
	GatewayPaymentId      string  `json:"gatewayPaymentId,omitempty"`
	GatewaySessionId      string  `json:"gatewaySessionId,omitempty"`
	GatewayPaymentMethod  string  `json:"gatewayPaymentMethod,omitempty"`
	CheckoutUrl           string  `json:"checkoutUrl,omitempty"`
	Utr                   string  `json:"utr,omitempty"`
	FailureReason         string  `json:"failureReason,omitempty"`
	ReceiptDeliveryStatus string  `json:"receiptDeliveryStatus"`
	PaidAt                string  `json:"paidAt,omitempty"`
	CreatedAt             string  `json:"createdAt"`
	UpdatedAt             string  `json:"updatedAt"`
	AccessToken           string  `json:"accessToken,omitempty"`
}

type User struct {
	Id          uint64 `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	CreatedAt   string `json:"createdAt"`
	AccessToken string `json:"accessToken,omitempty"`
}

type Receipt struct {
	Id            uint64 `json:"id"`
	PaymentId     uint64 `json:"paymentId"`
	ReceiptNumber string `json:"receiptNumber"`
	StorageKey    string `json:"storageKey,omitempty"`
	GeneratedAt   string `json:"generatedAt"`
	AccessToken   string `json:"accessToken,omitempty"`
}

type Reminder struct {
	Id        uint64 `json:"id"`
	PaymentId uint64 `json:"paymentId"`
	Channel   string `json:"channel"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	SentAt    string `json:"sentAt"`
}

type Admin struct {
	Id       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type PaymentResponse struct {
	Success bool     `json:"success"`
	Payment *Payment `json:"payment"`
}

type ListPaymentsResponse struct {
	Success  bool       `json:"success"`
	Payments []*Payment `json:"payments"`
	Total    int64      `json:"total"`
	Page     int32      `json:"page"`
	Limit    int32      `json:"limit"`
}

type PaymentDetailsResponse struct {
	Success bool     `json:"success"`
	Payment *Payment `json:"payment"`
	User    *User    `json:"user"`
	Receipt *Receipt `json:"receipt"`
}

type ReceiptResponse struct {
	Success bool     `json:"success"`
	Receipt *Receipt `json:"receipt"`
	Payment *Payment `json:"payment,omitempty"`
	User    *User    `json:"user,omitempty"`
}

type ReceiptDetails struct {
	Receipt *Receipt `json:"receipt"`
	Payment *Payment `json:"payment"`
	User    *User    `json:"user"`
}

type ListReceiptsResponse struct {
	Success  bool              `json:"success"`
	Receipts []*ReceiptDetails `json:"receipts"`
	Total    int64             `json:"total"`
	Page     int32             `json:"page"`
	Limit    int32             `json:"limit"`
}

type UserResponse struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}

type ListUsersResponse struct {
	Success bool    `json:"success"`
	Users   []*User `json:"users"`
	Total   int64   `json:"total"`
	Page    int32   `json:"page"`
	Limit   int32   `json:"limit"`
}

type AdminLoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
	Admin     *Admin `json:"admin"`
}

type MonthlyStat struct {
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

type StatsResponse struct {
	Success            bool                   `json:"success"`
	TotalPayments      int64                  `json:"totalPayments"`
	SuccessfulPayments int64                  `json:"successfulPayments"`
	TotalReceipts      int64                  `json:"totalReceipts"`
	TotalUsers         int64                  `json:"totalUsers"`
	TotalRevenue       float64                `json:"totalRevenue"`
	SuccessRate        float64                `json:"successRate"`
	RecentPayments     []*Payment             `json:"recentPayments"`
	MonthlyStats       map[string]MonthlyStat `json:"monthlyStats"`
}

type ReminderResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Reminder *Reminder `json:"reminder,omitempty"`
}

type ListRemindersResponse struct {
	Success   bool        `json:"success"`
	Reminders []*Reminder `json:"reminders"`
}

type DirectReceiptResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ReceiptNumber string `json:"receiptNumber"`
}
