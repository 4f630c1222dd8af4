package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/service"
	"github.com/vibast-solutions/ms-go-receipts/app/types"
)

func PaymentToType(item *entity.Payment) *types.Payment {
	if item == nil {
		return nil
	}

	return &types.Payment{
		Id:                    item.ID,
		UserId:                item.UserID,
		Amount:                item.Amount.InexactFloat64(),
		Currency:              item.Currency,
		PaymentMode:           item.PaymentMode,
		Status:                item.Status,
		ReceiptNumber:         item.ReceiptNumber,
		ServiceType:           derefString(item.ServiceType),
		Gateway:               item.Gateway,
		GatewayOrderId:        derefString(item.GatewayOrderID),
		GatewayPaymentId:      derefString(item.GatewayPaymentID),
		GatewaySessionId:      derefString(item.GatewaySessionID),
		GatewayPaymentMethod:  derefString(item.GatewayPaymentMethod),
		CheckoutUrl:           derefString(item.CheckoutURL),
		Utr:                   derefString(item.UTR),
		FailureReason:         derefString(item.FailureReason),
		ReceiptDeliveryStatus: receiptDeliveryStatus(item.ReceiptDeliveryStatus),
		PaidAt:                formatOptionalTime(item.GatewayPaidAt),
		CreatedAt:             formatTime(item.CreatedAt),
		UpdatedAt:             formatTime(item.UpdatedAt),
	}
}

func PaymentsToType(items []*entity.Payment) []*types.Payment {
	result := make([]*types.Payment, 0, len(items))
	for _, item := range items {
		result = append(result, PaymentToType(item))
	}
	return result
}

func UserToType(item *entity.User) *types.User {
	if item == nil {
		return nil
	}

	return &types.User{
		Id:        item.ID,
		Name:      item.Name,
		Email:     item.Email,
		Phone:     item.Phone,
		Address:   item.Address,
		CreatedAt: formatTime(item.CreatedAt),
	}
}

func UsersToType(items []*entity.User) []*types.User {
	result := make([]*types.User, 0, len(items))
	for _, item := range items {
		result = append(result, UserToType(item))
	}
	return result
}

func ReceiptToType(item *entity.Receipt) *types.Receipt {
	if item == nil {
		return nil
	}

	return &types.Receipt{
		Id:            item.ID,
		PaymentId:     item.PaymentID,
		ReceiptNumber: item.ReceiptNumber,
		StorageKey:    derefString(item.StorageKey),
		GeneratedAt:   formatTime(item.GeneratedAt),
	}
}

func ReceiptViewToType(view *service.ReceiptView) *types.ReceiptDetails {
	if view == nil {
		return nil
	}

	return &types.ReceiptDetails{
		Receipt: ReceiptToType(view.Receipt),
		Payment: PaymentToType(view.Payment),
		User:    UserToType(view.User),
	}
}

func ReceiptViewsToType(views []*service.ReceiptView) []*types.ReceiptDetails {
	result := make([]*types.ReceiptDetails, 0, len(views))
	for _, view := range views {
		result = append(result, ReceiptViewToType(view))
	}
	return result
}

func ReminderToType(item *entity.Reminder) *types.Reminder {
	if item == nil {
		return nil
	}

	return &types.Reminder{
		Id:        item.ID,
		PaymentId: item.PaymentID,
		Channel:   item.Channel,
		Message:   item.Message,
		Status:    item.Status,
		Error:     derefString(item.Error),
		SentAt:    formatTime(item.SentAt),
	}
}

func RemindersToType(items []*entity.Reminder) []*types.Reminder {
	result := make([]*types.Reminder, 0, len(items))
	for _, item := range items {
		result = append(result, ReminderToType(item))
	}
	return result
}

func AdminToType(item *entity.Admin) *types.Admin {
	if item == nil {
		return nil
	}

	return &types.Admin{
		Id:       item.ID,
		Username: item.Username,
		Email:    item.Email,
		Role:     item.Role,
	}
}

func StatsToType(stats *service.DashboardStats) *types.StatsResponse {
	monthly := make(map[string]types.MonthlyStat, len(stats.MonthlyStats))
	for key, m := range stats.MonthlyStats {
		monthly[key] = types.MonthlyStat{Count: m.Count, Revenue: m.Revenue.InexactFloat64()}
	}

	return &types.StatsResponse{
		Success:            true,
		TotalPayments:      stats.TotalPayments,
		SuccessfulPayments: stats.SuccessfulPayments,
		TotalReceipts:      stats.TotalReceipts,
		TotalUsers:         stats.TotalUsers,
		TotalRevenue:       stats.TotalRevenue.InexactFloat64(),
		SuccessRate:        stats.SuccessRate,
		RecentPayments:     PaymentsToType(stats.RecentPayments),
		MonthlyStats:       monthly,
	}
}

func receiptDeliveryStatus(status int32) string {
	switch status {
	case entity.ReceiptDeliveryPending:
		return "pending"
	case entity.ReceiptDeliverySuccess:
		return "delivered"
	case entity.ReceiptDeliveryFailed:
		return "failed"
	default:
		return "none"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
