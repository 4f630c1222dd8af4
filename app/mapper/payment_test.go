package mapper

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/service"
)

func TestPaymentToTypeFlattensOptionalFields(t *testing.T) {
	paidAt := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	orderID := "order_1"
	item := &entity.Payment{
		ID:                    9,
		UserID:                2,
		Amount:                decimal.RequireFromString("1250.75"),
		Currency:              "INR",
		PaymentMode:           entity.PaymentModeUPI,
		Status:                entity.PaymentStatusCompleted,
		ReceiptNumber:         "AKRX-20240305-4321",
		Gateway:               entity.GatewayCashfree,
		GatewayOrderID:        &orderID,
		GatewayPaidAt:         &paidAt,
		ReceiptDeliveryStatus: entity.ReceiptDeliverySuccess,
		CreatedAt:             paidAt,
		UpdatedAt:             paidAt,
	}

	got := PaymentToType(item)
	if got.Amount != 1250.75 {
		t.Fatalf("unexpected amount %v", got.Amount)
	}
	if got.GatewayOrderId != "order_1" || got.GatewayPaymentId != "" {
		t.Fatalf("unexpected gateway ids: %+v", got)
	}
	if got.ReceiptDeliveryStatus != "delivered" {
		t.Fatalf("unexpected delivery status %q", got.ReceiptDeliveryStatus)
	}
	if got.PaidAt != "2024-03-05T10:00:00Z" {
		t.Fatalf("unexpected paid at %q", got.PaidAt)
	}
	if PaymentToType(nil) != nil {
		t.Fatal("expected nil for nil payment")
	}
}

func TestStatsToTypeConvertsRevenue(t *testing.T) {
	stats := &service.DashboardStats{
		TotalPayments:      4,
		SuccessfulPayments: 3,
		TotalRevenue:       decimal.RequireFromString("300.50"),
		SuccessRate:        75,
		MonthlyStats: map[string]service.MonthlyStat{
			"2024-3": {Count: 3, Revenue: decimal.RequireFromString("300.50")},
		},
	}

	got := StatsToType(stats)
	if !got.Success || got.TotalRevenue != 300.5 || got.SuccessRate != 75 {
		t.Fatalf("unexpected stats: %+v", got)
	}
	if got.MonthlyStats["2024-3"].Count != 3 {
		t.Fatalf("unexpected monthly stats: %+v", got.MonthlyStats)
	}
	if got.RecentPayments == nil {
		t.Fatal("expected empty recent payments slice")
	}
}
