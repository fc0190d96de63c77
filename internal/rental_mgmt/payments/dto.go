package payments

import (
	"time"

	"vitalops-backend/internal/platform/money"
)

type RecordPaymentRequest struct {
	InvoiceID  *int64  `json:"invoice_id,omitempty"`
	CustomerID *int64  `json:"customer_id,omitempty"` // 請求書なしの入金では必須
	RentalID   *int64  `json:"rental_id,omitempty"`
	SaleID     *int64  `json:"sale_id,omitempty"`
	Amount     int64   `json:"amount" binding:"required"`
	Method     string  `json:"method" binding:"required"`
	Reference  *string `json:"reference,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

type PaymentResponse struct {
	PaymentID     int64       `json:"payment_id"`
	PaymentNumber string      `json:"payment_number"`
	InvoiceID     *int64      `json:"invoice_id,omitempty"`
	InvoiceNumber *string     `json:"invoice_number,omitempty"`
	CustomerID    int64       `json:"customer_id"`
	CustomerName  string      `json:"customer_name"`
	RentalID      *int64      `json:"rental_id,omitempty"`
	SaleID        *int64      `json:"sale_id,omitempty"`
	Amount        money.Money `json:"amount"`
	Method        Method      `json:"method"`
	Reference     *string     `json:"reference,omitempty"`
	Notes         *string     `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// DailyReport は日次の回収集計。決済手段ごとに内訳を持つ
type DailyReport struct {
	Date        string                 `json:"date"`
	TotalCount  int64                  `json:"total_count"`
	TotalAmount money.Money            `json:"total_amount"`
	ByMethod    map[Method]MethodTotal `json:"by_method"`
}

type MethodTotal struct {
	Count  int64       `json:"count"`
	Amount money.Money `json:"amount"`
}
