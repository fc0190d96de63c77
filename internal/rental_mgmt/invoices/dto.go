package invoices

import (
	"time"

	"vitalops-backend/internal/platform/money"
)

type Page struct {
	Limit  int
	Offset int
	Order  string
}

type InvoiceItemRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required"`
	UnitPrice   int64  `json:"unit_price" binding:"required"`
}

type CreateInvoiceRequest struct {
	CustomerID     int64                `json:"customer_id" binding:"required"`
	RentalID       *int64               `json:"rental_id,omitempty"`
	Type           string               `json:"type" binding:"required"`
	Items          []InvoiceItemRequest `json:"items" binding:"required"`
	TaxAmount      int64                `json:"tax_amount"`
	DiscountAmount int64                `json:"discount_amount"`
	DueDays        *int                 `json:"due_days,omitempty"` // 省略時は7日後が期日
	Send           bool                 `json:"send"`               // trueなら作成と同時に送付
	Notes          *string              `json:"notes,omitempty"`
}

type InvoiceSearchQuery struct {
	Status     *Status
	Type       *InvoiceType
	CustomerID *int64
	Overdue    bool
}

type InvoiceItemResponse struct {
	Description string      `json:"description"`
	Quantity    int64       `json:"quantity"`
	UnitPrice   money.Money `json:"unit_price"`
	Amount      money.Money `json:"amount"`
}

type InvoiceResponse struct {
	InvoiceID      int64                 `json:"invoice_id"`
	InvoiceNumber  string                `json:"invoice_number"`
	CustomerID     int64                 `json:"customer_id"`
	CustomerName   string                `json:"customer_name"`
	RentalID       *int64                `json:"rental_id,omitempty"`
	Type           InvoiceType           `json:"type"`
	Status         Status                `json:"status"`
	Subtotal       money.Money           `json:"subtotal"`
	TaxAmount      money.Money           `json:"tax_amount"`
	DiscountAmount money.Money           `json:"discount_amount"`
	TotalAmount    money.Money           `json:"total_amount"`
	PaidAmount     money.Money           `json:"paid_amount"`
	DueAmount      money.Money           `json:"due_amount"`
	DueDate        time.Time             `json:"due_date"`
	Overdue        bool                  `json:"overdue"`
	SentAt         *time.Time            `json:"sent_at,omitempty"`
	PaidDate       *time.Time            `json:"paid_date,omitempty"`
	Notes          *string               `json:"notes,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	Items          []InvoiceItemResponse `json:"items"`
}
