package invoices

import (
	"database/sql"
	"time"

	"vitalops-backend/internal/platform/money"
)

type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusSent          Status = "SENT"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
	StatusCancelled     Status = "CANCELLED"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusSent, StatusPartiallyPaid, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// InvoiceType は請求の発生元。月額レンタル、保証金、販売、修理、睡眠検査のいずれか
type InvoiceType string

const (
	TypeRentalMonthly InvoiceType = "RENTAL_MONTHLY"
	TypeRentalDeposit InvoiceType = "RENTAL_DEPOSIT"
	TypeSale          InvoiceType = "SALE"
	TypeService       InvoiceType = "SERVICE"
	TypeSleepStudy    InvoiceType = "SLEEP_STUDY"
)

func ValidInvoiceType(t InvoiceType) bool {
	switch t {
	case TypeRentalMonthly, TypeRentalDeposit, TypeSale, TypeService, TypeSleepStudy:
		return true
	}
	return false
}

type Invoice struct {
	InvoiceID      int64
	InvoiceNumber  string
	CustomerID     int64
	RentalID       sql.NullInt64
	InvoiceType    InvoiceType
	Status         Status
	Subtotal       money.Money
	TaxAmount      money.Money
	DiscountAmount money.Money
	TotalAmount    money.Money
	PaidAmount     money.Money
	DueAmount      money.Money
	DueDate        time.Time
	SentAt         sql.NullTime
	PaidDate       sql.NullTime
	Notes          sql.NullString
	CreatedByID    sql.NullString
	CreatedAt      time.Time

	CustomerName  string
	CustomerPhone string
}

type InvoiceItem struct {
	InvoiceItemID int64
	InvoiceID     int64
	Description   string
	Quantity      int64
	UnitPrice     money.Money
	Amount        money.Money
}

// ReconcileResult: 入金額を反映した後の請求書の姿
type ReconcileResult struct {
	PaidAmount money.Money
	DueAmount  money.Money
	Status     Status
	PaidNow    bool
}

// Reconcile は入金1件を反映する。過入金は負の残額としてそのまま残す。
//
//	残額 <= 0        → PAID（入金日を支払完了日にする）
//	一部でも入金あり → PARTIALLY_PAID
func Reconcile(inv *Invoice, amount money.Money) ReconcileResult {
	newPaid := inv.PaidAmount + amount
	newDue := inv.TotalAmount - newPaid

	r := ReconcileResult{PaidAmount: newPaid, DueAmount: newDue, Status: inv.Status}
	switch {
	case newDue <= 0:
		r.Status = StatusPaid
		r.PaidNow = true
	case newPaid > 0:
		r.Status = StatusPartiallyPaid
	}
	return r
}

// IsOverdue: 期日超過は保存せず参照時に判定する
func IsOverdue(inv *Invoice, now time.Time) bool {
	if inv.Status != StatusSent && inv.Status != StatusPartiallyPaid {
		return false
	}
	return inv.DueDate.Before(now)
}
