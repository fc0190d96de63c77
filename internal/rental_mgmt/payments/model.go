package payments

import (
	"database/sql"
	"time"

	"vitalops-backend/internal/platform/money"
)

type Method string

const (
	MethodCash         Method = "CASH"
	MethodUPI          Method = "UPI"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodCheque       Method = "CHEQUE"
	MethodCard         Method = "CARD"
)

func ValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodUPI, MethodBankTransfer, MethodCheque, MethodCard:
		return true
	}
	return false
}

// Payment は追記専用。訂正は取消エントリではなく新しい請求書で行う運用。
// 請求書と紐付かない入金（保証金・現地回収など）は顧客への参照だけを持つ。
type Payment struct {
	PaymentID     int64
	PaymentNumber string
	InvoiceID     sql.NullInt64
	CustomerID    int64
	RentalID      sql.NullInt64
	SaleID        sql.NullInt64
	Amount        money.Money
	Method        Method
	Reference     sql.NullString
	ReceivedByID  sql.NullString
	Notes         sql.NullString
	CreatedAt     time.Time

	InvoiceNumber sql.NullString
	CustomerName  string
}
