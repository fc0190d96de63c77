package payments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vitalops-backend/internal/platform/db"
	"vitalops-backend/internal/platform/money"
	"vitalops-backend/internal/platform/sequence"
	"vitalops-backend/internal/rental_mgmt/invoices"
)

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	db       *sql.DB
	store    *Store
	invoices *invoices.Store
	clock    Clock
}

func NewService(d *sql.DB) *Service {
	return &Service{db: d, store: NewStore(d), invoices: invoices.NewStore(d), clock: realClock{}}
}

// validateRecord は入金リクエストの形式チェック。
// 請求書と紐付かない入金は必ず顧客を指すこと。
func validateRecord(in RecordPaymentRequest) error {
	if in.Amount <= 0 {
		return ErrInvalid("amount must be > 0")
	}
	if !ValidMethod(Method(in.Method)) {
		return ErrInvalid("invalid payment method")
	}
	if in.InvoiceID == nil && in.CustomerID == nil {
		return ErrInvalid("customer_id is required when no invoice is linked")
	}
	return nil
}

// RecordPayment は入金1件を記録する。請求書に紐付く入金は同一Txで
// 請求書の残額とステータスを更新する。入金行は作成後に変更しない。
func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentRequest, receivedByID string) (*PaymentResponse, error) {
	if err := validateRecord(in); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	p := &Payment{
		Amount: money.Money(in.Amount),
		Method: Method(in.Method),
	}
	if in.RentalID != nil {
		p.RentalID = sql.NullInt64{Int64: *in.RentalID, Valid: true}
	}
	if in.SaleID != nil {
		p.SaleID = sql.NullInt64{Int64: *in.SaleID, Valid: true}
	}
	if in.Reference != nil && *in.Reference != "" {
		p.Reference = sql.NullString{String: *in.Reference, Valid: true}
	}
	if in.Notes != nil && *in.Notes != "" {
		p.Notes = sql.NullString{String: *in.Notes, Valid: true}
	}
	if receivedByID != "" {
		p.ReceivedByID = sql.NullString{String: receivedByID, Valid: true}
	}

	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var inv *invoices.Invoice
		if in.InvoiceID != nil {
			var err error
			inv, err = s.invoices.LockByID(ctx, tx, *in.InvoiceID)
			if err != nil {
				if err == sql.ErrNoRows {
					return ErrNotFound("invoice not found")
				}
				return err
			}
			switch inv.Status {
			case invoices.StatusCancelled:
				return ErrConflict(fmt.Sprintf("invoice %s is cancelled", inv.InvoiceNumber))
			case invoices.StatusDraft:
				return ErrConflict(fmt.Sprintf("invoice %s has not been sent", inv.InvoiceNumber))
			}
			p.InvoiceID = sql.NullInt64{Int64: *in.InvoiceID, Valid: true}
			// 顧客は請求書側から引く
			p.CustomerID = inv.CustomerID
		} else {
			p.CustomerID = *in.CustomerID
		}

		number, err := sequence.Next(ctx, tx, sequence.Payment, now.Year())
		if err != nil {
			return err
		}
		p.PaymentNumber = number

		id, err := s.store.InsertTx(ctx, tx, p)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrInvalid("invalid customer_id, rental_id, or sale_id")
			}
			return err
		}
		p.PaymentID = id

		if inv == nil {
			return nil
		}
		r := invoices.Reconcile(inv, p.Amount)
		return s.invoices.ApplyReconcileTx(ctx, tx, inv.InvoiceID, r, now)
	})
	if err != nil {
		return nil, err
	}
	return s.GetPayment(ctx, p.PaymentID)
}

func (s *Service) GetPayment(ctx context.Context, id int64) (*PaymentResponse, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("payment not found")
		}
		return nil, err
	}
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID int64) ([]PaymentResponse, error) {
	if _, err := s.invoices.GetByID(ctx, s.db, invoiceID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("invoice not found")
		}
		return nil, err
	}
	rows, err := s.store.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, toResponse(p))
	}
	return out, nil
}

// DailyReport は日次の回収レポート。date省略時は当日
func (s *Service) DailyReport(ctx context.Context, day time.Time) (*DailyReport, error) {
	totals, err := s.store.DailyTotals(ctx, day)
	if err != nil {
		return nil, err
	}
	r := &DailyReport{
		Date:     day.Format("2006-01-02"),
		ByMethod: totals,
	}
	for _, t := range totals {
		r.TotalCount += t.Count
		r.TotalAmount += t.Amount
	}
	return r, nil
}

// ===== helpers =====

func toResponse(p *Payment) PaymentResponse {
	resp := PaymentResponse{
		PaymentID:     p.PaymentID,
		PaymentNumber: p.PaymentNumber,
		CustomerID:    p.CustomerID,
		CustomerName:  p.CustomerName,
		Amount:        p.Amount,
		Method:        p.Method,
		CreatedAt:     p.CreatedAt,
	}
	if p.InvoiceID.Valid {
		v := p.InvoiceID.Int64
		resp.InvoiceID = &v
	}
	if p.InvoiceNumber.Valid {
		v := p.InvoiceNumber.String
		resp.InvoiceNumber = &v
	}
	if p.RentalID.Valid {
		v := p.RentalID.Int64
		resp.RentalID = &v
	}
	if p.SaleID.Valid {
		v := p.SaleID.Int64
		resp.SaleID = &v
	}
	if p.Reference.Valid {
		v := p.Reference.String
		resp.Reference = &v
	}
	if p.Notes.Valid {
		v := p.Notes.String
		resp.Notes = &v
	}
	return resp
}
