package invoices

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"vitalops-backend/internal/platform/db"
	"vitalops-backend/internal/platform/money"
	"vitalops-backend/internal/platform/sequence"
	"vitalops-backend/internal/platform/whatsapp"
)

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	db       *sql.DB
	store    *Store
	notifier whatsapp.Dispatcher
	clock    Clock
}

func NewService(d *sql.DB, notifier whatsapp.Dispatcher) *Service {
	return &Service{db: d, store: NewStore(d), notifier: notifier, clock: realClock{}}
}

// CreateInvoice は明細から金額をサーバ側で再計算する。クライアントが
// 送ってきた合計は信用しない。
func (s *Service) CreateInvoice(ctx context.Context, in CreateInvoiceRequest, createdByID string) (*InvoiceResponse, error) {
	if len(in.Items) == 0 {
		return nil, ErrInvalid("items are required")
	}
	invType := InvoiceType(in.Type)
	if !ValidInvoiceType(invType) {
		return nil, ErrInvalid("invalid invoice type")
	}
	now := s.clock.Now()
	dueDate, err := dueDateFor(now, in.DueDays)
	if err != nil {
		return nil, err
	}
	if in.TaxAmount < 0 || in.DiscountAmount < 0 {
		return nil, ErrInvalid("tax_amount and discount_amount must be >= 0")
	}

	var subtotal money.Money
	items := make([]*InvoiceItem, 0, len(in.Items))
	for _, it := range in.Items {
		if strings.TrimSpace(it.Description) == "" {
			return nil, ErrInvalid("item description is required")
		}
		if it.Quantity <= 0 || it.UnitPrice <= 0 {
			return nil, ErrInvalid("item quantity and unit_price must be > 0")
		}
		amount := money.Money(it.Quantity * it.UnitPrice)
		subtotal += amount
		items = append(items, &InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   money.Money(it.UnitPrice),
			Amount:      amount,
		})
	}
	total := subtotal + money.Money(in.TaxAmount) - money.Money(in.DiscountAmount)
	if total < 0 {
		return nil, ErrInvalid("discount exceeds invoice total")
	}

	inv := &Invoice{
		CustomerID:     in.CustomerID,
		InvoiceType:    invType,
		Status:         StatusDraft,
		Subtotal:       subtotal,
		TaxAmount:      money.Money(in.TaxAmount),
		DiscountAmount: money.Money(in.DiscountAmount),
		TotalAmount:    total,
		DueAmount:      total,
		DueDate:        dueDate,
	}
	if in.Send {
		// 作成即送付。送付日は作成日になる
		inv.Status = StatusSent
		inv.SentAt = sql.NullTime{Time: now, Valid: true}
	}
	if in.RentalID != nil {
		inv.RentalID = sql.NullInt64{Int64: *in.RentalID, Valid: true}
	}
	if in.Notes != nil && *in.Notes != "" {
		inv.Notes = sql.NullString{String: *in.Notes, Valid: true}
	}
	if createdByID != "" {
		inv.CreatedByID = sql.NullString{String: createdByID, Valid: true}
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		number, err := sequence.Next(ctx, tx, sequence.Invoice, now.Year())
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number

		id, err := s.store.InsertTx(ctx, tx, inv)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrInvalid("invalid customer_id or rental_id")
			}
			return err
		}
		inv.InvoiceID = id

		for _, it := range items {
			it.InvoiceID = id
			if err := s.store.InsertItemTx(ctx, tx, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if in.Send {
		if full, err := s.store.GetByID(ctx, s.db, inv.InvoiceID); err == nil {
			s.notify(ctx, full)
		}
	}
	return s.GetInvoice(ctx, inv.InvoiceID)
}

func (s *Service) GetInvoice(ctx context.Context, id int64) (*InvoiceResponse, error) {
	inv, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("invoice not found")
		}
		return nil, err
	}
	items, err := s.store.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(inv, items)
	return &resp, nil
}

func (s *Service) ListInvoices(ctx context.Context, q InvoiceSearchQuery, p Page) ([]InvoiceResponse, int64, error) {
	now := s.clock.Now()
	rows, total, err := s.store.List(ctx, q, now, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]InvoiceResponse, 0, len(rows))
	for _, inv := range rows {
		items, err := s.store.ListItems(ctx, inv.InvoiceID)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s.toResponse(inv, items))
	}
	return out, total, nil
}

// SendInvoice は DRAFT を SENT に落とし、顧客へWhatsApp通知を送る。
// 通知の失敗で送付自体は失敗させない。
func (s *Service) SendInvoice(ctx context.Context, id int64) (*InvoiceResponse, error) {
	now := s.clock.Now()
	var inv *Invoice
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		inv, err = s.store.LockByID(ctx, tx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("invoice not found")
			}
			return err
		}
		if inv.Status != StatusDraft {
			return ErrConflict(fmt.Sprintf("invoice %s is %s, not DRAFT", inv.InvoiceNumber, inv.Status))
		}
		return s.store.MarkSentTx(ctx, tx, id, now)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, inv)

	return s.GetInvoice(ctx, id)
}

// CancelInvoice: 入金が付いた請求書は取り消せない
func (s *Service) CancelInvoice(ctx context.Context, id int64) (*InvoiceResponse, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		inv, err := s.store.LockByID(ctx, tx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("invoice not found")
			}
			return err
		}
		if inv.Status == StatusCancelled {
			return nil // 冪等
		}
		if inv.PaidAmount > 0 {
			return ErrConflict(fmt.Sprintf("invoice %s has payments recorded", inv.InvoiceNumber))
		}
		return s.store.CancelTx(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return s.GetInvoice(ctx, id)
}

// ===== helpers =====

// dueDateFor は支払期日。日数指定がなければ作成日の7日後
func dueDateFor(now time.Time, days *int) (time.Time, error) {
	d := 7
	if days != nil {
		if *days <= 0 {
			return time.Time{}, ErrInvalid("due_days must be > 0")
		}
		d = *days
	}
	return now.AddDate(0, 0, d), nil
}

// notify は請求書の送付通知。失敗しても業務処理は失敗させない
func (s *Service) notify(ctx context.Context, inv *Invoice) {
	msg := fmt.Sprintf("Invoice %s for %s is due on %s. Amount due: %s.",
		inv.InvoiceNumber, inv.CustomerName, inv.DueDate.Format("02 Jan 2006"), inv.TotalAmount)
	if err := s.notifier.Send(ctx, inv.CustomerPhone, msg); err != nil {
		log.Printf("[WARN] invoices: whatsapp notify failed for %s: %v", inv.InvoiceNumber, err)
	}
}

func (s *Service) toResponse(inv *Invoice, items []*InvoiceItem) InvoiceResponse {
	resp := InvoiceResponse{
		InvoiceID:      inv.InvoiceID,
		InvoiceNumber:  inv.InvoiceNumber,
		CustomerID:     inv.CustomerID,
		CustomerName:   inv.CustomerName,
		Type:           inv.InvoiceType,
		Status:         inv.Status,
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		TotalAmount:    inv.TotalAmount,
		PaidAmount:     inv.PaidAmount,
		DueAmount:      inv.DueAmount,
		DueDate:        inv.DueDate,
		Overdue:        IsOverdue(inv, s.clock.Now()),
		CreatedAt:      inv.CreatedAt,
		Items:          make([]InvoiceItemResponse, 0, len(items)),
	}
	if inv.RentalID.Valid {
		v := inv.RentalID.Int64
		resp.RentalID = &v
	}
	if inv.SentAt.Valid {
		v := inv.SentAt.Time
		resp.SentAt = &v
	}
	if inv.PaidDate.Valid {
		v := inv.PaidDate.Time
		resp.PaidDate = &v
	}
	if inv.Notes.Valid {
		v := inv.Notes.String
		resp.Notes = &v
	}
	for _, it := range items {
		resp.Items = append(resp.Items, InvoiceItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
		})
	}
	return resp
}
