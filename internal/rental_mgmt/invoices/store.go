package invoices

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"vitalops-backend/internal/platform/db"
	"vitalops-backend/internal/platform/money"
)

type Store struct{ db *sql.DB }

func NewStore(d *sql.DB) *Store { return &Store{db: d} }

const invoiceSelect = `
SELECT i.invoice_id, i.invoice_number, i.customer_id, i.rental_id, i.invoice_type, i.status,
       i.subtotal, i.tax_amount, i.discount_amount, i.total_amount,
       i.paid_amount, i.due_amount, i.due_date, i.sent_at, i.paid_date,
       i.notes, i.created_by_id, i.created_at,
       c.name, c.phone
FROM invoices i
JOIN customers c ON c.customer_id = i.customer_id`

func scanInvoice(row interface{ Scan(...any) error }) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.InvoiceID, &inv.InvoiceNumber, &inv.CustomerID, &inv.RentalID, &inv.InvoiceType, &inv.Status,
		&inv.Subtotal, &inv.TaxAmount, &inv.DiscountAmount, &inv.TotalAmount,
		&inv.PaidAmount, &inv.DueAmount, &inv.DueDate, &inv.SentAt, &inv.PaidDate,
		&inv.Notes, &inv.CreatedByID, &inv.CreatedAt,
		&inv.CustomerName, &inv.CustomerPhone,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Store) InsertTx(ctx context.Context, tx *sql.Tx, inv *Invoice) (int64, error) {
	const q = `
	INSERT INTO invoices
	  (invoice_number, customer_id, rental_id, invoice_type, status, subtotal, tax_amount,
	   discount_amount, total_amount, paid_amount, due_amount, due_date, sent_at, notes, created_by_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		inv.InvoiceNumber, inv.CustomerID, inv.RentalID, inv.InvoiceType, inv.Status,
		inv.Subtotal, inv.TaxAmount, inv.DiscountAmount, inv.TotalAmount,
		inv.PaidAmount, inv.DueAmount, inv.DueDate, inv.SentAt, inv.Notes, inv.CreatedByID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) InsertItemTx(ctx context.Context, tx *sql.Tx, it *InvoiceItem) error {
	const q = `
	INSERT INTO invoice_items (invoice_id, description, quantity, unit_price, amount)
	VALUES (?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, it.InvoiceID, it.Description, it.Quantity, it.UnitPrice, it.Amount)
	return err
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*Invoice, error) {
	row := q.QueryRowContext(ctx, invoiceSelect+` WHERE i.invoice_id = ?`, id)
	return scanInvoice(row)
}

// LockByID: 入金反映・送付・取消は必ずロックしてから行う
func (s *Store) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*Invoice, error) {
	row := tx.QueryRowContext(ctx, invoiceSelect+` WHERE i.invoice_id = ? FOR UPDATE`, id)
	return scanInvoice(row)
}

func (s *Store) ListItems(ctx context.Context, invoiceID int64) ([]*InvoiceItem, error) {
	const q = `
	SELECT invoice_item_id, invoice_id, description, quantity, unit_price, amount
	FROM invoice_items WHERE invoice_id = ? ORDER BY invoice_item_id`
	rows, err := s.db.QueryContext(ctx, q, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*InvoiceItem
	for rows.Next() {
		var it InvoiceItem
		if err := rows.Scan(&it.InvoiceItemID, &it.InvoiceID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Amount); err != nil {
			return nil, err
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

func (s *Store) List(ctx context.Context, q InvoiceSearchQuery, now time.Time, p Page) ([]*Invoice, int64, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if q.Status != nil {
		where = append(where, "i.status = ?")
		args = append(args, string(*q.Status))
	}
	if q.Type != nil {
		where = append(where, "i.invoice_type = ?")
		args = append(args, string(*q.Type))
	}
	if q.CustomerID != nil {
		where = append(where, "i.customer_id = ?")
		args = append(args, *q.CustomerID)
	}
	if q.Overdue {
		// 期日超過はフラグを持たず参照時に絞り込む
		where = append(where, "i.status IN ('SENT', 'PARTIALLY_PAID') AND i.due_date < ?")
		args = append(args, now)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invoices i`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "DESC"
	if p.Order == "asc" {
		order = "ASC"
	}
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		invoiceSelect+cond+` ORDER BY i.invoice_id `+order+` LIMIT ? OFFSET ?`,
		append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}

func (s *Store) MarkSentTx(ctx context.Context, tx *sql.Tx, id int64, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE invoices SET status = ?, sent_at = ? WHERE invoice_id = ?`, StatusSent, at, id)
	return err
}

func (s *Store) ApplyReconcileTx(ctx context.Context, tx *sql.Tx, id int64, r ReconcileResult, paidDate time.Time) error {
	var pd sql.NullTime
	if r.PaidNow {
		pd = sql.NullTime{Time: paidDate, Valid: true}
	}
	const q = `
	UPDATE invoices
	SET paid_amount = ?, due_amount = ?, status = ?,
	    paid_date = COALESCE(paid_date, ?)
	WHERE invoice_id = ?`
	_, err := tx.ExecContext(ctx, q, r.PaidAmount, r.DueAmount, r.Status, pd, id)
	return err
}

func (s *Store) CancelTx(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE invoices SET status = ? WHERE invoice_id = ?`, StatusCancelled, id)
	return err
}

// OutstandingTotal: 未回収合計（ダッシュボード用）
func (s *Store) OutstandingTotal(ctx context.Context) (money.Money, error) {
	const q = `
	SELECT COALESCE(SUM(due_amount), 0) FROM invoices
	WHERE status IN ('SENT', 'PARTIALLY_PAID')`
	var m money.Money
	err := s.db.QueryRowContext(ctx, q).Scan(&m)
	return m, err
}
