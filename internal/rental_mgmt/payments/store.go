package payments

import (
	"context"
	"database/sql"
	"time"

	"vitalops-backend/internal/platform/money"
)

type Store struct{ db *sql.DB }

func NewStore(d *sql.DB) *Store { return &Store{db: d} }

const paymentSelect = `
SELECT p.payment_id, p.payment_number, p.invoice_id, p.customer_id, p.rental_id, p.sale_id,
       p.amount, p.method, p.reference, p.received_by_id, p.notes, p.created_at,
       i.invoice_number, c.name
FROM payments p
LEFT JOIN invoices i ON i.invoice_id = p.invoice_id
JOIN customers c ON c.customer_id = p.customer_id`

func scanPayment(row interface{ Scan(...any) error }) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.PaymentID, &p.PaymentNumber, &p.InvoiceID, &p.CustomerID, &p.RentalID, &p.SaleID,
		&p.Amount, &p.Method, &p.Reference, &p.ReceivedByID, &p.Notes, &p.CreatedAt,
		&p.InvoiceNumber, &p.CustomerName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) InsertTx(ctx context.Context, tx *sql.Tx, p *Payment) (int64, error) {
	const q = `
	INSERT INTO payments
	  (payment_number, invoice_id, customer_id, rental_id, sale_id, amount, method, reference, received_by_id, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		p.PaymentNumber, p.InvoiceID, p.CustomerID, p.RentalID, p.SaleID,
		p.Amount, p.Method, p.Reference, p.ReceivedByID, p.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Payment, error) {
	row := s.db.QueryRowContext(ctx, paymentSelect+` WHERE p.payment_id = ?`, id)
	return scanPayment(row)
}

func (s *Store) ListByInvoice(ctx context.Context, invoiceID int64) ([]*Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		paymentSelect+` WHERE p.invoice_id = ? ORDER BY p.payment_id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DailyTotals: 指定日の決済手段別の件数・金額
func (s *Store) DailyTotals(ctx context.Context, day time.Time) (map[Method]MethodTotal, error) {
	const q = `
	SELECT method, COUNT(*), COALESCE(SUM(amount), 0)
	FROM payments
	WHERE created_at >= ? AND created_at < ?
	GROUP BY method`
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	rows, err := s.db.QueryContext(ctx, q, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Method]MethodTotal)
	for rows.Next() {
		var m Method
		var t MethodTotal
		if err := rows.Scan(&m, &t.Count, &t.Amount); err != nil {
			return nil, err
		}
		out[m] = t
	}
	return out, rows.Err()
}

// MonthCollected: 当月の回収額合計（ダッシュボード用）
func (s *Store) MonthCollected(ctx context.Context, year, month int) (money.Money, error) {
	const q = `
	SELECT COALESCE(SUM(amount), 0) FROM payments
	WHERE YEAR(created_at) = ? AND MONTH(created_at) = ?`
	var m money.Money
	err := s.db.QueryRowContext(ctx, q, year, month).Scan(&m)
	return m, err
}
