package customers

import (
	"context"
	"database/sql"
	"strings"

	"vitalops-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(d *sql.DB) *Store { return &Store{db: d} }

const customerColumns = `
customer_id, name, phone, alternate_phone, email, address, city, referred_by, notes, created_at`

func scanCustomer(row interface{ Scan(...any) error }) (*Customer, error) {
	var c Customer
	err := row.Scan(
		&c.CustomerID, &c.Name, &c.Phone, &c.AlternatePhone, &c.Email,
		&c.Address, &c.City, &c.ReferredBy, &c.Notes, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) Insert(ctx context.Context, c *Customer) (int64, error) {
	const q = `
	INSERT INTO customers
	  (name, phone, alternate_phone, email, address, city, referred_by, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		c.Name, c.Phone, c.AlternatePhone, c.Email, c.Address, c.City, c.ReferredBy, c.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*Customer, error) {
	row := q.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE customer_id = ?`, id)
	return scanCustomer(row)
}

func (s *Store) GetByPhone(ctx context.Context, phone string) (*Customer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE phone = ?`, phone)
	return scanCustomer(row)
}

func (s *Store) List(ctx context.Context, q CustomerSearchQuery, p Page) ([]*Customer, int64, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if q.Search != nil {
		like := "%" + *q.Search + "%"
		where = append(where, "(name LIKE ? OR phone LIKE ? OR alternate_phone LIKE ?)")
		args = append(args, like, like, like)
	}
	if q.City != nil {
		where = append(where, "city = ?")
		args = append(args, *q.City)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "DESC"
	if p.Order == "asc" {
		order = "ASC"
	}
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 50
	}
	query := `SELECT ` + customerColumns + ` FROM customers` + cond +
		` ORDER BY customer_id ` + order + ` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (s *Store) UpdateByID(ctx context.Context, id int64, in UpdateCustomerRequest) error {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("name", in.Name)
	add("phone", in.Phone)
	add("alternate_phone", in.AlternatePhone)
	add("email", in.Email)
	add("address", in.Address)
	add("city", in.City)
	add("referred_by", in.ReferredBy)
	add("notes", in.Notes)
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET `+strings.Join(sets, ", ")+` WHERE customer_id = ?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// 同値更新でも0が返るため存在確認で弁別する
		if _, err := s.GetByID(ctx, s.db, id); err != nil {
			return err
		}
	}
	return nil
}

// ActiveRentalCount: 削除ガード用。ACTIVE状態のレンタル件数を返す
func (s *Store) ActiveRentalCount(ctx context.Context, q db.DBTX, customerID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM rentals WHERE customer_id = ? AND status = 'ACTIVE'`
	var n int64
	err := q.QueryRowContext(ctx, query, customerID).Scan(&n)
	return n, err
}

func (s *Store) DeleteTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE customer_id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
