package sales

import (
	"context"
	"database/sql"
	"strings"

	"vitalops-backend/internal/platform/money"
)

type Store struct{ db *sql.DB }

func NewStore(d *sql.DB) *Store { return &Store{db: d} }

const saleSelect = `
SELECT s.sale_id, s.sale_number, s.asset_id, s.customer_id, s.rental_id,
       s.sale_type, s.sale_price, s.discount, s.final_price, s.sold_by_id, s.notes, s.created_at,
       a.asset_code, a.name, c.name
FROM sales s
JOIN assets a ON a.asset_id = s.asset_id
JOIN customers c ON c.customer_id = s.customer_id`

func scanSale(row interface{ Scan(...any) error }) (*Sale, error) {
	var s Sale
	err := row.Scan(
		&s.SaleID, &s.SaleNumber, &s.AssetID, &s.CustomerID, &s.RentalID,
		&s.SaleType, &s.SalePrice, &s.Discount, &s.FinalPrice, &s.SoldByID, &s.Notes, &s.CreatedAt,
		&s.AssetCode, &s.AssetName, &s.CustomerName,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Store) InsertTx(ctx context.Context, tx *sql.Tx, sale *Sale) (int64, error) {
	const q = `
	INSERT INTO sales
	  (sale_number, asset_id, customer_id, rental_id, sale_type, sale_price, discount, final_price, sold_by_id, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		sale.SaleNumber, sale.AssetID, sale.CustomerID, sale.RentalID,
		sale.SaleType, sale.SalePrice, sale.Discount, sale.FinalPrice, sale.SoldByID, sale.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Sale, error) {
	row := s.db.QueryRowContext(ctx, saleSelect+` WHERE s.sale_id = ?`, id)
	return scanSale(row)
}

func (s *Store) List(ctx context.Context, q SaleSearchQuery, p Page) ([]*Sale, int64, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if q.SaleType != nil {
		where = append(where, "s.sale_type = ?")
		args = append(args, string(*q.SaleType))
	}
	if q.CustomerID != nil {
		where = append(where, "s.customer_id = ?")
		args = append(args, *q.CustomerID)
	}
	if q.From != nil {
		where = append(where, "s.created_at >= ?")
		args = append(args, *q.From)
	}
	if q.To != nil {
		where = append(where, "s.created_at < ?")
		args = append(args, *q.To)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales s`+cond, args...).Scan(&total); err != nil {
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
		saleSelect+cond+` ORDER BY s.sale_id `+order+` LIMIT ? OFFSET ?`,
		append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sale)
	}
	return out, total, rows.Err()
}

// 資産の行ロックと更新。転換売却と同じ理由で直接叩く。

func (s *Store) LockAssetTx(ctx context.Context, tx *sql.Tx, assetID int64) (code, name, status string, err error) {
	const q = `SELECT asset_code, name, status FROM assets WHERE asset_id = ? FOR UPDATE`
	err = tx.QueryRowContext(ctx, q, assetID).Scan(&code, &name, &status)
	return
}

func (s *Store) SetAssetStatusTx(ctx context.Context, tx *sql.Tx, assetID int64, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE assets SET status = ? WHERE asset_id = ?`, status, assetID)
	return err
}

func (s *Store) InsertAssetLogTx(ctx context.Context, tx *sql.Tx, ulid string, assetID int64, action, description string) error {
	const q = `
	INSERT INTO asset_logs (log_ulid, asset_id, action, description)
	VALUES (?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, ulid, assetID, action, description)
	return err
}

// MonthlyTotals: 月次集計。種別ごとの件数と売上を返す
func (s *Store) MonthlyTotals(ctx context.Context, year, month int) (map[SaleType]struct {
	Count   int64
	Revenue money.Money
}, error) {
	const q = `
	SELECT sale_type, COUNT(*), COALESCE(SUM(final_price), 0)
	FROM sales
	WHERE YEAR(created_at) = ? AND MONTH(created_at) = ?
	GROUP BY sale_type`
	rows, err := s.db.QueryContext(ctx, q, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[SaleType]struct {
		Count   int64
		Revenue money.Money
	})
	for rows.Next() {
		var t SaleType
		var v struct {
			Count   int64
			Revenue money.Money
		}
		if err := rows.Scan(&t, &v.Count, &v.Revenue); err != nil {
			return nil, err
		}
		out[t] = v
	}
	return out, rows.Err()
}
