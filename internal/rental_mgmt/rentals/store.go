package rentals

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

const rentalColumns = `
rental_id, rental_number, customer_id, start_date, billing_day, next_billing_date, status,
deposit_amount, notes, created_by_id, created_at, completed_at`

func scanRental(row interface{ Scan(...any) error }) (*Rental, error) {
	var r Rental
	err := row.Scan(
		&r.RentalID, &r.RentalNumber, &r.CustomerID, &r.StartDate, &r.BillingDay, &r.NextBillingDate, &r.Status,
		&r.DepositAmount, &r.Notes, &r.CreatedByID, &r.CreatedAt, &r.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) InsertTx(ctx context.Context, tx *sql.Tx, r *Rental) (int64, error) {
	const q = `
	INSERT INTO rentals
	  (rental_number, customer_id, start_date, billing_day, next_billing_date, status, deposit_amount, notes, created_by_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		r.RentalNumber, r.CustomerID, r.StartDate, r.BillingDay, r.NextBillingDate,
		r.Status, r.DepositAmount, r.Notes, r.CreatedByID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) InsertItemTx(ctx context.Context, tx *sql.Tx, it *RentalItem) (int64, error) {
	const q = `
	INSERT INTO rental_items (rental_id, asset_id, monthly_rate, rented_location)
	VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, it.RentalID, it.AssetID, it.MonthlyRate, it.RentedLocation)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*Rental, error) {
	row := q.QueryRowContext(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE rental_id = ?`, id)
	return scanRental(row)
}

func (s *Store) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*Rental, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE rental_id = ? FOR UPDATE`, id)
	return scanRental(row)
}

func (s *Store) ListItems(ctx context.Context, q db.DBTX, rentalID int64) ([]*RentalItem, error) {
	const query = `
	SELECT ri.rental_item_id, ri.rental_id, ri.asset_id, ri.monthly_rate,
	       ri.created_at, ri.rented_location,
	       ri.returned_at, ri.return_condition, ri.return_location,
	       a.asset_code, a.name
	FROM rental_items ri
	JOIN assets a ON a.asset_id = ri.asset_id
	WHERE ri.rental_id = ?
	ORDER BY ri.rental_item_id`
	rows, err := q.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*RentalItem
	for rows.Next() {
		var it RentalItem
		if err := rows.Scan(
			&it.RentalItemID, &it.RentalID, &it.AssetID, &it.MonthlyRate,
			&it.RentedAt, &it.RentedLocation,
			&it.ReturnedAt, &it.ReturnCondition, &it.ReturnLocation,
			&it.AssetCode, &it.AssetName,
		); err != nil {
			return nil, err
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

func (s *Store) List(ctx context.Context, q RentalSearchQuery, p Page) ([]*Rental, int64, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if q.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*q.Status))
	}
	if q.CustomerID != nil {
		where = append(where, "customer_id = ?")
		args = append(args, *q.CustomerID)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rentals`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "DESC"
	if p.Order == "asc" {
		order = "ASC"
	}
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 50
	}
	// 貸出中の一覧は請求日が近い順で返す
	orderBy := "rental_id " + order
	if q.Status != nil && *q.Status == StatusActive {
		orderBy = "next_billing_date ASC, rental_id " + order
	}
	query := `SELECT ` + rentalColumns + ` FROM rentals` + cond +
		` ORDER BY ` + orderBy + ` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Rental
	for rows.Next() {
		r, err := scanRental(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// ===== 資産側の直接操作 =====
// 貸出・返却・転換は資産ステータスと同一Txで動かす必要があるため、
// ここでは assets のテーブルを直接叩く。

type lockedAsset struct {
	AssetID          int64
	AssetCode        string
	Name             string
	Status           string
	PurchaseDate     time.Time
	PurchasePrice    money.Money
	DepreciationRate float64
}

func (s *Store) LockAssetTx(ctx context.Context, tx *sql.Tx, assetID int64) (*lockedAsset, error) {
	const q = `
	SELECT asset_id, asset_code, name, status, purchase_date, purchase_price, depreciation_rate
	FROM assets WHERE asset_id = ? FOR UPDATE`
	var a lockedAsset
	err := tx.QueryRowContext(ctx, q, assetID).Scan(
		&a.AssetID, &a.AssetCode, &a.Name, &a.Status,
		&a.PurchaseDate, &a.PurchasePrice, &a.DepreciationRate)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) SetAssetStatusTx(ctx context.Context, tx *sql.Tx, assetID int64, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE assets SET status = ? WHERE asset_id = ?`, status, assetID)
	return err
}

func (s *Store) InsertAssetLogTx(ctx context.Context, tx *sql.Tx, ulid string, assetID int64, action, description string, location *string) error {
	var loc sql.NullString
	if location != nil && *location != "" {
		loc = sql.NullString{String: *location, Valid: true}
	}
	const q = `
	INSERT INTO asset_logs (log_ulid, asset_id, action, description, location)
	VALUES (?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, ulid, assetID, action, description, loc)
	return err
}

// ===== 返却 =====

func (s *Store) FindOpenItemTx(ctx context.Context, tx *sql.Tx, rentalID, assetID int64) (*RentalItem, error) {
	const q = `
	SELECT ri.rental_item_id, ri.rental_id, ri.asset_id, ri.monthly_rate,
	       ri.created_at, ri.rented_location,
	       ri.returned_at, ri.return_condition, ri.return_location,
	       a.asset_code, a.name
	FROM rental_items ri
	JOIN assets a ON a.asset_id = ri.asset_id
	WHERE ri.rental_id = ? AND ri.asset_id = ? AND ri.returned_at IS NULL
	FOR UPDATE`
	var it RentalItem
	err := tx.QueryRowContext(ctx, q, rentalID, assetID).Scan(
		&it.RentalItemID, &it.RentalID, &it.AssetID, &it.MonthlyRate,
		&it.RentedAt, &it.RentedLocation,
		&it.ReturnedAt, &it.ReturnCondition, &it.ReturnLocation,
		&it.AssetCode, &it.AssetName,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Store) MarkItemReturnedTx(ctx context.Context, tx *sql.Tx, itemID int64, at time.Time, condition, location *string) error {
	var cond, loc sql.NullString
	if condition != nil && *condition != "" {
		cond = sql.NullString{String: *condition, Valid: true}
	}
	if location != nil && *location != "" {
		loc = sql.NullString{String: *location, Valid: true}
	}
	const q = `
	UPDATE rental_items
	SET returned_at = ?, return_condition = ?, return_location = ?
	WHERE rental_item_id = ?`
	_, err := tx.ExecContext(ctx, q, at, cond, loc, itemID)
	return err
}

func (s *Store) OpenItemCountTx(ctx context.Context, tx *sql.Tx, rentalID int64) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rental_items WHERE rental_id = ? AND returned_at IS NULL`, rentalID).Scan(&n)
	return n, err
}

func (s *Store) UpdateStatusTx(ctx context.Context, tx *sql.Tx, rentalID int64, status Status, completedAt *time.Time) error {
	var done sql.NullTime
	if completedAt != nil {
		done = sql.NullTime{Time: *completedAt, Valid: true}
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE rentals SET status = ?, completed_at = ? WHERE rental_id = ?`, status, done, rentalID)
	return err
}

// ===== 転換売却 =====
// 売上行の作成も同一Txで行う。sales テーブルの所有は sales パッケージだが、
// ここだけはアトミック性を優先して直接INSERTする。

func (s *Store) InsertConversionSaleTx(ctx context.Context, tx *sql.Tx, saleNumber string, assetID, customerID, rentalID int64, price, discount, finalPrice money.Money, soldByID sql.NullString, notes *string) (int64, error) {
	var n sql.NullString
	if notes != nil && *notes != "" {
		n = sql.NullString{String: *notes, Valid: true}
	}
	const q = `
	INSERT INTO sales
	  (sale_number, asset_id, customer_id, rental_id, sale_type, sale_price, discount, final_price, sold_by_id, notes)
	VALUES (?, ?, ?, ?, 'RENTAL_CONVERSION', ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, saleNumber, assetID, customerID, rentalID, price, discount, finalPrice, soldByID, n)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
