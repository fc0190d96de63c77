package assets

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"vitalops-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(d *sql.DB) *Store { return &Store{db: d} }

const assetColumns = `
	a.asset_id, a.asset_code, a.qr_payload, a.name, a.category_id, a.purchase_date,
	a.purchase_price, a.depreciation_rate, a.` + "`condition`" + `, a.status,
	a.manufacturer, a.model, a.serial_number, a.current_location, a.last_scanned_at,
	a.notes, a.created_by, a.created_at`

func scanAsset(row interface{ Scan(...any) error }) (*Asset, error) {
	var a Asset
	if err := row.Scan(
		&a.AssetID, &a.AssetCode, &a.QRPayload, &a.Name, &a.CategoryID, &a.PurchaseDate,
		&a.PurchasePrice, &a.DepreciationRate, &a.Condition, &a.Status,
		&a.Manufacturer, &a.Model, &a.SerialNumber, &a.CurrentLocation, &a.LastScannedAt,
		&a.Notes, &a.CreatedByID, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// InsertTx: 採番済みコードで1台登録
func (s *Store) InsertTx(ctx context.Context, tx *sql.Tx, a *Asset) (int64, error) {
	const q = `
	INSERT INTO assets
	  (asset_code, qr_payload, name, category_id, purchase_date, purchase_price,
	   depreciation_rate, ` + "`condition`" + `, status, manufacturer, model, serial_number,
	   current_location, notes, created_by, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, UTC_TIMESTAMP(6))`
	res, err := tx.ExecContext(ctx, q,
		a.AssetCode, a.QRPayload, a.Name, a.CategoryID, a.PurchaseDate, a.PurchasePrice,
		a.DepreciationRate, a.Condition, a.Status, a.Manufacturer, a.Model, a.SerialNumber,
		a.CurrentLocation, a.Notes, a.CreatedByID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*Asset, error) {
	query := `SELECT` + assetColumns + ` FROM assets a WHERE a.asset_id = ?`
	return scanAsset(q.QueryRowContext(ctx, query, id))
}

func (s *Store) GetByCode(ctx context.Context, code string) (*Asset, error) {
	query := `SELECT` + assetColumns + ` FROM assets a WHERE a.asset_code = ?`
	return scanAsset(s.db.QueryRowContext(ctx, query, code))
}

// LockByID: ステータス遷移の判定前に行ロックを取る
func (s *Store) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*Asset, error) {
	query := `SELECT` + assetColumns + ` FROM assets a WHERE a.asset_id = ? FOR UPDATE`
	return scanAsset(tx.QueryRowContext(ctx, query, id))
}

func (s *Store) List(ctx context.Context, q AssetSearchQuery, p Page) ([]*Asset, int64, error) {
	where := "WHERE 1=1"
	args := []any{}
	if q.Status != nil {
		where += " AND a.status = ?"
		args = append(args, *q.Status)
	}
	if q.CategoryID != nil {
		where += " AND a.category_id = ?"
		args = append(args, *q.CategoryID)
	}
	if q.Search != nil && *q.Search != "" {
		where += " AND (a.asset_code LIKE ? OR a.name LIKE ? OR a.serial_number LIKE ?)"
		like := "%" + *q.Search + "%"
		args = append(args, like, like, like)
	}

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	selectSQL := `SELECT` + assetColumns + `
	FROM assets a
	` + where + `
	ORDER BY a.created_at ` + order + `, a.asset_id ` + order + `
	LIMIT ? OFFSET ?`

	queryArgs := append(append([]any{}, args...), p.Limit, p.Offset)
	rows, err := s.db.QueryContext(ctx, selectSQL, queryArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countSQL := `SELECT COUNT(*) FROM assets a ` + where
	var total int64
	if err := s.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) UpdateByID(ctx context.Context, id int64, in UpdateAssetRequest) error {
	sets := []string{}
	args := []any{}
	if in.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *in.Name)
	}
	if in.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *in.CategoryID)
	}
	if in.DepreciationRate != nil {
		sets = append(sets, "depreciation_rate = ?")
		args = append(args, *in.DepreciationRate)
	}
	if in.Condition != nil {
		sets = append(sets, "`condition` = ?")
		args = append(args, *in.Condition)
	}
	if in.Manufacturer != nil {
		sets = append(sets, "manufacturer = ?")
		args = append(args, *in.Manufacturer)
	}
	if in.Model != nil {
		sets = append(sets, "model = ?")
		args = append(args, *in.Model)
	}
	if in.SerialNumber != nil {
		sets = append(sets, "serial_number = ?")
		args = append(args, *in.SerialNumber)
	}
	if in.CurrentLocation != nil {
		sets = append(sets, "current_location = ?")
		args = append(args, *in.CurrentLocation)
	}
	if in.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *in.Notes)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	q := fmt.Sprintf(`UPDATE assets SET %s WHERE asset_id = ?`, strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatusTx: 行ロック済み前提でステータスだけ書き換える
func (s *Store) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status Status) error {
	const q = `UPDATE assets SET status = ? WHERE asset_id = ?`
	res, err := tx.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff != 1 {
		return ErrInternal("failed to update assets.status")
	}
	return nil
}

// OpenRentalItemCount: 未返却のレンタル明細数（廃棄ガード用）
func (s *Store) OpenRentalItemCount(ctx context.Context, q db.DBTX, assetID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM rental_items WHERE asset_id = ? AND returned_at IS NULL`
	var n int64
	if err := q.QueryRowContext(ctx, query, assetID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) UpdateScan(ctx context.Context, id int64, in ScanRequest) error {
	const q = `
	UPDATE assets
	SET current_location = COALESCE(?, current_location),
	    last_scanned_at  = UTC_TIMESTAMP(6)
	WHERE asset_id = ?`
	res, err := s.db.ExecContext(ctx, q, in.Location, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ===== asset logs（追記専用） =====

func (s *Store) InsertLog(ctx context.Context, q db.DBTX, l *AssetLog) error {
	const query = `
	INSERT INTO asset_logs (log_ulid, asset_id, action, description, location, latitude, longitude, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, UTC_TIMESTAMP(6))`
	_, err := q.ExecContext(ctx, query,
		l.LogULID, l.AssetID, l.Action, l.Description, l.Location, l.Latitude, l.Longitude)
	return err
}

func (s *Store) ListLogs(ctx context.Context, assetID int64, limit int) ([]*AssetLog, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
	SELECT log_id, log_ulid, asset_id, action, description, location, latitude, longitude, created_at
	FROM asset_logs
	WHERE asset_id = ?
	ORDER BY created_at DESC, log_id DESC
	LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, assetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*AssetLog{}
	for rows.Next() {
		var l AssetLog
		if err := rows.Scan(&l.LogID, &l.LogULID, &l.AssetID, &l.Action, &l.Description,
			&l.Location, &l.Latitude, &l.Longitude, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// ===== service logs =====

func (s *Store) InsertServiceLog(ctx context.Context, l *ServiceLog) (int64, error) {
	const q = `
	INSERT INTO service_logs
	  (asset_id, service_type, description, technician_name, cost, service_date, next_service_due, notes)
	VALUES (?, ?, ?, ?, ?, UTC_TIMESTAMP(6), ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		l.AssetID, l.ServiceType, l.Description, l.TechnicianName, l.Cost, l.NextServiceDue, l.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) ListServiceLogs(ctx context.Context, assetID int64, limit int) ([]*ServiceLog, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
	SELECT service_log_id, asset_id, service_type, description, technician_name, cost,
	       service_date, next_service_due, notes
	FROM service_logs
	WHERE asset_id = ?
	ORDER BY service_date DESC
	LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, assetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*ServiceLog{}
	for rows.Next() {
		var l ServiceLog
		if err := rows.Scan(&l.ServiceLogID, &l.AssetID, &l.ServiceType, &l.Description,
			&l.TechnicianName, &l.Cost, &l.ServiceDate, &l.NextServiceDue, &l.Notes); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// ===== categories =====

func (s *Store) InsertCategory(ctx context.Context, name string, description *string) (int64, error) {
	const q = `INSERT INTO asset_categories (name, description) VALUES (?, ?)`
	res, err := s.db.ExecContext(ctx, q, name, description)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) ListCategories(ctx context.Context) ([]*Category, error) {
	const q = `
	SELECT c.category_id, c.name, c.description, COUNT(a.asset_id)
	FROM asset_categories c
	LEFT JOIN assets a ON a.category_id = c.category_id
	GROUP BY c.category_id, c.name, c.description
	ORDER BY c.name ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Description, &c.AssetCount); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// ===== reports =====

func (s *Store) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	const q = `SELECT status, COUNT(*) FROM assets GROUP BY status`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[Status]int64{}
	for rows.Next() {
		var st Status
		var n int64
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

func (s *Store) ListAvailable(ctx context.Context) ([]*Asset, error) {
	query := `SELECT` + assetColumns + `
	FROM assets a
	WHERE a.status = ?
	ORDER BY a.name ASC`
	rows, err := s.db.QueryContext(ctx, query, StatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
