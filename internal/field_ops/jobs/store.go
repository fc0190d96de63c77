package jobs

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

const jobSelect = `
SELECT j.job_id, j.job_number, j.job_type, j.status, j.customer_id, j.asset_id,
       j.technician_id, j.scheduled_date, j.address, j.started_at, j.completed_at,
       j.collected_amount, j.collection_method, j.completion_notes, j.notes,
       j.created_by_id, j.created_at,
       c.name, c.phone, a.asset_code
FROM jobs j
JOIN customers c ON c.customer_id = j.customer_id
LEFT JOIN assets a ON a.asset_id = j.asset_id`

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var j Job
	err := row.Scan(
		&j.JobID, &j.JobNumber, &j.JobType, &j.Status, &j.CustomerID, &j.AssetID,
		&j.TechnicianID, &j.ScheduledDate, &j.Address, &j.StartedAt, &j.CompletedAt,
		&j.CollectedAmount, &j.CollectionMethod, &j.CompletionNotes, &j.Notes,
		&j.CreatedByID, &j.CreatedAt,
		&j.CustomerName, &j.CustomerPhone, &j.AssetCode,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Store) InsertTx(ctx context.Context, tx *sql.Tx, j *Job) (int64, error) {
	const q = `
	INSERT INTO jobs
	  (job_number, job_type, status, customer_id, asset_id, technician_id,
	   scheduled_date, address, notes, created_by_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		j.JobNumber, j.JobType, j.Status, j.CustomerID, j.AssetID, j.TechnicianID,
		j.ScheduledDate, j.Address, j.Notes, j.CreatedByID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*Job, error) {
	row := q.QueryRowContext(ctx, jobSelect+` WHERE j.job_id = ?`, id)
	return scanJob(row)
}

func (s *Store) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*Job, error) {
	row := tx.QueryRowContext(ctx, jobSelect+` WHERE j.job_id = ? FOR UPDATE`, id)
	return scanJob(row)
}

func (s *Store) List(ctx context.Context, q JobSearchQuery, p Page) ([]*Job, int64, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if q.Status != nil {
		where = append(where, "j.status = ?")
		args = append(args, string(*q.Status))
	}
	if q.JobType != nil {
		where = append(where, "j.job_type = ?")
		args = append(args, string(*q.JobType))
	}
	if q.TechnicianID != nil {
		where = append(where, "j.technician_id = ?")
		args = append(args, *q.TechnicianID)
	}
	if q.Date != nil {
		where = append(where, "j.scheduled_date = ?")
		args = append(args, q.Date.Format("2006-01-02"))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs j`+cond, args...).Scan(&total); err != nil {
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
		jobSelect+cond+` ORDER BY j.scheduled_date `+order+`, j.job_id `+order+` LIMIT ? OFFSET ?`,
		append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, j)
	}
	return out, total, rows.Err()
}

func (s *Store) MarkStartedTx(ctx context.Context, tx *sql.Tx, id int64, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE jobs SET status = ?, started_at = ? WHERE job_id = ?`, StatusInProgress, at, id)
	return err
}

func (s *Store) MarkCompletedTx(ctx context.Context, tx *sql.Tx, id int64, at time.Time, amount money.Money, method, notes *string) error {
	var m, n sql.NullString
	if method != nil && *method != "" {
		m = sql.NullString{String: *method, Valid: true}
	}
	if notes != nil && *notes != "" {
		n = sql.NullString{String: *notes, Valid: true}
	}
	const q = `
	UPDATE jobs
	SET status = ?, completed_at = ?, collected_amount = ?, collection_method = ?, completion_notes = ?
	WHERE job_id = ?`
	_, err := tx.ExecContext(ctx, q, StatusCompleted, at, amount, m, n, id)
	return err
}

func (s *Store) MarkCancelledTx(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE jobs SET status = ? WHERE job_id = ?`, StatusCancelled, id)
	return err
}

// AssetQRPayload: 開始時のスキャン照合用
func (s *Store) AssetQRPayload(ctx context.Context, q db.DBTX, assetID int64) (string, error) {
	var p string
	err := q.QueryRowContext(ctx, `SELECT qr_payload FROM assets WHERE asset_id = ?`, assetID).Scan(&p)
	return p, err
}

// TechnicianExists: 担当者の実在・有効チェック
func (s *Store) TechnicianExists(ctx context.Context, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE user_id = ? AND is_active = 1`, userID).Scan(&n)
	return n > 0, err
}

// CountTodayByStatus: ダッシュボード用の当日集計
func (s *Store) CountTodayByStatus(ctx context.Context, day time.Time) (map[Status]int64, error) {
	const q = `
	SELECT status, COUNT(*) FROM jobs WHERE scheduled_date = ? GROUP BY status`
	rows, err := s.db.QueryContext(ctx, q, day.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Status]int64)
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
