package sleepstudies

import (
	"context"
	"database/sql"
	"strings"

	"vitalops-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(d *sql.DB) *Store { return &Store{db: d} }

const studySelect = `
SELECT s.study_id, s.study_number, s.customer_id, s.device_asset_id, s.status,
       s.study_date, s.amount, s.report_path, s.recommendation, s.notes,
       s.created_by_id, s.created_at,
       c.name, c.phone, a.asset_code
FROM sleep_studies s
JOIN customers c ON c.customer_id = s.customer_id
LEFT JOIN assets a ON a.asset_id = s.device_asset_id`

func scanStudy(row interface{ Scan(...any) error }) (*SleepStudy, error) {
	var s SleepStudy
	err := row.Scan(
		&s.StudyID, &s.StudyNumber, &s.CustomerID, &s.DeviceAssetID, &s.Status,
		&s.StudyDate, &s.Amount, &s.ReportPath, &s.Recommendation, &s.Notes,
		&s.CreatedByID, &s.CreatedAt,
		&s.CustomerName, &s.CustomerPhone, &s.DeviceCode,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Store) InsertTx(ctx context.Context, tx *sql.Tx, st *SleepStudy) (int64, error) {
	const q = `
	INSERT INTO sleep_studies
	  (study_number, customer_id, device_asset_id, status, study_date, amount, notes, created_by_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		st.StudyNumber, st.CustomerID, st.DeviceAssetID, st.Status,
		st.StudyDate, st.Amount, st.Notes, st.CreatedByID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*SleepStudy, error) {
	row := q.QueryRowContext(ctx, studySelect+` WHERE s.study_id = ?`, id)
	return scanStudy(row)
}

func (s *Store) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*SleepStudy, error) {
	row := tx.QueryRowContext(ctx, studySelect+` WHERE s.study_id = ? FOR UPDATE`, id)
	return scanStudy(row)
}

func (s *Store) List(ctx context.Context, q StudySearchQuery, p Page) ([]*SleepStudy, int64, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if q.Status != nil {
		where = append(where, "s.status = ?")
		args = append(args, string(*q.Status))
	}
	if q.CustomerID != nil {
		where = append(where, "s.customer_id = ?")
		args = append(args, *q.CustomerID)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sleep_studies s`+cond, args...).Scan(&total); err != nil {
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
		studySelect+cond+` ORDER BY s.study_id `+order+` LIMIT ? OFFSET ?`,
		append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*SleepStudy
	for rows.Next() {
		st, err := scanStudy(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, st)
	}
	return out, total, rows.Err()
}

func (s *Store) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status Status) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE sleep_studies SET status = ? WHERE study_id = ?`, status, id)
	return err
}

func (s *Store) SetReportTx(ctx context.Context, tx *sql.Tx, id int64, path string) error {
	const q = `UPDATE sleep_studies SET status = ?, report_path = ? WHERE study_id = ?`
	_, err := tx.ExecContext(ctx, q, StatusReportUploaded, path, id)
	return err
}

func (s *Store) SetRecommendationTx(ctx context.Context, tx *sql.Tx, id int64, text string) error {
	const q = `UPDATE sleep_studies SET status = ?, recommendation = ? WHERE study_id = ?`
	_, err := tx.ExecContext(ctx, q, StatusRecommendationSent, text, id)
	return err
}

// CountOpen: 進行中の件数（ダッシュボード用）
func (s *Store) CountOpen(ctx context.Context) (int64, error) {
	const q = `
	SELECT COUNT(*) FROM sleep_studies
	WHERE status NOT IN ('RECOMMENDATION_SENT', 'CANCELLED')`
	var n int64
	err := s.db.QueryRowContext(ctx, q).Scan(&n)
	return n, err
}
