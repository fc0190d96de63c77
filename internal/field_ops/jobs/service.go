package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vitalops-backend/internal/platform/db"
	"vitalops-backend/internal/platform/money"
	"vitalops-backend/internal/platform/sequence"
)

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	db    *sql.DB
	store *Store
	clock Clock
}

func NewService(d *sql.DB) *Service {
	return &Service{db: d, store: NewStore(d), clock: realClock{}}
}

func (s *Service) CreateJob(ctx context.Context, in CreateJobRequest, createdByID string) (*JobResponse, error) {
	jobType := JobType(in.JobType)
	if !ValidJobType(jobType) {
		return nil, ErrInvalid("invalid job_type")
	}
	scheduled, err := time.Parse("2006-01-02", in.ScheduledDate)
	if err != nil {
		return nil, ErrInvalid("invalid scheduled_date format, expected YYYY-MM-DD")
	}
	ok, err := s.store.TechnicianExists(ctx, in.TechnicianID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalid("technician not found or inactive")
	}

	now := s.clock.Now()
	j := &Job{
		JobType:       jobType,
		Status:        StatusAssigned,
		CustomerID:    in.CustomerID,
		TechnicianID:  in.TechnicianID,
		ScheduledDate: scheduled,
	}
	if in.AssetID != nil {
		j.AssetID = sql.NullInt64{Int64: *in.AssetID, Valid: true}
	}
	if in.Address != nil && *in.Address != "" {
		j.Address = sql.NullString{String: *in.Address, Valid: true}
	}
	if in.Notes != nil && *in.Notes != "" {
		j.Notes = sql.NullString{String: *in.Notes, Valid: true}
	}
	if createdByID != "" {
		j.CreatedByID = sql.NullString{String: createdByID, Valid: true}
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		number, err := sequence.Next(ctx, tx, sequence.Job, now.Year())
		if err != nil {
			return err
		}
		j.JobNumber = number

		id, err := s.store.InsertTx(ctx, tx, j)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrInvalid("invalid customer_id or asset_id")
			}
			return err
		}
		j.JobID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetJob(ctx, j.JobID)
}

func (s *Service) GetJob(ctx context.Context, id int64) (*JobResponse, error) {
	j, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("job not found")
		}
		return nil, err
	}
	resp := toResponse(j)
	return &resp, nil
}

func (s *Service) ListJobs(ctx context.Context, q JobSearchQuery, p Page) ([]JobResponse, int64, error) {
	rows, total, err := s.store.List(ctx, q, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]JobResponse, 0, len(rows))
	for _, j := range rows {
		out = append(out, toResponse(j))
	}
	return out, total, nil
}

// TodayJobs は担当者アプリの当日一覧
func (s *Service) TodayJobs(ctx context.Context, technicianID string) ([]JobResponse, error) {
	today := s.clock.Now()
	q := JobSearchQuery{TechnicianID: &technicianID, Date: &today}
	out, _, err := s.ListJobs(ctx, q, Page{Limit: 200, Order: "asc"})
	return out, err
}

// StartJob は現場到着時の開始打刻。機器付きジョブはQRスキャンの
// ペイロード照合を要求する。
func (s *Service) StartJob(ctx context.Context, id int64, in StartJobRequest) (*JobResponse, error) {
	now := s.clock.Now()
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		j, err := s.store.LockByID(ctx, tx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("job not found")
			}
			return err
		}
		if !CanTransition(j.Status, StatusInProgress) {
			return ErrConflict(fmt.Sprintf("job %s is %s, cannot start", j.JobNumber, j.Status))
		}
		if j.AssetID.Valid {
			if in.ScannedPayload == nil || *in.ScannedPayload == "" {
				return ErrInvalid("scanned_payload is required for asset jobs")
			}
			want, err := s.store.AssetQRPayload(ctx, tx, j.AssetID.Int64)
			if err != nil {
				return err
			}
			if *in.ScannedPayload != want {
				return ErrConflict("scanned asset does not match the job")
			}
		}
		return s.store.MarkStartedTx(ctx, tx, id, now)
	})
	if err != nil {
		return nil, err
	}
	return s.GetJob(ctx, id)
}

// CompleteJob は完了打刻と現地回収額の記録
func (s *Service) CompleteJob(ctx context.Context, id int64, in CompleteJobRequest) (*JobResponse, error) {
	if in.CollectedAmount < 0 {
		return nil, ErrInvalid("collected_amount must be >= 0")
	}
	if in.CollectedAmount > 0 && (in.CollectionMethod == nil || *in.CollectionMethod == "") {
		return nil, ErrInvalid("collection_method is required when an amount was collected")
	}

	now := s.clock.Now()
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		j, err := s.store.LockByID(ctx, tx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("job not found")
			}
			return err
		}
		if !CanTransition(j.Status, StatusCompleted) {
			return ErrConflict(fmt.Sprintf("job %s is %s, cannot complete", j.JobNumber, j.Status))
		}
		return s.store.MarkCompletedTx(ctx, tx, id, now,
			money.Money(in.CollectedAmount), in.CollectionMethod, in.CompletionNotes)
	})
	if err != nil {
		return nil, err
	}
	return s.GetJob(ctx, id)
}

func (s *Service) CancelJob(ctx context.Context, id int64) (*JobResponse, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		j, err := s.store.LockByID(ctx, tx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("job not found")
			}
			return err
		}
		if !CanTransition(j.Status, StatusCancelled) {
			return ErrConflict(fmt.Sprintf("job %s is %s, cannot cancel", j.JobNumber, j.Status))
		}
		return s.store.MarkCancelledTx(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return s.GetJob(ctx, id)
}

// ===== helpers =====

func toResponse(j *Job) JobResponse {
	resp := JobResponse{
		JobID:           j.JobID,
		JobNumber:       j.JobNumber,
		JobType:         j.JobType,
		Status:          j.Status,
		CustomerID:      j.CustomerID,
		CustomerName:    j.CustomerName,
		CustomerPhone:   j.CustomerPhone,
		TechnicianID:    j.TechnicianID,
		ScheduledDate:   j.ScheduledDate,
		CollectedAmount: j.CollectedAmount,
		CreatedAt:       j.CreatedAt,
	}
	if j.AssetID.Valid {
		v := j.AssetID.Int64
		resp.AssetID = &v
	}
	if j.AssetCode.Valid {
		v := j.AssetCode.String
		resp.AssetCode = &v
	}
	if j.Address.Valid {
		v := j.Address.String
		resp.Address = &v
	}
	if j.StartedAt.Valid {
		v := j.StartedAt.Time
		resp.StartedAt = &v
	}
	if j.CompletedAt.Valid {
		v := j.CompletedAt.Time
		resp.CompletedAt = &v
	}
	if j.CollectionMethod.Valid {
		v := j.CollectionMethod.String
		resp.CollectionMethod = &v
	}
	if j.CompletionNotes.Valid {
		v := j.CompletionNotes.String
		resp.CompletionNotes = &v
	}
	if j.Notes.Valid {
		v := j.Notes.String
		resp.Notes = &v
	}
	return resp
}
