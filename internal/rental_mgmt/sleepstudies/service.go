package sleepstudies

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

func (s *Service) BookStudy(ctx context.Context, in BookStudyRequest, createdByID string) (*StudyResponse, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalid("amount must be > 0")
	}
	studyDate, err := time.Parse("2006-01-02", in.StudyDate)
	if err != nil {
		return nil, ErrInvalid("invalid study_date format, expected YYYY-MM-DD")
	}

	now := s.clock.Now()
	st := &SleepStudy{
		CustomerID: in.CustomerID,
		Status:     StatusBooked,
		StudyDate:  studyDate,
		Amount:     money.Money(in.Amount),
	}
	if in.DeviceAssetID != nil {
		st.DeviceAssetID = sql.NullInt64{Int64: *in.DeviceAssetID, Valid: true}
	}
	if in.Notes != nil && *in.Notes != "" {
		st.Notes = sql.NullString{String: *in.Notes, Valid: true}
	}
	if createdByID != "" {
		st.CreatedByID = sql.NullString{String: createdByID, Valid: true}
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		number, err := sequence.Next(ctx, tx, sequence.SleepStudy, now.Year())
		if err != nil {
			return err
		}
		st.StudyNumber = number

		id, err := s.store.InsertTx(ctx, tx, st)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrInvalid("invalid customer_id or device_asset_id")
			}
			return err
		}
		st.StudyID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetStudy(ctx, st.StudyID)
}

func (s *Service) GetStudy(ctx context.Context, id int64) (*StudyResponse, error) {
	st, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("sleep study not found")
		}
		return nil, err
	}
	resp := toResponse(st)
	return &resp, nil
}

func (s *Service) ListStudies(ctx context.Context, q StudySearchQuery, p Page) ([]StudyResponse, int64, error) {
	rows, total, err := s.store.List(ctx, q, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]StudyResponse, 0, len(rows))
	for _, st := range rows {
		out = append(out, toResponse(st))
	}
	return out, total, nil
}

// UpdateStatus は配送・検査完了・取消の遷移用。レポート・推奨は専用APIで進める
func (s *Service) UpdateStatus(ctx context.Context, id int64, in UpdateStatusRequest) (*StudyResponse, error) {
	to := Status(in.Status)
	if !ValidStatus(to) {
		return nil, ErrInvalid("invalid status")
	}
	if to == StatusReportUploaded || to == StatusRecommendationSent {
		return nil, ErrInvalid("use the report/recommendation endpoints for " + in.Status)
	}

	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		st, err := s.store.LockByID(ctx, tx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("sleep study not found")
			}
			return err
		}
		if !CanTransition(st.Status, to) {
			return ErrConflict(fmt.Sprintf("cannot transition %s from %s to %s", st.StudyNumber, st.Status, to))
		}
		return s.store.UpdateStatusTx(ctx, tx, id, to)
	})
	if err != nil {
		return nil, err
	}
	return s.GetStudy(ctx, id)
}

func (s *Service) UploadReport(ctx context.Context, id int64, in UploadReportRequest) (*StudyResponse, error) {
	if strings.TrimSpace(in.ReportPath) == "" {
		return nil, ErrInvalid("report_path is required")
	}
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		st, err := s.store.LockByID(ctx, tx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("sleep study not found")
			}
			return err
		}
		if !CanTransition(st.Status, StatusReportUploaded) {
			return ErrConflict(fmt.Sprintf("cannot upload report while %s is %s", st.StudyNumber, st.Status))
		}
		return s.store.SetReportTx(ctx, tx, id, in.ReportPath)
	})
	if err != nil {
		return nil, err
	}
	return s.GetStudy(ctx, id)
}

// SendRecommendation は推奨内容を保存し、顧客へWhatsAppで送る。
// 通知の失敗でステータス遷移は巻き戻さない。
func (s *Service) SendRecommendation(ctx context.Context, id int64, in SendRecommendationRequest) (*StudyResponse, error) {
	if strings.TrimSpace(in.Recommendation) == "" {
		return nil, ErrInvalid("recommendation is required")
	}

	var st *SleepStudy
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		st, err = s.store.LockByID(ctx, tx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("sleep study not found")
			}
			return err
		}
		if !CanTransition(st.Status, StatusRecommendationSent) {
			return ErrConflict(fmt.Sprintf("cannot send recommendation while %s is %s", st.StudyNumber, st.Status))
		}
		return s.store.SetRecommendationTx(ctx, tx, id, in.Recommendation)
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Sleep study %s: %s", st.StudyNumber, in.Recommendation)
	if err := s.notifier.Send(ctx, st.CustomerPhone, msg); err != nil {
		log.Printf("[WARN] SendRecommendation: whatsapp notify failed for %s: %v", st.StudyNumber, err)
	}

	return s.GetStudy(ctx, id)
}

// ===== helpers =====

func toResponse(st *SleepStudy) StudyResponse {
	resp := StudyResponse{
		StudyID:      st.StudyID,
		StudyNumber:  st.StudyNumber,
		CustomerID:   st.CustomerID,
		CustomerName: st.CustomerName,
		Status:       st.Status,
		StudyDate:    st.StudyDate,
		Amount:       st.Amount,
		CreatedAt:    st.CreatedAt,
	}
	if st.DeviceAssetID.Valid {
		v := st.DeviceAssetID.Int64
		resp.DeviceAssetID = &v
	}
	if st.DeviceCode.Valid {
		v := st.DeviceCode.String
		resp.DeviceCode = &v
	}
	if st.ReportPath.Valid {
		v := st.ReportPath.String
		resp.ReportPath = &v
	}
	if st.Recommendation.Valid {
		v := st.Recommendation.String
		resp.Recommendation = &v
	}
	if st.Notes.Valid {
		v := st.Notes.String
		resp.Notes = &v
	}
	return resp
}
