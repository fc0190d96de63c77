package assets

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"strings"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"vitalops-backend/internal/platform/db"
	"vitalops-backend/internal/platform/money"
	"vitalops-backend/internal/platform/sequence"
)

// ===== インターフェース群 =====

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ===== Service本体 =====

type Service struct {
	db    *sql.DB
	store *Store
	clock Clock
	id    IDGen
}

func NewService(d *sql.DB) *Service {
	return &Service{db: d, store: NewStore(d), clock: realClock{}, id: ulidGen{}}
}

func (s *Service) CreateAsset(ctx context.Context, in CreateAssetRequest, createdByID string) (*AssetResponse, error) {
	if strings.TrimSpace(in.Name) == "" || in.CategoryID == 0 {
		return nil, ErrInvalid("name and category_id are required")
	}
	if in.PurchasePrice <= 0 {
		return nil, ErrInvalid("purchase_price must be > 0")
	}
	if in.DepreciationRate < 0 || in.DepreciationRate > 100 {
		return nil, ErrInvalid("depreciation_rate must be between 0 and 100")
	}
	purchaseDate, err := time.Parse("2006-01-02", in.PurchaseDate)
	if err != nil {
		return nil, ErrInvalid("invalid purchase_date format, expected YYYY-MM-DD")
	}

	cond := ConditionGood
	if in.Condition != nil {
		cond = Condition(*in.Condition)
		if !ValidCondition(cond) {
			return nil, ErrInvalid("invalid condition")
		}
	}

	now := s.clock.Now()
	a := &Asset{
		Name:             in.Name,
		CategoryID:       in.CategoryID,
		PurchaseDate:     purchaseDate,
		PurchasePrice:    money.Money(in.PurchasePrice),
		DepreciationRate: in.DepreciationRate,
		Condition:        cond,
		Status:           StatusAvailable,
	}
	a.Manufacturer = toNullString(in.Manufacturer)
	a.Model = toNullString(in.Model)
	a.SerialNumber = toNullString(in.SerialNumber)
	a.CurrentLocation = toNullString(in.CurrentLocation)
	a.Notes = toNullString(in.Notes)
	if createdByID != "" {
		a.CreatedByID = sql.NullString{String: createdByID, Valid: true}
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		code, err := sequence.Next(ctx, tx, sequence.Asset, now.Year())
		if err != nil {
			return err
		}
		a.AssetCode = code
		a.QRPayload = QRPayload(code)

		id, err := s.store.InsertTx(ctx, tx, a)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrInvalid("invalid category_id")
			}
			if db.IsDuplicateKey(err) {
				return ErrConflict("asset_code already exists")
			}
			return err
		}
		a.AssetID = id

		return s.store.InsertLog(ctx, tx, &AssetLog{
			LogULID:     s.id.NewULID(now),
			AssetID:     id,
			Action:      LogCreated,
			Description: fmt.Sprintf("Asset %s created", code),
			Location:    a.CurrentLocation,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(a, now)
	return &resp, nil
}

// BulkImport は行単位で登録し、失敗行は理由を添えて報告する。
// 1行の不備で全体を止めない。
func (s *Service) BulkImport(ctx context.Context, in BulkImportRequest, createdByID string) (*BulkImportResult, error) {
	if len(in.Assets) == 0 {
		return nil, ErrInvalid("assets are required")
	}
	if len(in.Assets) > 500 {
		return nil, ErrInvalid("at most 500 assets per import")
	}

	result := &BulkImportResult{Created: make([]AssetResponse, 0, len(in.Assets))}
	for i, req := range in.Assets {
		created, err := s.CreateAsset(ctx, req, createdByID)
		if err != nil {
			result.Errors = append(result.Errors, BulkImportError{Index: i, Message: err.Error()})
			continue
		}
		result.Created = append(result.Created, *created)
	}
	return result, nil
}

func (s *Service) GetAsset(ctx context.Context, id int64) (*AssetResponse, error) {
	a, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("asset not found")
		}
		return nil, err
	}
	resp := s.toResponse(a, s.clock.Now())
	return &resp, nil
}

func (s *Service) GetAssetByCode(ctx context.Context, code string) (*AssetResponse, error) {
	a, err := s.store.GetByCode(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("asset not found")
		}
		return nil, err
	}
	resp := s.toResponse(a, s.clock.Now())
	return &resp, nil
}

func (s *Service) ListAssets(ctx context.Context, q AssetSearchQuery, p Page) ([]AssetResponse, int64, error) {
	rows, total, err := s.store.List(ctx, q, p)
	if err != nil {
		return nil, 0, err
	}
	now := s.clock.Now()
	out := make([]AssetResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, s.toResponse(a, now))
	}
	return out, total, nil
}

func (s *Service) UpdateAsset(ctx context.Context, id int64, in UpdateAssetRequest) (*AssetResponse, error) {
	if in.Condition != nil && !ValidCondition(Condition(*in.Condition)) {
		return nil, ErrInvalid("invalid condition")
	}
	if in.DepreciationRate != nil && (*in.DepreciationRate < 0 || *in.DepreciationRate > 100) {
		return nil, ErrInvalid("depreciation_rate must be between 0 and 100")
	}

	if err := s.store.UpdateByID(ctx, id, in); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("asset not found")
		}
		if db.IsForeignKeyViolation(err) {
			return nil, ErrInvalid("invalid category_id")
		}
		return nil, err
	}

	a, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	_ = s.store.InsertLog(ctx, s.db, &AssetLog{
		LogULID:     s.id.NewULID(now),
		AssetID:     id,
		Action:      LogUpdated,
		Description: fmt.Sprintf("Asset %s updated", a.AssetCode),
	})

	resp := s.toResponse(a, now)
	return &resp, nil
}

// UpdateStatus は手動のステータス遷移（整備入り・故障・復帰など）。
// レンタル・売却起点の遷移は各サービスが自Tx内で行う。
func (s *Service) UpdateStatus(ctx context.Context, id int64, in UpdateStatusRequest) (*AssetResponse, error) {
	to := Status(in.Status)
	if !ValidStatus(to) {
		return nil, ErrInvalid("invalid status")
	}
	// 貸出・返却・売却由来の遷移はAPI経由では受け付けない
	if to == StatusRented || to == StatusSold {
		return nil, ErrInvalid("status " + in.Status + " is set by rental/sale operations only")
	}

	now := s.clock.Now()
	var a *Asset
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		a, err = s.store.LockByID(ctx, tx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("asset not found")
			}
			return err
		}
		if !CanTransition(a.Status, to) {
			return ErrConflict(fmt.Sprintf("cannot transition %s from %s to %s", a.AssetCode, a.Status, to))
		}
		if to == StatusRetired {
			n, err := s.store.OpenRentalItemCount(ctx, tx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrConflict(fmt.Sprintf("asset %s is currently rented", a.AssetCode))
			}
		}
		if err := s.store.UpdateStatusTx(ctx, tx, id, to); err != nil {
			return err
		}
		a.Status = to

		action := LogUpdated
		if to == StatusRetired {
			action = LogRetired
		}
		desc := fmt.Sprintf("Asset %s status changed to %s", a.AssetCode, to)
		if in.Description != nil && *in.Description != "" {
			desc = *in.Description
		}
		return s.store.InsertLog(ctx, tx, &AssetLog{
			LogULID:     s.id.NewULID(now),
			AssetID:     id,
			Action:      action,
			Description: desc,
			Location:    toNullString(in.Location),
		})
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(a, now)
	return &resp, nil
}

// RetireAsset: DELETE の実体。行は消さずステータスを RETIRED にするだけ。
// 未返却の貸出がある場合は拒否する。
func (s *Service) RetireAsset(ctx context.Context, id int64) error {
	now := s.clock.Now()
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		a, err := s.store.LockByID(ctx, tx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("asset not found")
			}
			return err
		}
		if a.Status == StatusRetired {
			return nil // 冪等
		}
		n, err := s.store.OpenRentalItemCount(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict(fmt.Sprintf("cannot retire asset %s: currently rented", a.AssetCode))
		}
		if err := s.store.UpdateStatusTx(ctx, tx, id, StatusRetired); err != nil {
			return err
		}
		return s.store.InsertLog(ctx, tx, &AssetLog{
			LogULID:     s.id.NewULID(now),
			AssetID:     id,
			Action:      LogRetired,
			Description: fmt.Sprintf("Asset %s retired", a.AssetCode),
		})
	})
}

func (s *Service) ScanAsset(ctx context.Context, id int64, in ScanRequest) (*AssetResponse, error) {
	if err := s.store.UpdateScan(ctx, id, in); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("asset not found")
		}
		return nil, err
	}

	now := s.clock.Now()
	loc := "unknown location"
	if in.Location != nil && *in.Location != "" {
		loc = *in.Location
	}
	_ = s.store.InsertLog(ctx, s.db, &AssetLog{
		LogULID:     s.id.NewULID(now),
		AssetID:     id,
		Action:      LogScanned,
		Description: "Asset scanned at " + loc,
		Location:    toNullString(in.Location),
		Latitude:    toNullFloat(in.Latitude),
		Longitude:   toNullFloat(in.Longitude),
	})

	return s.GetAsset(ctx, id)
}

func (s *Service) AddServiceLog(ctx context.Context, assetID int64, in ServiceLogRequest) (*ServiceLogResponse, error) {
	if _, err := s.store.GetByID(ctx, s.db, assetID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("asset not found")
		}
		return nil, err
	}

	l := &ServiceLog{
		AssetID:        assetID,
		ServiceType:    in.ServiceType,
		Description:    in.Description,
		TechnicianName: toNullString(in.TechnicianName),
		Cost:           money.Money(in.Cost),
		Notes:          toNullString(in.Notes),
	}
	if in.NextServiceDue != nil && *in.NextServiceDue != "" {
		t, err := time.Parse("2006-01-02", *in.NextServiceDue)
		if err != nil {
			return nil, ErrInvalid("invalid next_service_due format, expected YYYY-MM-DD")
		}
		l.NextServiceDue = sql.NullTime{Time: t, Valid: true}
	}

	id, err := s.store.InsertServiceLog(ctx, l)
	if err != nil {
		return nil, err
	}
	l.ServiceLogID = id
	l.ServiceDate = s.clock.Now()

	_ = s.store.InsertLog(ctx, s.db, &AssetLog{
		LogULID:     s.id.NewULID(l.ServiceDate),
		AssetID:     assetID,
		Action:      LogServiced,
		Description: fmt.Sprintf("Service: %s - %s", in.ServiceType, in.Description),
	})

	resp := toServiceLogResponse(l)
	return &resp, nil
}

func (s *Service) ListLogs(ctx context.Context, assetID int64, limit int) ([]AssetLogResponse, error) {
	rows, err := s.store.ListLogs(ctx, assetID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]AssetLogResponse, 0, len(rows))
	for _, l := range rows {
		out = append(out, AssetLogResponse{
			LogULID:     l.LogULID,
			Action:      l.Action,
			Description: l.Description,
			Location:    nullToPtr(l.Location),
			Latitude:    nullFloatToPtr(l.Latitude),
			Longitude:   nullFloatToPtr(l.Longitude),
			CreatedAt:   l.CreatedAt,
		})
	}
	return out, nil
}

func (s *Service) ListServiceLogs(ctx context.Context, assetID int64, limit int) ([]ServiceLogResponse, error) {
	rows, err := s.store.ListServiceLogs(ctx, assetID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ServiceLogResponse, 0, len(rows))
	for _, l := range rows {
		out = append(out, toServiceLogResponse(l))
	}
	return out, nil
}

func (s *Service) CreateCategory(ctx context.Context, in CreateCategoryRequest) (*CategoryResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrInvalid("name is required")
	}
	id, err := s.store.InsertCategory(ctx, in.Name, in.Description)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, ErrConflict("category already exists")
		}
		return nil, err
	}
	return &CategoryResponse{CategoryID: id, Name: in.Name, Description: in.Description}, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	rows, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, 0, len(rows))
	for _, c := range rows {
		out = append(out, CategoryResponse{
			CategoryID:  c.CategoryID,
			Name:        c.Name,
			Description: nullToPtr(c.Description),
			AssetCount:  c.AssetCount,
		})
	}
	return out, nil
}

func (s *Service) Utilization(ctx context.Context) (*UtilizationReport, error) {
	byStatus, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	rented := byStatus[StatusRented]
	r := &UtilizationReport{
		TotalAssets:     total,
		AvailableAssets: byStatus[StatusAvailable],
		RentedAssets:    rented,
		StatusBreakdown: byStatus,
	}
	if total > 0 {
		r.UtilizationRate = float64(rented) / float64(total) * 100
	}
	return r, nil
}

func (s *Service) AvailableAssets(ctx context.Context) ([]AssetResponse, error) {
	rows, err := s.store.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	out := make([]AssetResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, s.toResponse(a, now))
	}
	return out, nil
}

// QRCodePNG: ラベル・画面表示用のPNGを生成
func (s *Service) QRCodePNG(ctx context.Context, id int64, size int) ([]byte, error) {
	a, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("asset not found")
		}
		return nil, err
	}
	png, err := QRImagePNG(a.QRPayload, size)
	if err != nil {
		return nil, ErrInternal("failed to encode qr image")
	}
	return png, nil
}

// ===== helpers =====

// 簿価は保存せず参照時に計算する（更新漏れによるズレを無くすため）
func (s *Service) toResponse(a *Asset, asOf time.Time) AssetResponse {
	return AssetResponse{
		AssetID:          a.AssetID,
		AssetCode:        a.AssetCode,
		QRPayload:        a.QRPayload,
		Name:             a.Name,
		CategoryID:       a.CategoryID,
		PurchaseDate:     a.PurchaseDate,
		PurchasePrice:    a.PurchasePrice,
		CurrentValue:     DepreciatedValue(a.PurchasePrice, a.PurchaseDate, asOf, a.DepreciationRate),
		DepreciationRate: a.DepreciationRate,
		Condition:        a.Condition,
		Status:           a.Status,
		Manufacturer:     nullToPtr(a.Manufacturer),
		Model:            nullToPtr(a.Model),
		SerialNumber:     nullToPtr(a.SerialNumber),
		CurrentLocation:  nullToPtr(a.CurrentLocation),
		LastScannedAt:    nullTimeToPtr(a.LastScannedAt),
		Notes:            nullToPtr(a.Notes),
		CreatedAt:        a.CreatedAt,
	}
}

func toServiceLogResponse(l *ServiceLog) ServiceLogResponse {
	return ServiceLogResponse{
		ServiceLogID:   l.ServiceLogID,
		ServiceType:    l.ServiceType,
		Description:    l.Description,
		TechnicianName: nullToPtr(l.TechnicianName),
		Cost:           l.Cost,
		ServiceDate:    l.ServiceDate,
		NextServiceDue: nullTimeToPtr(l.NextServiceDue),
		Notes:          nullToPtr(l.Notes),
	}
}

func toNullString(s *string) (ns sql.NullString) {
	if s != nil && strings.TrimSpace(*s) != "" {
		ns.Valid, ns.String = true, *s
	}
	return
}

func toNullFloat(f *float64) (nf sql.NullFloat64) {
	if f != nil {
		nf.Valid, nf.Float64 = true, *f
	}
	return
}

func nullToPtr(ns sql.NullString) *string {
	if ns.Valid {
		v := ns.String
		return &v
	}
	return nil
}

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		v := nt.Time
		return &v
	}
	return nil
}

func nullFloatToPtr(nf sql.NullFloat64) *float64 {
	if nf.Valid {
		v := nf.Float64
		return &v
	}
	return nil
}
