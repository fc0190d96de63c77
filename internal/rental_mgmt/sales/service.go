package sales

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"vitalops-backend/internal/platform/db"
	"vitalops-backend/internal/platform/money"
	"vitalops-backend/internal/platform/sequence"
	"vitalops-backend/internal/rental_mgmt/assets"
)

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

type Service struct {
	db    *sql.DB
	store *Store
	clock Clock
	id    IDGen
}

func NewService(d *sql.DB) *Service {
	return &Service{db: d, store: NewStore(d), clock: realClock{}, id: ulidGen{}}
}

// CreateSale は在庫機器の直接販売。AVAILABLE 以外は売れない。
func (s *Service) CreateSale(ctx context.Context, in CreateSaleRequest, soldByID string) (*SaleResponse, error) {
	if in.SalePrice <= 0 {
		return nil, ErrInvalid("sale_price must be > 0")
	}
	final, err := ApplyDiscount(money.Money(in.SalePrice), money.Money(in.Discount))
	if err != nil {
		return nil, ErrInvalid(err.Error())
	}

	now := s.clock.Now()
	sale := &Sale{
		AssetID:    in.AssetID,
		CustomerID: in.CustomerID,
		SaleType:   TypeNewSale,
		SalePrice:  money.Money(in.SalePrice),
		Discount:   money.Money(in.Discount),
		FinalPrice: final,
	}
	if soldByID != "" {
		sale.SoldByID = sql.NullString{String: soldByID, Valid: true}
	}
	if in.Notes != nil && *in.Notes != "" {
		sale.Notes = sql.NullString{String: *in.Notes, Valid: true}
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		code, name, status, err := s.store.LockAssetTx(ctx, tx, in.AssetID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("asset not found")
			}
			return err
		}
		if status != string(assets.StatusAvailable) {
			return ErrConflict(fmt.Sprintf("%s (%s) is %s, not AVAILABLE", name, code, status))
		}

		number, err := sequence.Next(ctx, tx, sequence.Sale, now.Year())
		if err != nil {
			return err
		}
		sale.SaleNumber = number

		id, err := s.store.InsertTx(ctx, tx, sale)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrInvalid("invalid customer_id")
			}
			return err
		}
		sale.SaleID = id

		if err := s.store.SetAssetStatusTx(ctx, tx, in.AssetID, string(assets.StatusSold)); err != nil {
			return err
		}
		desc := fmt.Sprintf("Sold on %s for %s", number, sale.FinalPrice)
		return s.store.InsertAssetLogTx(ctx, tx, s.id.NewULID(now), in.AssetID, assets.LogSold, desc)
	})
	if err != nil {
		return nil, err
	}
	return s.GetSale(ctx, sale.SaleID)
}

func (s *Service) GetSale(ctx context.Context, id int64) (*SaleResponse, error) {
	sale, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("sale not found")
		}
		return nil, err
	}
	resp := toResponse(sale)
	return &resp, nil
}

func (s *Service) ListSales(ctx context.Context, q SaleSearchQuery, p Page) ([]SaleResponse, int64, error) {
	rows, total, err := s.store.List(ctx, q, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SaleResponse, 0, len(rows))
	for _, sale := range rows {
		out = append(out, toResponse(sale))
	}
	return out, total, nil
}

func (s *Service) MonthlyReport(ctx context.Context, year, month int) (*MonthlyReport, error) {
	if year < 2000 || month < 1 || month > 12 {
		return nil, ErrInvalid("invalid year/month")
	}
	totals, err := s.store.MonthlyTotals(ctx, year, month)
	if err != nil {
		return nil, err
	}
	r := &MonthlyReport{Year: year, Month: month}
	if v, ok := totals[TypeNewSale]; ok {
		r.NewSales, r.NewSaleRevenue = v.Count, v.Revenue
	}
	if v, ok := totals[TypeRentalConversion]; ok {
		r.Conversions, r.ConversionRevenue = v.Count, v.Revenue
	}
	r.TotalSales = r.NewSales + r.Conversions
	r.TotalRevenue = r.NewSaleRevenue + r.ConversionRevenue
	return r, nil
}

// ===== helpers =====

func toResponse(s *Sale) SaleResponse {
	resp := SaleResponse{
		SaleID:       s.SaleID,
		SaleNumber:   s.SaleNumber,
		AssetID:      s.AssetID,
		AssetCode:    s.AssetCode,
		AssetName:    s.AssetName,
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		SaleType:     s.SaleType,
		SalePrice:    s.SalePrice,
		Discount:     s.Discount,
		FinalPrice:   s.FinalPrice,
		CreatedAt:    s.CreatedAt,
	}
	if s.RentalID.Valid {
		v := s.RentalID.Int64
		resp.RentalID = &v
	}
	if s.Notes.Valid {
		v := s.Notes.String
		resp.Notes = &v
	}
	return resp
}
