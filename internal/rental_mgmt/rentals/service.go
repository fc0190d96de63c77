package rentals

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
	"vitalops-backend/internal/rental_mgmt/assets"
	"vitalops-backend/internal/rental_mgmt/sales"
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

// CreateRental は複数機器をまとめて貸し出す。全件を行ロックしてから
// 在庫判定するため、同じ機器が二重に貸し出されることはない。
// 貸出不可の機器がひとつでもあれば全体を失敗させる。
func (s *Service) CreateRental(ctx context.Context, in CreateRentalRequest, createdByID string) (*RentalResponse, error) {
	if in.CustomerID == 0 || len(in.Items) == 0 {
		return nil, ErrInvalid("customer_id and items are required")
	}
	startDate, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return nil, ErrInvalid("invalid start_date format, expected YYYY-MM-DD")
	}
	if in.DepositAmount < 0 {
		return nil, ErrInvalid("deposit_amount must be >= 0")
	}
	billingDay := DefaultBillingDay
	if in.BillingDay != 0 {
		if !ValidBillingDay(in.BillingDay) {
			return nil, ErrInvalid("billing_day must be between 1 and 28")
		}
		billingDay = in.BillingDay
	}
	seen := make(map[int64]bool, len(in.Items))
	for _, it := range in.Items {
		if it.MonthlyRate <= 0 {
			return nil, ErrInvalid(fmt.Sprintf("monthly_rate for asset %d must be > 0", it.AssetID))
		}
		if seen[it.AssetID] {
			return nil, ErrInvalid(fmt.Sprintf("asset %d listed twice", it.AssetID))
		}
		seen[it.AssetID] = true
	}

	now := s.clock.Now()
	r := &Rental{
		CustomerID:      in.CustomerID,
		StartDate:       startDate,
		BillingDay:      billingDay,
		NextBillingDate: nextBillingFrom(startDate),
		Status:          StatusActive,
		DepositAmount:   money.Money(in.DepositAmount),
	}
	if in.Notes != nil && *in.Notes != "" {
		r.Notes = sql.NullString{String: *in.Notes, Valid: true}
	}
	if createdByID != "" {
		r.CreatedByID = sql.NullString{String: createdByID, Valid: true}
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		// 全機器をロックし、貸出不可のものを一覧で返す
		locked := make([]*lockedAsset, 0, len(in.Items))
		var unavailable []string
		for _, it := range in.Items {
			a, err := s.store.LockAssetTx(ctx, tx, it.AssetID)
			if err != nil {
				if err == sql.ErrNoRows {
					return ErrNotFound(fmt.Sprintf("asset %d not found", it.AssetID))
				}
				return err
			}
			if a.Status != string(assets.StatusAvailable) {
				unavailable = append(unavailable, fmt.Sprintf("%s (%s)", a.Name, a.AssetCode))
				continue
			}
			locked = append(locked, a)
		}
		if len(unavailable) > 0 {
			return ErrConflict("assets not available: " + strings.Join(unavailable, ", "))
		}

		number, err := sequence.Next(ctx, tx, sequence.Rental, now.Year())
		if err != nil {
			return err
		}
		r.RentalNumber = number

		rentalID, err := s.store.InsertTx(ctx, tx, r)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrInvalid("invalid customer_id")
			}
			return err
		}
		r.RentalID = rentalID

		for i, a := range locked {
			item := &RentalItem{
				RentalID:    rentalID,
				AssetID:     a.AssetID,
				MonthlyRate: money.Money(in.Items[i].MonthlyRate),
			}
			if loc := in.Items[i].Location; loc != nil && *loc != "" {
				item.RentedLocation = sql.NullString{String: *loc, Valid: true}
			}
			if _, err := s.store.InsertItemTx(ctx, tx, item); err != nil {
				return err
			}
			if err := s.store.SetAssetStatusTx(ctx, tx, a.AssetID, string(assets.StatusRented)); err != nil {
				return err
			}
			desc := fmt.Sprintf("Rented on %s to customer %d", number, in.CustomerID)
			if err := s.store.InsertAssetLogTx(ctx, tx, s.id.NewULID(now), a.AssetID, assets.LogRented, desc, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetRental(ctx, r.RentalID)
}

func (s *Service) GetRental(ctx context.Context, id int64) (*RentalResponse, error) {
	r, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("rental not found")
		}
		return nil, err
	}
	items, err := s.store.ListItems(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(r, items)
	return &resp, nil
}

func (s *Service) ListRentals(ctx context.Context, q RentalSearchQuery, p Page) ([]RentalResponse, int64, error) {
	rows, total, err := s.store.List(ctx, q, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]RentalResponse, 0, len(rows))
	for _, r := range rows {
		items, err := s.store.ListItems(ctx, s.db, r.RentalID)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, toResponse(r, items))
	}
	return out, total, nil
}

// ReturnAsset は機器単位の返却。返却によって全機器が返り終わった場合、
// 同じTx内でレンタル自体を COMPLETED に落とす。
func (s *Service) ReturnAsset(ctx context.Context, rentalID int64, in ReturnAssetRequest) (*RentalResponse, error) {
	now := s.clock.Now()
	returnedAt := now
	if in.ReturnDate != nil && *in.ReturnDate != "" {
		t, err := time.Parse("2006-01-02", *in.ReturnDate)
		if err != nil {
			return nil, ErrInvalid("invalid return_date format, expected YYYY-MM-DD")
		}
		returnedAt = t
	}
	if in.Condition != nil && !assets.ValidCondition(assets.Condition(*in.Condition)) {
		return nil, ErrInvalid("invalid condition")
	}

	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		r, err := s.store.LockByID(ctx, tx, rentalID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("rental not found")
			}
			return err
		}
		if r.Status != StatusActive {
			return ErrConflict(fmt.Sprintf("rental %s is %s, not ACTIVE", r.RentalNumber, r.Status))
		}
		if returnedAt.Before(r.StartDate) {
			return ErrInvalid("return_date is before rental start date")
		}

		item, err := s.store.FindOpenItemTx(ctx, tx, rentalID, in.AssetID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("no unreturned item for this asset on this rental")
			}
			return err
		}

		if err := s.store.MarkItemReturnedTx(ctx, tx, item.RentalItemID, returnedAt, in.Condition, in.Location); err != nil {
			return err
		}

		// 破損返却なら DAMAGED、それ以外は AVAILABLE に戻す
		back := assets.StatusAvailable
		if in.Condition != nil && assets.Condition(*in.Condition) == assets.ConditionDamaged {
			back = assets.StatusDamaged
		}
		if err := s.store.SetAssetStatusTx(ctx, tx, in.AssetID, string(back)); err != nil {
			return err
		}
		desc := fmt.Sprintf("Returned from %s", r.RentalNumber)
		if err := s.store.InsertAssetLogTx(ctx, tx, s.id.NewULID(now), in.AssetID, assets.LogReturned, desc, in.Location); err != nil {
			return err
		}

		open, err := s.store.OpenItemCountTx(ctx, tx, rentalID)
		if err != nil {
			return err
		}
		if open == 0 {
			done := now
			if err := s.store.UpdateStatusTx(ctx, tx, rentalID, StatusCompleted, &done); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetRental(ctx, rentalID)
}

// GetSettlement は現時点（または全返却済みなら各返却日）までの精算書を返す
func (s *Service) GetSettlement(ctx context.Context, rentalID int64) (*Settlement, error) {
	r, err := s.store.GetByID(ctx, s.db, rentalID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("rental not found")
		}
		return nil, err
	}
	if r.Status == StatusCancelled {
		return nil, ErrConflict("rental is cancelled")
	}
	items, err := s.store.ListItems(ctx, s.db, rentalID)
	if err != nil {
		return nil, err
	}
	return buildSettlement(r, items, s.clock.Now()), nil
}

// ConvertToSale は貸出中の機器をそのまま売却に切り替える。
// 価格未指定なら簿価×係数を採用する。全機器が返却・売却済みになった時点で
// レンタルを CONVERTED_TO_SALE で締める。
func (s *Service) ConvertToSale(ctx context.Context, rentalID int64, in ConvertToSaleRequest, soldByID string) (*ConvertToSaleResponse, error) {
	if in.SalePrice != nil && *in.SalePrice <= 0 {
		return nil, ErrInvalid("sale_price must be > 0")
	}
	discount := money.Money(0)
	if in.Discount != nil {
		discount = money.Money(*in.Discount)
	}

	now := s.clock.Now()
	out := &ConvertToSaleResponse{AssetID: in.AssetID}

	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		r, err := s.store.LockByID(ctx, tx, rentalID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("rental not found")
			}
			return err
		}
		if r.Status != StatusActive {
			return ErrConflict(fmt.Sprintf("rental %s is %s, not ACTIVE", r.RentalNumber, r.Status))
		}

		item, err := s.store.FindOpenItemTx(ctx, tx, rentalID, in.AssetID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("no unreturned item for this asset on this rental")
			}
			return err
		}

		a, err := s.store.LockAssetTx(ctx, tx, in.AssetID)
		if err != nil {
			return err
		}

		price := money.Money(0)
		if in.SalePrice != nil {
			price = money.Money(*in.SalePrice)
		} else {
			price = assets.FairSalePrice(a.PurchasePrice, a.PurchaseDate, now, a.DepreciationRate, assets.DefaultConversionFactor)
		}
		final, err := sales.ApplyDiscount(price, discount)
		if err != nil {
			return ErrInvalid(err.Error())
		}

		saleNumber, err := sequence.Next(ctx, tx, sequence.Sale, now.Year())
		if err != nil {
			return err
		}

		var sold sql.NullString
		if soldByID != "" {
			sold = sql.NullString{String: soldByID, Valid: true}
		}
		saleID, err := s.store.InsertConversionSaleTx(ctx, tx, saleNumber, in.AssetID, r.CustomerID, rentalID, price, discount, final, sold, in.Notes)
		if err != nil {
			return err
		}

		// 売却に切り替えた機器は返却扱いで行を閉じる
		if err := s.store.MarkItemReturnedTx(ctx, tx, item.RentalItemID, now, nil, nil); err != nil {
			return err
		}
		if err := s.store.SetAssetStatusTx(ctx, tx, in.AssetID, string(assets.StatusSold)); err != nil {
			return err
		}
		desc := fmt.Sprintf("Sold via rental conversion %s for %s", saleNumber, final)
		if err := s.store.InsertAssetLogTx(ctx, tx, s.id.NewULID(now), in.AssetID, assets.LogSold, desc, nil); err != nil {
			return err
		}

		open, err := s.store.OpenItemCountTx(ctx, tx, rentalID)
		if err != nil {
			return err
		}
		if open == 0 {
			done := now
			if err := s.store.UpdateStatusTx(ctx, tx, rentalID, StatusConvertedToSale, &done); err != nil {
				return err
			}
		}

		out.SaleNumber = saleNumber
		out.SaleID = saleID
		out.SalePrice = price
		out.Discount = discount
		out.FinalPrice = final
		return nil
	})
	if err != nil {
		return nil, err
	}

	rental, err := s.GetRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	out.Rental = rental
	return out, nil
}

// PauseRental は請求の一時停止。機器は貸出先に置いたままにする。
func (s *Service) PauseRental(ctx context.Context, rentalID int64) (*RentalResponse, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		r, err := s.store.LockByID(ctx, tx, rentalID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("rental not found")
			}
			return err
		}
		if r.Status != StatusActive {
			return ErrConflict(fmt.Sprintf("rental %s is %s, not ACTIVE", r.RentalNumber, r.Status))
		}
		return s.store.UpdateStatusTx(ctx, tx, rentalID, StatusPaused, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRental(ctx, rentalID)
}

// ResumeRental は一時停止からの再開。返却や転換はACTIVEに戻してから行う。
func (s *Service) ResumeRental(ctx context.Context, rentalID int64) (*RentalResponse, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		r, err := s.store.LockByID(ctx, tx, rentalID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("rental not found")
			}
			return err
		}
		if r.Status != StatusPaused {
			return ErrConflict(fmt.Sprintf("rental %s is %s, not PAUSED", r.RentalNumber, r.Status))
		}
		return s.store.UpdateStatusTx(ctx, tx, rentalID, StatusActive, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRental(ctx, rentalID)
}

// CancelRental は開始直後の取り消し用。貸出中の全機器を AVAILABLE に戻す。
func (s *Service) CancelRental(ctx context.Context, rentalID int64) (*RentalResponse, error) {
	now := s.clock.Now()
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		r, err := s.store.LockByID(ctx, tx, rentalID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("rental not found")
			}
			return err
		}
		if r.Status != StatusActive {
			return ErrConflict(fmt.Sprintf("rental %s is %s, not ACTIVE", r.RentalNumber, r.Status))
		}
		items, err := s.store.ListItems(ctx, tx, rentalID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if it.ReturnedAt.Valid {
				continue
			}
			if err := s.store.MarkItemReturnedTx(ctx, tx, it.RentalItemID, now, nil, nil); err != nil {
				return err
			}
			if err := s.store.SetAssetStatusTx(ctx, tx, it.AssetID, string(assets.StatusAvailable)); err != nil {
				return err
			}
			desc := fmt.Sprintf("Rental %s cancelled", r.RentalNumber)
			if err := s.store.InsertAssetLogTx(ctx, tx, s.id.NewULID(now), it.AssetID, assets.LogReturned, desc, nil); err != nil {
				return err
			}
		}
		done := now
		return s.store.UpdateStatusTx(ctx, tx, rentalID, StatusCancelled, &done)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRental(ctx, rentalID)
}

// ===== helpers =====

func toResponse(r *Rental, items []*RentalItem) RentalResponse {
	resp := RentalResponse{
		RentalID:        r.RentalID,
		RentalNumber:    r.RentalNumber,
		CustomerID:      r.CustomerID,
		StartDate:       r.StartDate,
		BillingDay:      r.BillingDay,
		NextBillingDate: r.NextBillingDate,
		Status:          r.Status,
		DepositAmount:   r.DepositAmount,
		CreatedAt:       r.CreatedAt,
		Items:           make([]RentalItemResponse, 0, len(items)),
	}
	if r.Notes.Valid {
		v := r.Notes.String
		resp.Notes = &v
	}
	if r.CompletedAt.Valid {
		v := r.CompletedAt.Time
		resp.CompletedAt = &v
	}
	for _, it := range items {
		ir := RentalItemResponse{
			RentalItemID: it.RentalItemID,
			AssetID:      it.AssetID,
			AssetCode:    it.AssetCode,
			AssetName:    it.AssetName,
			MonthlyRate:  it.MonthlyRate,
			RentedAt:     it.RentedAt,
		}
		if it.RentedLocation.Valid {
			v := it.RentedLocation.String
			ir.RentedLocation = &v
		}
		if it.ReturnedAt.Valid {
			v := it.ReturnedAt.Time
			ir.ReturnedAt = &v
		}
		if it.ReturnCondition.Valid {
			v := it.ReturnCondition.String
			ir.ReturnCondition = &v
		}
		if it.ReturnLocation.Valid {
			v := it.ReturnLocation.String
			ir.ReturnLocation = &v
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
