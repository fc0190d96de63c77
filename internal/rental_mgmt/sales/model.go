package sales

import (
	"database/sql"
	"fmt"
	"time"

	"vitalops-backend/internal/platform/money"
)

type SaleType string

const (
	TypeNewSale          SaleType = "NEW_SALE"
	TypeRentalConversion SaleType = "RENTAL_CONVERSION"
)

func ValidSaleType(t SaleType) bool {
	return t == TypeNewSale || t == TypeRentalConversion
}

type Sale struct {
	SaleID     int64
	SaleNumber string
	AssetID    int64
	CustomerID int64
	RentalID   sql.NullInt64
	SaleType   SaleType
	SalePrice  money.Money
	Discount   money.Money
	FinalPrice money.Money
	SoldByID   sql.NullString
	Notes      sql.NullString
	CreatedAt  time.Time

	// JOINで埋める表示用フィールド
	AssetCode    string
	AssetName    string
	CustomerName string
}

// ApplyDiscount は割引後の最終販売価格。割引は0以上かつ販売価格以下であること。
func ApplyDiscount(price, discount money.Money) (money.Money, error) {
	if discount < 0 {
		return 0, fmt.Errorf("discount must be >= 0")
	}
	if discount > price {
		return 0, fmt.Errorf("discount %s exceeds sale price %s", discount, price)
	}
	return price - discount, nil
}
