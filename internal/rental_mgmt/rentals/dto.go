package rentals

import (
	"time"

	"vitalops-backend/internal/platform/money"
)

type Page struct {
	Limit  int
	Offset int
	Order  string
}

type RentalItemRequest struct {
	AssetID     int64   `json:"asset_id" binding:"required"`
	MonthlyRate int64   `json:"monthly_rate" binding:"required"`
	Location    *string `json:"location,omitempty"` // 設置先
}

type CreateRentalRequest struct {
	CustomerID    int64               `json:"customer_id" binding:"required"`
	StartDate     string              `json:"start_date" binding:"required"` // "2006-01-02"
	BillingDay    int                 `json:"billing_day"` // 省略時は1日
	Items         []RentalItemRequest `json:"items" binding:"required"`
	DepositAmount int64               `json:"deposit_amount"`
	Notes         *string             `json:"notes,omitempty"`
}

type ReturnAssetRequest struct {
	AssetID    int64   `json:"asset_id" binding:"required"`
	ReturnDate *string `json:"return_date,omitempty"` // 省略時は当日
	Condition  *string `json:"condition,omitempty"`
	Location   *string `json:"location,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

type ConvertToSaleRequest struct {
	AssetID   int64   `json:"asset_id" binding:"required"`
	SalePrice *int64  `json:"sale_price,omitempty"` // 省略時は簿価×係数
	Discount  *int64  `json:"discount,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type RentalSearchQuery struct {
	Status     *Status
	CustomerID *int64
}

type RentalItemResponse struct {
	RentalItemID    int64       `json:"rental_item_id"`
	AssetID         int64       `json:"asset_id"`
	AssetCode       string      `json:"asset_code"`
	AssetName       string      `json:"asset_name"`
	MonthlyRate     money.Money `json:"monthly_rate"`
	RentedAt        time.Time   `json:"rented_at"`
	RentedLocation  *string     `json:"rented_location,omitempty"`
	ReturnedAt      *time.Time  `json:"returned_at,omitempty"`
	ReturnCondition *string     `json:"return_condition,omitempty"`
	ReturnLocation  *string     `json:"return_location,omitempty"`
}

type RentalResponse struct {
	RentalID      int64                `json:"rental_id"`
	RentalNumber  string               `json:"rental_number"`
	CustomerID    int64                `json:"customer_id"`
	StartDate     time.Time            `json:"start_date"`
	BillingDay    int                  `json:"billing_day"`
	NextBillingDate time.Time          `json:"next_billing_date"`
	Status        Status               `json:"status"`
	DepositAmount money.Money          `json:"deposit_amount"`
	Notes         *string              `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	CompletedAt   *time.Time           `json:"completed_at,omitempty"`
	Items         []RentalItemResponse `json:"items"`
}

type ConvertToSaleResponse struct {
	SaleNumber string          `json:"sale_number"`
	SaleID     int64           `json:"sale_id"`
	AssetID    int64           `json:"asset_id"`
	SalePrice  money.Money     `json:"sale_price"`
	Discount   money.Money     `json:"discount"`
	FinalPrice money.Money     `json:"final_price"`
	Rental     *RentalResponse `json:"rental"`
}
