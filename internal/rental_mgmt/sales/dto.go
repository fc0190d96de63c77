package sales

import (
	"time"

	"vitalops-backend/internal/platform/money"
)

type Page struct {
	Limit  int
	Offset int
	Order  string
}

type CreateSaleRequest struct {
	AssetID    int64   `json:"asset_id" binding:"required"`
	CustomerID int64   `json:"customer_id" binding:"required"`
	SalePrice  int64   `json:"sale_price" binding:"required"`
	Discount   int64   `json:"discount"`
	Notes      *string `json:"notes,omitempty"`
}

type SaleSearchQuery struct {
	SaleType   *SaleType
	CustomerID *int64
	From       *time.Time
	To         *time.Time
}

type SaleResponse struct {
	SaleID       int64       `json:"sale_id"`
	SaleNumber   string      `json:"sale_number"`
	AssetID      int64       `json:"asset_id"`
	AssetCode    string      `json:"asset_code"`
	AssetName    string      `json:"asset_name"`
	CustomerID   int64       `json:"customer_id"`
	CustomerName string      `json:"customer_name"`
	RentalID     *int64      `json:"rental_id,omitempty"`
	SaleType     SaleType    `json:"sale_type"`
	SalePrice    money.Money `json:"sale_price"`
	Discount     money.Money `json:"discount"`
	FinalPrice   money.Money `json:"final_price"`
	Notes        *string     `json:"notes,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// MonthlyReport は月次売上の集計
type MonthlyReport struct {
	Year            int         `json:"year"`
	Month           int         `json:"month"`
	TotalSales      int64       `json:"total_sales"`
	TotalRevenue    money.Money `json:"total_revenue"`
	NewSales        int64       `json:"new_sales"`
	NewSaleRevenue  money.Money `json:"new_sale_revenue"`
	Conversions     int64       `json:"conversions"`
	ConversionRevenue money.Money `json:"conversion_revenue"`
}
