package assets

import (
	"time"

	"vitalops-backend/internal/platform/money"
)

type Page struct {
	Limit  int
	Offset int
	Order  string
}

type CreateAssetRequest struct {
	Name             string  `json:"name" binding:"required"`
	CategoryID       int64   `json:"category_id" binding:"required"`
	PurchaseDate     string  `json:"purchase_date" binding:"required"` // "2006-01-02"
	PurchasePrice    int64   `json:"purchase_price" binding:"required"`
	DepreciationRate float64 `json:"depreciation_rate"`
	Condition        *string `json:"condition,omitempty"`
	Manufacturer     *string `json:"manufacturer,omitempty"`
	Model            *string `json:"model,omitempty"`
	SerialNumber     *string `json:"serial_number,omitempty"`
	CurrentLocation  *string `json:"current_location,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

type UpdateAssetRequest struct {
	Name             *string  `json:"name,omitempty"`
	CategoryID       *int64   `json:"category_id,omitempty"`
	DepreciationRate *float64 `json:"depreciation_rate,omitempty"`
	Condition        *string  `json:"condition,omitempty"`
	Manufacturer     *string  `json:"manufacturer,omitempty"`
	Model            *string  `json:"model,omitempty"`
	SerialNumber     *string  `json:"serial_number,omitempty"`
	CurrentLocation  *string  `json:"current_location,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

type UpdateStatusRequest struct {
	Status      string  `json:"status" binding:"required"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
}

type ScanRequest struct {
	Location  *string  `json:"location,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type ServiceLogRequest struct {
	ServiceType    string  `json:"service_type" binding:"required"`
	Description    string  `json:"description" binding:"required"`
	TechnicianName *string `json:"technician_name,omitempty"`
	Cost           int64   `json:"cost"`
	NextServiceDue *string `json:"next_service_due,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

type BulkImportRequest struct {
	Assets []CreateAssetRequest `json:"assets" binding:"required"`
}

// BulkImportResult は行単位の取り込み結果。失敗行は理由つきで返す
type BulkImportResult struct {
	Created []AssetResponse   `json:"created"`
	Errors  []BulkImportError `json:"errors,omitempty"`
}

type BulkImportError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

type AssetSearchQuery struct {
	Status     *Status
	CategoryID *int64
	Search     *string
}

type AssetResponse struct {
	AssetID          int64       `json:"asset_id"`
	AssetCode        string      `json:"asset_code"`
	QRPayload        string      `json:"qr_payload"`
	Name             string      `json:"name"`
	CategoryID       int64       `json:"category_id"`
	PurchaseDate     time.Time   `json:"purchase_date"`
	PurchasePrice    money.Money `json:"purchase_price"`
	CurrentValue     money.Money `json:"current_value"`
	DepreciationRate float64     `json:"depreciation_rate"`
	Condition        Condition   `json:"condition"`
	Status           Status      `json:"status"`
	Manufacturer     *string     `json:"manufacturer,omitempty"`
	Model            *string     `json:"model,omitempty"`
	SerialNumber     *string     `json:"serial_number,omitempty"`
	CurrentLocation  *string     `json:"current_location,omitempty"`
	LastScannedAt    *time.Time  `json:"last_scanned_at,omitempty"`
	Notes            *string     `json:"notes,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

type AssetLogResponse struct {
	LogULID     string     `json:"log_ulid"`
	Action      string     `json:"action"`
	Description string     `json:"description"`
	Location    *string    `json:"location,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ServiceLogResponse struct {
	ServiceLogID   int64       `json:"service_log_id"`
	ServiceType    string      `json:"service_type"`
	Description    string      `json:"description"`
	TechnicianName *string     `json:"technician_name,omitempty"`
	Cost           money.Money `json:"cost"`
	ServiceDate    time.Time   `json:"service_date"`
	NextServiceDue *time.Time  `json:"next_service_due,omitempty"`
	Notes          *string     `json:"notes,omitempty"`
}

type CategoryResponse struct {
	CategoryID  int64   `json:"category_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	AssetCount  int64   `json:"asset_count"`
}

type UtilizationReport struct {
	TotalAssets     int64            `json:"total_assets"`
	AvailableAssets int64            `json:"available_assets"`
	RentedAssets    int64            `json:"rented_assets"`
	UtilizationRate float64          `json:"utilization_rate"`
	StatusBreakdown map[Status]int64 `json:"status_breakdown"`
}
