package sleepstudies

import (
	"time"

	"vitalops-backend/internal/platform/money"
)

type Page struct {
	Limit  int
	Offset int
	Order  string
}

type BookStudyRequest struct {
	CustomerID    int64   `json:"customer_id" binding:"required"`
	DeviceAssetID *int64  `json:"device_asset_id,omitempty"`
	StudyDate     string  `json:"study_date" binding:"required"` // "2006-01-02"
	Amount        int64   `json:"amount" binding:"required"`
	Notes         *string `json:"notes,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UploadReportRequest struct {
	ReportPath string `json:"report_path" binding:"required"`
}

type SendRecommendationRequest struct {
	Recommendation string `json:"recommendation" binding:"required"`
}

type StudySearchQuery struct {
	Status     *Status
	CustomerID *int64
}

type StudyResponse struct {
	StudyID        int64       `json:"study_id"`
	StudyNumber    string      `json:"study_number"`
	CustomerID     int64       `json:"customer_id"`
	CustomerName   string      `json:"customer_name"`
	DeviceAssetID  *int64      `json:"device_asset_id,omitempty"`
	DeviceCode     *string     `json:"device_code,omitempty"`
	Status         Status      `json:"status"`
	StudyDate      time.Time   `json:"study_date"`
	Amount         money.Money `json:"amount"`
	ReportPath     *string     `json:"report_path,omitempty"`
	Recommendation *string     `json:"recommendation,omitempty"`
	Notes          *string     `json:"notes,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}
