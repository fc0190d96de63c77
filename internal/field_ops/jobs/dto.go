package jobs

import (
	"time"

	"vitalops-backend/internal/platform/money"
)

type Page struct {
	Limit  int
	Offset int
	Order  string
}

type CreateJobRequest struct {
	JobType       string  `json:"job_type" binding:"required"`
	CustomerID    int64   `json:"customer_id" binding:"required"`
	AssetID       *int64  `json:"asset_id,omitempty"`
	TechnicianID  string  `json:"technician_id" binding:"required"`
	ScheduledDate string  `json:"scheduled_date" binding:"required"` // "2006-01-02"
	Address       *string `json:"address,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

type StartJobRequest struct {
	// 対象機器のQRペイロード。機器付きジョブでは照合必須
	ScannedPayload *string `json:"scanned_payload,omitempty"`
}

type CompleteJobRequest struct {
	CollectedAmount  int64   `json:"collected_amount"`
	CollectionMethod *string `json:"collection_method,omitempty"`
	CompletionNotes  *string `json:"completion_notes,omitempty"`
}

type JobSearchQuery struct {
	Status       *Status
	JobType      *JobType
	TechnicianID *string
	Date         *time.Time
}

type JobResponse struct {
	JobID            int64       `json:"job_id"`
	JobNumber        string      `json:"job_number"`
	JobType          JobType     `json:"job_type"`
	Status           Status      `json:"status"`
	CustomerID       int64       `json:"customer_id"`
	CustomerName     string      `json:"customer_name"`
	CustomerPhone    string      `json:"customer_phone"`
	AssetID          *int64      `json:"asset_id,omitempty"`
	AssetCode        *string     `json:"asset_code,omitempty"`
	TechnicianID     string      `json:"technician_id"`
	ScheduledDate    time.Time   `json:"scheduled_date"`
	Address          *string     `json:"address,omitempty"`
	StartedAt        *time.Time  `json:"started_at,omitempty"`
	CompletedAt      *time.Time  `json:"completed_at,omitempty"`
	CollectedAmount  money.Money `json:"collected_amount"`
	CollectionMethod *string     `json:"collection_method,omitempty"`
	CompletionNotes  *string     `json:"completion_notes,omitempty"`
	Notes            *string     `json:"notes,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}
