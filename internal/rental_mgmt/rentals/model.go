package rentals

import (
	"database/sql"
	"time"

	"vitalops-backend/internal/platform/money"
)

type Status string

const (
	StatusActive          Status = "ACTIVE"
	StatusPaused          Status = "PAUSED"
	StatusCompleted       Status = "COMPLETED"
	StatusConvertedToSale Status = "CONVERTED_TO_SALE"
	StatusCancelled       Status = "CANCELLED"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusConvertedToSale, StatusCancelled:
		return true
	}
	return false
}

type Rental struct {
	RentalID        int64
	RentalNumber    string
	CustomerID      int64
	StartDate       time.Time
	BillingDay      int
	NextBillingDate time.Time
	Status          Status
	DepositAmount   money.Money
	Notes           sql.NullString
	CreatedByID     sql.NullString
	CreatedAt       time.Time
	CompletedAt     sql.NullTime
}

// RentalItem は機器単位の貸出行。返却も機器単位で記録する。
type RentalItem struct {
	RentalItemID    int64
	RentalID        int64
	AssetID         int64
	MonthlyRate     money.Money
	RentedAt        time.Time
	RentedLocation  sql.NullString
	ReturnedAt      sql.NullTime
	ReturnCondition sql.NullString
	ReturnLocation  sql.NullString

	// JOINで埋める表示用フィールド
	AssetCode string
	AssetName string
}
