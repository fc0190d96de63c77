package sleepstudies

import (
	"database/sql"
	"time"

	"vitalops-backend/internal/platform/money"
)

type Status string

const (
	StatusBooked             Status = "BOOKED"
	StatusDeviceDelivered    Status = "DEVICE_DELIVERED"
	StatusStudyCompleted     Status = "STUDY_COMPLETED"
	StatusReportUploaded     Status = "REPORT_UPLOADED"
	StatusRecommendationSent Status = "RECOMMENDATION_SENT"
	StatusCancelled          Status = "CANCELLED"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusBooked, StatusDeviceDelivered, StatusStudyCompleted,
		StatusReportUploaded, StatusRecommendationSent, StatusCancelled:
		return true
	}
	return false
}

// 検査は予約から推奨送付まで一本道。完了後の取消はできない。
var transitions = map[Status][]Status{
	StatusBooked:             {StatusDeviceDelivered, StatusCancelled},
	StatusDeviceDelivered:    {StatusStudyCompleted, StatusCancelled},
	StatusStudyCompleted:     {StatusReportUploaded, StatusCancelled},
	StatusReportUploaded:     {StatusRecommendationSent},
	StatusRecommendationSent: {},
	StatusCancelled:          {},
}

func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type SleepStudy struct {
	StudyID        int64
	StudyNumber    string
	CustomerID     int64
	DeviceAssetID  sql.NullInt64
	Status         Status
	StudyDate      time.Time
	Amount         money.Money
	ReportPath     sql.NullString
	Recommendation sql.NullString
	Notes          sql.NullString
	CreatedByID    sql.NullString
	CreatedAt      time.Time

	CustomerName  string
	CustomerPhone string
	DeviceCode    sql.NullString
}
