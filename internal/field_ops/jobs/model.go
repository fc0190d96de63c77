package jobs

import (
	"database/sql"
	"time"

	"vitalops-backend/internal/platform/money"
)

type JobType string

const (
	TypeDelivery     JobType = "DELIVERY"
	TypePickup       JobType = "PICKUP"
	TypeService      JobType = "SERVICE"
	TypeInstallation JobType = "INSTALLATION"
)

func ValidJobType(t JobType) bool {
	switch t {
	case TypeDelivery, TypePickup, TypeService, TypeInstallation:
		return true
	}
	return false
}

type Status string

const (
	StatusAssigned   Status = "ASSIGNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// 作業は ASSIGNED → IN_PROGRESS → COMPLETED の一方通行。
// 取消は完了前ならいつでもできる。
var transitions = map[Status][]Status{
	StatusAssigned:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type Job struct {
	JobID            int64
	JobNumber        string
	JobType          JobType
	Status           Status
	CustomerID       int64
	AssetID          sql.NullInt64
	TechnicianID     string
	ScheduledDate    time.Time
	Address          sql.NullString
	StartedAt        sql.NullTime
	CompletedAt      sql.NullTime
	CollectedAmount  money.Money
	CollectionMethod sql.NullString
	CompletionNotes  sql.NullString
	Notes            sql.NullString
	CreatedByID      sql.NullString
	CreatedAt        time.Time

	CustomerName  string
	CustomerPhone string
	AssetCode     sql.NullString
}
