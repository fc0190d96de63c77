package customers

import (
	"database/sql"
	"time"
)

type Customer struct {
	CustomerID     int64
	Name           string
	Phone          string
	AlternatePhone sql.NullString
	Email          sql.NullString
	Address        sql.NullString
	City           sql.NullString
	ReferredBy     sql.NullString
	Notes          sql.NullString
	CreatedAt      time.Time
}
