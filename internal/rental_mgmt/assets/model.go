package assets

import (
	"database/sql"
	"time"

	"vitalops-backend/internal/platform/money"
)

// Status は資産の貸出・売却・廃棄を通じたライフサイクル状態
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusRented    Status = "RENTED"
	StatusInService Status = "IN_SERVICE"
	StatusDamaged   Status = "DAMAGED"
	StatusSold      Status = "SOLD"
	StatusRetired   Status = "RETIRED"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusRented, StatusInService, StatusDamaged, StatusSold, StatusRetired:
		return true
	}
	return false
}

// transitions: 通常操作で許される遷移。RETIRED への遷移は別途
// 「未返却の貸出が無いこと」を店舗側でロックした上で判定する。
var transitions = map[Status][]Status{
	StatusAvailable: {StatusRented, StatusInService, StatusDamaged, StatusSold, StatusRetired},
	StatusRented:    {StatusAvailable, StatusSold, StatusDamaged},
	StatusInService: {StatusAvailable, StatusDamaged, StatusRetired},
	StatusDamaged:   {StatusInService, StatusAvailable, StatusRetired},
	StatusSold:      {StatusRetired},
	StatusRetired:   {},
}

// CanTransition: from → to が許可された遷移か
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type Condition string

const (
	ConditionNew       Condition = "NEW"
	ConditionExcellent Condition = "EXCELLENT"
	ConditionGood      Condition = "GOOD"
	ConditionFair      Condition = "FAIR"
	ConditionPoor      Condition = "POOR"
	ConditionDamaged   Condition = "DAMAGED"
)

func ValidCondition(c Condition) bool {
	switch c {
	case ConditionNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged:
		return true
	}
	return false
}

// Asset は assets テーブルの1行
type Asset struct {
	AssetID          int64
	AssetCode        string
	QRPayload        string
	Name             string
	CategoryID       int64
	PurchaseDate     time.Time
	PurchasePrice    money.Money
	CurrentValue     money.Money
	DepreciationRate float64
	Condition        Condition
	Status           Status
	Manufacturer     sql.NullString
	Model            sql.NullString
	SerialNumber     sql.NullString
	CurrentLocation  sql.NullString
	LastScannedAt    sql.NullTime
	Notes            sql.NullString
	CreatedByID      sql.NullString
	CreatedAt        time.Time
}

// ログの action 種別
const (
	LogCreated  = "CREATED"
	LogUpdated  = "UPDATED"
	LogRented   = "RENTED"
	LogReturned = "RETURNED"
	LogSold     = "SOLD"
	LogServiced = "SERVICED"
	LogScanned  = "SCANNED"
	LogRetired  = "RETIRED"
)

// AssetLog は追記専用の履歴。更新・削除は行わない。
type AssetLog struct {
	LogID       int64
	LogULID     string
	AssetID     int64
	Action      string
	Description string
	Location    sql.NullString
	Latitude    sql.NullFloat64
	Longitude   sql.NullFloat64
	CreatedAt   time.Time
}

type ServiceLog struct {
	ServiceLogID   int64
	AssetID        int64
	ServiceType    string
	Description    string
	TechnicianName sql.NullString
	Cost           money.Money
	ServiceDate    time.Time
	NextServiceDue sql.NullTime
	Notes          sql.NullString
}

type Category struct {
	CategoryID  int64
	Name        string
	Description sql.NullString
	AssetCount  int64
}
