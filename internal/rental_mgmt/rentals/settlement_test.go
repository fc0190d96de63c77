package rentals

import (
	"database/sql"
	"testing"
	"time"

	"vitalops-backend/internal/platform/money"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestChargeableMonths(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		want       int
	}{
		{"満2ヶ月+端数5日は3ヶ月", "2024-01-15", "2024-03-20", 3},
		{"1ヶ月未満でも最低1ヶ月", "2024-01-15", "2024-02-10", 1},
		{"ちょうど1ヶ月", "2024-01-15", "2024-02-15", 1},
		{"ちょうど3ヶ月", "2024-01-15", "2024-04-15", 3},
		{"同日返却も1ヶ月", "2024-01-15", "2024-01-15", 1},
		{"翌日返却も1ヶ月", "2024-01-15", "2024-01-16", 1},
		{"年またぎ", "2023-11-10", "2024-02-25", 4},
		{"月末開始", "2024-01-31", "2024-02-29", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := chargeableMonths(d(tc.start), d(tc.end)); got != tc.want {
				t.Errorf("chargeableMonths(%s, %s) = %d, want %d", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestBuildSettlement(t *testing.T) {
	r := &Rental{
		RentalNumber:  "RNT-2024-001",
		StartDate:     d("2024-01-15"),
		DepositAmount: 5_000_00,
	}
	items := []*RentalItem{
		{
			RentalItemID: 1, AssetID: 10, AssetCode: "AST-2024-001", AssetName: "O2 Concentrator",
			MonthlyRate: 5_000_00,
			ReturnedAt:  sql.NullTime{Time: d("2024-03-20"), Valid: true},
		},
		{
			RentalItemID: 2, AssetID: 11, AssetCode: "AST-2024-002", AssetName: "CPAP Machine",
			MonthlyRate: 3_000_00,
			// 未返却。asOf までの請求になる
		},
	}

	s := buildSettlement(r, items, d("2024-02-10"))

	// 機器1: 返却日 3/20 まで3ヶ月 × 5000 = 15000
	if s.Items[0].Months != 3 || s.Items[0].Amount != 15_000_00 {
		t.Errorf("item1 = %d months / %d, want 3 / 1500000", s.Items[0].Months, s.Items[0].Amount)
	}
	// 機器2: asOf 2/10 まで1ヶ月 × 3000 = 3000
	if s.Items[1].Months != 1 || s.Items[1].Amount != 3_000_00 {
		t.Errorf("item2 = %d months / %d, want 1 / 300000", s.Items[1].Months, s.Items[1].Amount)
	}
	if s.TotalAmount != 18_000_00 {
		t.Errorf("TotalAmount = %d, want 1800000", s.TotalAmount)
	}
	// 保証金は参考情報のまま。請求額からは差し引かない
	if want := money.Money(18_000_00); s.BalanceDue != want {
		t.Errorf("BalanceDue = %d, want %d", s.BalanceDue, want)
	}
	if want := money.Money(5_000_00); s.DepositAmount != want {
		t.Errorf("DepositAmount = %d, want %d", s.DepositAmount, want)
	}
}

func TestNextBillingFrom(t *testing.T) {
	cases := []struct {
		name        string
		start, want string
	}{
		{"月の途中", "2024-01-15", "2024-02-15"},
		{"月初", "2024-03-01", "2024-04-01"},
		{"月末は翌月末に丸める", "2024-01-31", "2024-02-29"},
		{"平年の1月末", "2023-01-31", "2023-02-28"},
		{"年またぎ", "2023-12-10", "2024-01-10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextBillingFrom(d(tc.start)); !got.Equal(d(tc.want)) {
				t.Errorf("nextBillingFrom(%s) = %s, want %s", tc.start, got.Format("2006-01-02"), tc.want)
			}
		})
	}
}

func TestValidBillingDay(t *testing.T) {
	for _, day := range []int{1, 15, 28} {
		if !ValidBillingDay(day) {
			t.Errorf("ValidBillingDay(%d) = false, want true", day)
		}
	}
	for _, day := range []int{0, -1, 29, 31} {
		if ValidBillingDay(day) {
			t.Errorf("ValidBillingDay(%d) = true, want false", day)
		}
	}
}

func TestRentalStatusIncludesPaused(t *testing.T) {
	if !ValidStatus(StatusPaused) {
		t.Error("PAUSED は有効なステータスであるべき")
	}
	if ValidStatus(Status("SUSPENDED")) {
		t.Error("未定義のステータスを受け付けている")
	}
}

func TestToResponseCarriesBillingAndItemLocations(t *testing.T) {
	r := &Rental{
		RentalID:        1,
		RentalNumber:    "RNT-2024-002",
		CustomerID:      7,
		StartDate:       d("2024-01-15"),
		BillingDay:      5,
		NextBillingDate: d("2024-02-15"),
		Status:          StatusActive,
	}
	items := []*RentalItem{
		{
			RentalItemID: 1, AssetID: 10, AssetCode: "AST-2024-001", AssetName: "O2 Concentrator",
			MonthlyRate:    5_000_00,
			RentedAt:       d("2024-01-15"),
			RentedLocation: sql.NullString{String: "Andheri West", Valid: true},
		},
	}

	resp := toResponse(r, items)

	if resp.BillingDay != 5 || !resp.NextBillingDate.Equal(d("2024-02-15")) {
		t.Errorf("billing fields = %d / %s", resp.BillingDay, resp.NextBillingDate.Format("2006-01-02"))
	}
	it := resp.Items[0]
	if !it.RentedAt.Equal(d("2024-01-15")) {
		t.Errorf("RentedAt = %s, want 2024-01-15", it.RentedAt.Format("2006-01-02"))
	}
	if it.RentedLocation == nil || *it.RentedLocation != "Andheri West" {
		t.Errorf("RentedLocation = %v, want Andheri West", it.RentedLocation)
	}
}
