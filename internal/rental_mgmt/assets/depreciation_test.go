package assets

import (
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

func TestDepreciatedValue(t *testing.T) {
	cases := []struct {
		name     string
		price    money.Money
		bought   string
		asOf     string
		rate     float64
		expected money.Money
	}{
		{"購入直後は満額", 1_500_000_00, "2024-01-15", "2024-06-01", 10, 1_500_000_00},
		{"丸1年で1割減", 1_500_000_00, "2023-01-15", "2024-01-15", 10, 1_350_000_00},
		{"1年未満は切り捨て", 1_500_000_00, "2023-01-15", "2024-01-14", 10, 1_500_000_00},
		{"3年経過", 1_000_000_00, "2021-03-01", "2024-03-10", 15, 550_000_00},
		{"償却しきってもゼロ止まり", 100_000_00, "2010-01-01", "2024-01-01", 10, 0},
		{"rate 0 なら減らない", 500_000_00, "2020-01-01", "2024-01-01", 0, 500_000_00},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DepreciatedValue(tc.price, d(tc.bought), d(tc.asOf), tc.rate)
			if got != tc.expected {
				t.Errorf("DepreciatedValue = %d, want %d", got, tc.expected)
			}
		})
	}
}

func TestFairSalePrice(t *testing.T) {
	// 簿価 135万 × 0.65 = 87.75万
	got := FairSalePrice(1_500_000_00, d("2023-01-15"), d("2024-01-15"), 10, 0)
	want := money.Money(877_500_00)
	if got != want {
		t.Errorf("FairSalePrice = %d, want %d", got, want)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusAvailable, StatusRented, true},
		{StatusAvailable, StatusSold, true},
		{StatusRented, StatusAvailable, true},
		{StatusRented, StatusRetired, false},
		{StatusRented, StatusInService, false},
		{StatusDamaged, StatusInService, true},
		{StatusSold, StatusRented, false},
		{StatusRetired, StatusAvailable, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestQRPayload(t *testing.T) {
	if got := QRPayload("AST-2025-042"); got != "VITALOPS:ASSET:AST-2025-042" {
		t.Errorf("QRPayload = %q", got)
	}
}
