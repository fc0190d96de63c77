package sales

import (
	"testing"

	"vitalops-backend/internal/platform/money"
)

func TestApplyDiscount(t *testing.T) {
	cases := []struct {
		name     string
		price    money.Money
		discount money.Money
		want     money.Money
		wantErr  bool
	}{
		{"割引なし", 100_000_00, 0, 100_000_00, false},
		{"通常の割引", 100_000_00, 15_000_00, 85_000_00, false},
		{"全額割引はゼロ円販売", 100_000_00, 100_000_00, 0, false},
		{"価格超過の割引はエラー", 100_000_00, 100_000_01, 0, true},
		{"負の割引はエラー", 100_000_00, -1, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ApplyDiscount(tc.price, tc.discount)
			if tc.wantErr {
				if err == nil {
					t.Fatal("error expected")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ApplyDiscount(%d, %d) = %d, want %d", tc.price, tc.discount, got, tc.want)
			}
		})
	}
}
