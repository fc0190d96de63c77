package money

import "testing"

func TestString(t *testing.T) {
	tests := []struct {
		in   Money
		want string
	}{
		{0, "₹0.00"},
		{100, "₹1.00"},
		{500000, "₹5,000.00"},
		{150000000, "₹15,00,000.00"},
		{123456789, "₹12,34,567.89"},
		{-500050, "-₹5,000.50"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Money(%d).String() = %q, want %q", int64(tt.in), got, tt.want)
		}
	}
}

func TestFromRupees(t *testing.T) {
	if got := FromRupees(5000); got != 500000 {
		t.Errorf("FromRupees(5000) = %d, want 500000", got)
	}
}
