package invoices

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

func TestReconcile(t *testing.T) {
	cases := []struct {
		name       string
		total      money.Money
		paid       money.Money
		status     Status
		amount     money.Money
		wantStatus Status
		wantDue    money.Money
		wantPaid   bool
	}{
		{"一部入金でPARTIALLY_PAID", 10_000_00, 0, StatusSent, 4_000_00, StatusPartiallyPaid, 6_000_00, false},
		{"全額入金でPAID", 10_000_00, 0, StatusSent, 10_000_00, StatusPaid, 0, true},
		{"分割の2回目で完済", 10_000_00, 4_000_00, StatusPartiallyPaid, 6_000_00, StatusPaid, 0, true},
		{"過入金は負の残額のまま", 10_000_00, 0, StatusSent, 12_000_00, StatusPaid, -2_000_00, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := &Invoice{TotalAmount: tc.total, PaidAmount: tc.paid, Status: tc.status}
			r := Reconcile(inv, tc.amount)
			if r.Status != tc.wantStatus {
				t.Errorf("Status = %s, want %s", r.Status, tc.wantStatus)
			}
			if r.DueAmount != tc.wantDue {
				t.Errorf("DueAmount = %d, want %d", r.DueAmount, tc.wantDue)
			}
			if r.PaidNow != tc.wantPaid {
				t.Errorf("PaidNow = %v, want %v", r.PaidNow, tc.wantPaid)
			}
		})
	}
}

func TestIsOverdue(t *testing.T) {
	now := d("2024-06-15")
	cases := []struct {
		name   string
		status Status
		due    string
		want   bool
	}{
		{"SENTで期日超過", StatusSent, "2024-06-01", true},
		{"PARTIALLY_PAIDで期日超過", StatusPartiallyPaid, "2024-06-14", true},
		{"期日前は超過でない", StatusSent, "2024-07-01", false},
		{"PAIDは超過しない", StatusPaid, "2024-06-01", false},
		{"DRAFTは超過しない", StatusDraft, "2024-06-01", false},
		{"CANCELLEDは超過しない", StatusCancelled, "2024-06-01", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := &Invoice{Status: tc.status, DueDate: d(tc.due)}
			if got := IsOverdue(inv, now); got != tc.want {
				t.Errorf("IsOverdue = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidInvoiceType(t *testing.T) {
	valid := []InvoiceType{TypeRentalMonthly, TypeRentalDeposit, TypeSale, TypeService, TypeSleepStudy}
	for _, typ := range valid {
		if !ValidInvoiceType(typ) {
			t.Errorf("ValidInvoiceType(%s) = false, want true", typ)
		}
	}
	for _, typ := range []InvoiceType{"", "RENTAL", "DEPOSIT", "rental_monthly"} {
		if ValidInvoiceType(typ) {
			t.Errorf("ValidInvoiceType(%q) = true, want false", typ)
		}
	}
}

func TestDueDateFor(t *testing.T) {
	now := d("2025-06-01")

	got, err := dueDateFor(now, nil)
	if err != nil {
		t.Fatalf("dueDateFor(nil) error: %v", err)
	}
	if want := d("2025-06-08"); !got.Equal(want) {
		t.Errorf("省略時は7日後: got %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	days := 30
	got, err = dueDateFor(now, &days)
	if err != nil {
		t.Fatalf("dueDateFor(30) error: %v", err)
	}
	if want := d("2025-07-01"); !got.Equal(want) {
		t.Errorf("30日指定: got %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	zero := 0
	if _, err := dueDateFor(now, &zero); err == nil {
		t.Error("due_days=0 はエラーになるべき")
	}
}
