package payments

import "testing"

func ptr(v int64) *int64 { return &v }

func TestValidateRecord(t *testing.T) {
	cases := []struct {
		name    string
		in      RecordPaymentRequest
		wantErr bool
	}{
		{"請求書紐付けの入金", RecordPaymentRequest{InvoiceID: ptr(1), Amount: 1_000_00, Method: "CASH"}, false},
		{"請求書なしでも顧客指定があれば可", RecordPaymentRequest{CustomerID: ptr(7), Amount: 1_000_00, Method: "UPI"}, false},
		{"保証金入金はレンタル参照つき", RecordPaymentRequest{CustomerID: ptr(7), RentalID: ptr(3), Amount: 5_000_00, Method: "BANK_TRANSFER"}, false},
		{"請求書も顧客もなしは不可", RecordPaymentRequest{Amount: 1_000_00, Method: "CASH"}, true},
		{"金額ゼロは不可", RecordPaymentRequest{InvoiceID: ptr(1), Amount: 0, Method: "CASH"}, true},
		{"負の金額は不可", RecordPaymentRequest{InvoiceID: ptr(1), Amount: -100, Method: "CASH"}, true},
		{"未定義の決済手段は不可", RecordPaymentRequest{InvoiceID: ptr(1), Amount: 1_000_00, Method: "CRYPTO"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateRecord(tc.in)
			if tc.wantErr && err == nil {
				t.Error("error expected")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidMethod(t *testing.T) {
	for _, m := range []Method{MethodCash, MethodUPI, MethodBankTransfer, MethodCheque, MethodCard} {
		if !ValidMethod(m) {
			t.Errorf("ValidMethod(%s) = false, want true", m)
		}
	}
	if ValidMethod(Method("cash")) {
		t.Error("小文字表記を受け付けている")
	}
}
