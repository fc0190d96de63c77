package sequence

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		e    Entity
		year int
		n    int64
		want string
	}{
		{Rental, 2025, 1, "RNT-2025-001"},
		{Rental, 2025, 8, "RNT-2025-008"},
		{Asset, 2024, 999, "AST-2024-999"},
		{Invoice, 2024, 1000, "INV-2024-1000"},
		{Job, 2026, 42, "JOB-2026-042"},
	}
	for _, tt := range tests {
		if got := Format(tt.e, tt.year, tt.n); got != tt.want {
			t.Errorf("Format(%s, %d, %d) = %q, want %q", tt.e, tt.year, tt.n, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	e, year, n, err := Parse("RNT-2025-007")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e != Rental || year != 2025 || n != 7 {
		t.Errorf("Parse = (%s, %d, %d), want (RNT, 2025, 7)", e, year, n)
	}

	for _, bad := range []string{"", "RNT", "RNT-xxxx-001", "RNT-2025-abc", "RNT2025001"} {
		if _, _, _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q): expected error", bad)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	code := Format(Payment, 2025, 123)
	e, year, n, err := Parse(code)
	if err != nil {
		t.Fatalf("Parse(%q): %v", code, err)
	}
	if e != Payment || year != 2025 || n != 123 {
		t.Errorf("round trip: got (%s, %d, %d)", e, year, n)
	}
}
