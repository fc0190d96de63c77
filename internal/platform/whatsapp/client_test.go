package whatsapp

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"09876543210", "919876543210"},
		{"919876543210", "919876543210"},
		{" 09876543210 ", "919876543210"},
		{"0423", "0423"}, // 桁数が合わないものはそのまま
	}
	for _, tt := range tests {
		if got := normalizePhone(tt.in); got != tt.want {
			t.Errorf("normalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
