package auth

import "testing"

func TestAllowed(t *testing.T) {
	tests := []struct {
		op   Operation
		role string
		want bool
	}{
		{OpAssetDelete, RoleAdmin, true},
		{OpAssetDelete, RoleManager, false},
		{OpAssetDelete, RoleTechnician, false},
		{OpCategoryCreate, RoleAdmin, true},
		{OpCategoryCreate, RoleManager, true},
		{OpCategoryCreate, RoleSalesRep, false},
		{OpInvoiceCancel, RoleAccountant, true},
		{OpInvoiceCancel, RoleTechnician, false},
		// 表に載っていない操作はロール制限なし
		{Operation("rental.create"), RoleTechnician, true},
	}
	for _, tt := range tests {
		if got := Allowed(tt.op, tt.role); got != tt.want {
			t.Errorf("Allowed(%q, %q) = %v, want %v", tt.op, tt.role, got, tt.want)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleManager, RoleTechnician, RoleAccountant, RoleSalesRep} {
		if !ValidRole(r) {
			t.Errorf("ValidRole(%q) = false", r)
		}
	}
	if ValidRole("SUPERUSER") {
		t.Error("ValidRole(SUPERUSER) = true, want false")
	}
}
