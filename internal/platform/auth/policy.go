package auth

// ロールは旧システムのユーザー種別をそのまま引き継ぐ。
const (
	RoleAdmin      = "ADMIN"
	RoleManager    = "MANAGER"
	RoleTechnician = "TECHNICIAN"
	RoleAccountant = "ACCOUNTANT"
	RoleSalesRep   = "SALES_REP"
)

func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTechnician, RoleAccountant, RoleSalesRep:
		return true
	}
	return false
}

// Operation は権限判定の対象となる操作。ルートごとにインラインでロールを
// 並べるのではなく、操作→許可ロールの対応表を一箇所に持ち、単一のゲート
// （Require）だけが参照する。
type Operation string

const (
	OpAssetDelete     Operation = "asset.delete"
	OpAssetBulkImport Operation = "asset.bulk_import"
	OpCategoryCreate  Operation = "category.create"
	OpUserRegister    Operation = "user.register"
	OpUserDeactivate  Operation = "user.deactivate"
	OpInvoiceCancel   Operation = "invoice.cancel"
	OpRentalCancel    Operation = "rental.cancel"
)

// policy: ここに載っていない操作は認証のみで許可される（ロール制限なし）。
var policy = map[Operation][]string{
	OpAssetDelete:     {RoleAdmin},
	OpAssetBulkImport: {RoleAdmin, RoleManager},
	OpCategoryCreate:  {RoleAdmin, RoleManager},
	OpUserRegister:    {RoleAdmin},
	OpUserDeactivate:  {RoleAdmin},
	OpInvoiceCancel:   {RoleAdmin, RoleManager, RoleAccountant},
	OpRentalCancel:    {RoleAdmin, RoleManager},
}

// Allowed: role が op を実行できるか
func Allowed(op Operation, role string) bool {
	roles, ok := policy[op]
	if !ok {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
