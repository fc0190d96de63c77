package rentals

import (
	"time"

	"vitalops-backend/internal/platform/money"
)

// chargeableMonths は請求月数。暦月ベースの満月数に端数日があれば
// 1ヶ月繰り上げ、最低1ヶ月を請求する。
//
//	1/15 → 3/20 : 満2ヶ月 + 5日 → 3ヶ月
//	1/15 → 2/10 : 満0ヶ月 + 26日 → 1ヶ月
//	1/15 → 2/15 : ちょうど1ヶ月 → 1ヶ月
func chargeableMonths(start, end time.Time) int {
	if !end.After(start) {
		return 1
	}
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	anniversary := start.AddDate(0, months, 0)
	if anniversary.After(end) {
		months--
		anniversary = start.AddDate(0, months, 0)
	}
	if anniversary.Before(end) {
		months++
	}
	if months < 1 {
		return 1
	}
	return months
}

// ItemSettlement は1機器ぶんの精算内訳
type ItemSettlement struct {
	RentalItemID int64       `json:"rental_item_id"`
	AssetID      int64       `json:"asset_id"`
	AssetCode    string      `json:"asset_code"`
	AssetName    string      `json:"asset_name"`
	From         time.Time   `json:"from"`
	To           time.Time   `json:"to"`
	Months       int         `json:"months"`
	MonthlyRate  money.Money `json:"monthly_rate"`
	Amount       money.Money `json:"amount"`
}

type Settlement struct {
	RentalNumber  string           `json:"rental_number"`
	Items         []ItemSettlement `json:"items"`
	TotalAmount   money.Money      `json:"total_amount"`
	DepositAmount money.Money      `json:"deposit_amount"`
	BalanceDue    money.Money      `json:"balance_due"`
}

// settleItem: 返却済みなら返却日まで、未返却なら asOf までを請求対象にする
func settleItem(it *RentalItem, start, asOf time.Time) ItemSettlement {
	to := asOf
	if it.ReturnedAt.Valid {
		to = it.ReturnedAt.Time
	}
	m := chargeableMonths(start, to)
	return ItemSettlement{
		RentalItemID: it.RentalItemID,
		AssetID:      it.AssetID,
		AssetCode:    it.AssetCode,
		AssetName:    it.AssetName,
		From:         start,
		To:           to,
		Months:       m,
		MonthlyRate:  it.MonthlyRate,
		Amount:       it.MonthlyRate * money.Money(m),
	}
}

func buildSettlement(r *Rental, items []*RentalItem, asOf time.Time) *Settlement {
	s := &Settlement{
		RentalNumber:  r.RentalNumber,
		Items:         make([]ItemSettlement, 0, len(items)),
		DepositAmount: r.DepositAmount,
	}
	for _, it := range items {
		line := settleItem(it, r.StartDate, asOf)
		s.Items = append(s.Items, line)
		s.TotalAmount += line.Amount
	}
	// 保証金は返金運用で別途精算するため、請求額から自動控除しない
	s.BalanceDue = s.TotalAmount
	return s
}
