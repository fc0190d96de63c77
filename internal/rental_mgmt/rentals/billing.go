package rentals

import "time"

// DefaultBillingDay は請求日未指定時の既定値（毎月1日）
const DefaultBillingDay = 1

// ValidBillingDay: 29〜31日は月によって存在しないため受け付けない
func ValidBillingDay(d int) bool { return d >= 1 && d <= 28 }

// nextBillingFrom は基準日の1ヶ月後。日付の正規化で翌月へはみ出す場合は
// 月末に丸める。
//
//	1/15 → 2/15
//	1/31 → 2/29（閏年なら）
func nextBillingFrom(base time.Time) time.Time {
	n := base.AddDate(0, 1, 0)
	if n.Day() < base.Day() {
		n = n.AddDate(0, 0, -n.Day())
	}
	return n
}
