package assets

import (
	"math"
	"time"

	"vitalops-backend/internal/platform/money"
)

// DefaultConversionFactor: レンタル→売却転換時の適正価格係数（簿価の65%）
const DefaultConversionFactor = 0.65

// wholeYearsBetween: from→to の満年数（定額法の経過年数）
func wholeYearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	anniversary := from.AddDate(years, 0, 0)
	if anniversary.After(to) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// DepreciatedValue は定額法による現在簿価。
// value = price − price × rate × 経過年数 / 100。負にはならない。
func DepreciatedValue(purchasePrice money.Money, purchaseDate, asOf time.Time, ratePercent float64) money.Money {
	years := wholeYearsBetween(purchaseDate, asOf)
	depreciation := float64(purchasePrice) * ratePercent * float64(years) / 100
	v := float64(purchasePrice) - depreciation
	if v < 0 {
		return 0
	}
	return money.Money(math.Round(v))
}

// FairSalePrice は転換売却の推奨価格（簿価 × 係数、パイサ単位で丸め）
func FairSalePrice(purchasePrice money.Money, purchaseDate, asOf time.Time, ratePercent, factor float64) money.Money {
	if factor <= 0 {
		factor = DefaultConversionFactor
	}
	book := DepreciatedValue(purchasePrice, purchaseDate, asOf, ratePercent)
	return money.Money(math.Round(float64(book) * factor))
}
