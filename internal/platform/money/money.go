package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money は金額をパイサ（1/100ルピー）で保持する。
// float の丸め誤差を避けるため、DB・JSONとも整数のまま扱う。
type Money int64

var enIN = message.NewPrinter(language.MustParse("en-IN"))

// Rupees: ルピー換算（表示用）
func (m Money) Rupees() float64 { return float64(m) / 100 }

// String: "₹1,50,000.00" 形式（インド式桁区切り）
func (m Money) String() string {
	neg := false
	v := int64(m)
	if v < 0 {
		neg = true
		v = -v
	}
	s := enIN.Sprintf("₹%d.%02d", v/100, v%100)
	if neg {
		return "-" + s
	}
	return s
}

// FromRupees: 整数ルピー → Money
func FromRupees(r int64) Money { return Money(r * 100) }
