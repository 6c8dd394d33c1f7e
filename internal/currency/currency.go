// Package currency turns exact decimal amounts into display strings.
//
// Rounding happens here and nowhere else: callers hand in the unrounded
// values produced by the calculator and get back text.
package currency

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Symbols maps ISO currency codes to their display symbol.
var Symbols = map[string]string{
	"MYR": "RM",
	"SGD": "S$",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"THB": "฿",
	"IDR": "Rp",
	"PHP": "₱",
	"VND": "₫",
	"KRW": "₩",
	"INR": "₹",
	"AUD": "A$",
	"NZD": "NZ$",
	"HKD": "HK$",
	"TWD": "NT$",
}

// zeroDecimal lists currencies displayed in whole units.
var zeroDecimal = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
	"IDR": true,
}

// Symbol returns the display symbol for code, or code itself when unknown.
func Symbol(code string) string {
	code = strings.ToUpper(code)
	if s, ok := Symbols[code]; ok {
		return s
	}
	return code
}

// Places returns the number of fractional digits shown for code.
func Places(code string) int32 {
	if zeroDecimal[strings.ToUpper(code)] {
		return 0
	}
	return 2
}

// Round applies banker's rounding to the display precision of code.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.RoundBank(Places(code))
}

// Format renders amount with the symbol and precision of code,
// e.g. "RM1,234.50" or "¥1,235". Unknown codes render as "XYZ 12.00".
func Format(amount decimal.Decimal, code string) string {
	symbol := Symbol(code)
	number := Number(amount, code)
	if _, known := Symbols[strings.ToUpper(code)]; !known {
		symbol += " "
	}
	if strings.HasPrefix(number, "-") {
		return "-" + symbol + number[1:]
	}
	return symbol + number
}

// Number renders amount rounded for code with thousands separators and no
// symbol.
func Number(amount decimal.Decimal, code string) string {
	places := Places(code)
	rounded := amount.RoundBank(places)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	fixed := rounded.StringFixed(places)
	_, frac, _ := strings.Cut(fixed, ".")

	grouped := humanize.BigComma(rounded.Truncate(0).BigInt())
	if frac == "" {
		return sign + grouped
	}
	return sign + grouped + "." + frac
}

// Percent renders a whole-number percentage rate such as 6 or 8.25 as
// "6%" or "8.25%", dropping trailing zeros.
func Percent(rate decimal.Decimal) string {
	return rate.RoundBank(2).String() + "%"
}
