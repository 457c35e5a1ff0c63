// Package format renders money and counts the way Indian shop ledgers print
// them: rupee sign and lakh/crore digit grouping (₹1,23,456.78).
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Currency renders an amount with the rupee sign and exactly two decimals.
func Currency(amount float64) string {
	return printer.Sprintf("₹%v", number.Decimal(amount,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Count renders an integer with locale digit grouping.
func Count(n int) string {
	return printer.Sprintf("%v", number.Decimal(n))
}
