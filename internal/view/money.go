// Package view holds presentation helpers shared by HTTP handlers.
package view

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Money renders an amount with digit grouping and two decimals, prefixed by
// the currency symbol when one is known, e.g. "$ 12,500.00".
func Money(symbol string, amount float64) string {
	formatted := printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
	if symbol == "" {
		return formatted
	}
	return strings.TrimSpace(symbol + " " + formatted)
}
