package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Codes the platform prices and displays in. Anything else is rejected by
// validation rather than silently passed through.
const (
	EUR = "EUR"
	MAD = "MAD"
	GBP = "GBP"
	USD = "USD"
)

var supported = map[string]struct{}{
	EUR: {},
	MAD: {},
	GBP: {},
	USD: {},
}

var symbols = map[string]string{
	EUR: "€",
	GBP: "£",
	USD: "$",
}

// IsSupported reports whether code is a currency the platform recognises.
func IsSupported(code string) bool {
	_, ok := supported[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// RoundDisplay rounds an amount to two decimal places, half away from zero.
// Display use only: authoritative totals keep full precision and are never
// recomputed from rounded values.
func RoundDisplay(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Formatter renders monetary amounts for a locale. It is purely presentational.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter builds a Formatter for the given locale tag.
func NewFormatter(tag language.Tag) Formatter {
	return Formatter{printer: message.NewPrinter(tag)}
}

// Format renders the amount with its currency symbol (or code when no symbol
// is registered), rounded to two decimal places.
func (f Formatter) Format(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	value, _ := RoundDisplay(amount).Float64()
	rendered := f.printer.Sprint(number.Decimal(value, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	if symbol, ok := symbols[code]; ok {
		return symbol + rendered
	}
	return fmt.Sprintf("%s %s", rendered, code)
}

// DualHint renders a EUR amount with an informational MAD equivalent at the
// supplied display rate, e.g. "€51.77 (≈ 563.77 MAD)". The converted figure is
// a hint for the recipient side and must never feed back into the
// authoritative total.
func (f Formatter) DualHint(amountEUR, fxRateEURToMAD decimal.Decimal) string {
	converted := amountEUR.Mul(fxRateEURToMAD)
	return fmt.Sprintf("%s (≈ %s)", f.Format(amountEUR, EUR), f.Format(converted, MAD))
}
