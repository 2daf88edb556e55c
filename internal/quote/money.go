package quote

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/noah-isme/backend-videoquote/internal/pricing"
)

// FormatMoney renders cents as EUR using the grouping and decimal symbols of locale.
// English places the symbol first; the other supported locales place it last.
func FormatMoney(locale string, cents pricing.Money) string {
	code := NormalizeLocale(locale)
	neg := cents < 0
	if neg {
		cents = -cents
	}
	p := message.NewPrinter(language.Make(code))
	amount := p.Sprintf("%v", number.Decimal(float64(cents)/100, number.Scale(2)))

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if code == "en" {
		b.WriteString("€")
		b.WriteString(amount)
	} else {
		b.WriteString(amount)
		b.WriteString(" €")
	}
	return b.String()
}

// FormatPercent renders a discount percent with one decimal, e.g. "23.8".
func FormatPercent(locale string, percent float64) string {
	p := message.NewPrinter(language.Make(NormalizeLocale(locale)))
	return p.Sprintf("%v", number.Decimal(percent, number.Scale(1)))
}
