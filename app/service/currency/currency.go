package currency

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

type Info struct {
	Rate   float64
	Symbol string
	Name   string
}

var marketConfig = map[string]Info{
	"SWEDEN":  {Rate: 11.30, Symbol: "SEK", Name: "SEK"},
	"NORWAY":  {Rate: 11.50, Symbol: "NOK", Name: "NOK"},
	"DENMARK": {Rate: 7.46, Symbol: "DKK", Name: "DKK"},
	"UK":      {Rate: 0.85, Symbol: "£", Name: "GBP"},
	"FRANCE":  {Rate: 1.0, Symbol: "€", Name: "EUR"},
}

// integerCurrencies render without decimal places and with a trailing symbol.
var integerCurrencies = map[string]bool{
	"SEK": true,
	"NOK": true,
	"DKK": true,
}

// InfoFor returns the currency configuration for a market, falling back to a
// 1:1 EUR tuple for unrecognized markets. It never fails.
func InfoFor(market string) Info {
	if info, ok := marketConfig[strings.ToUpper(market)]; ok {
		return info
	}

	return Info{Rate: 1.0, Symbol: "€", Name: "EUR"}
}

// RateForCurrency maps a currency code to its EUR exchange rate, defaulting
// to 1.0 for unknown codes.
func RateForCurrency(code string) float64 {
	for _, info := range marketConfig {
		if info.Name == strings.ToUpper(code) {
			return info.Rate
		}
	}

	return 1.0
}

// ConvertEURToLocal converts a EUR amount into the market's local currency.
// Nil or non-numeric amounts are treated as zero.
func ConvertEURToLocal(amountEUR any, market string) float64 {
	return Coerce(amountEUR) * InfoFor(market).Rate
}

// Format renders an amount for display in the market's currency. Integer
// currencies (SEK, NOK, DKK) get no decimals and a trailing symbol, all
// others two decimals and a leading symbol, both with thousands separators.
func Format(amount any, market string) string {
	info := InfoFor(market)
	safeAmount := Coerce(amount)

	if integerCurrencies[info.Name] {
		return humanize.FormatFloat("#,###.", safeAmount) + " " + info.Symbol
	}

	return info.Symbol + humanize.FormatFloat("#,###.##", safeAmount)
}

// Coerce converts loosely-typed JSON values to float64, yielding 0 for
// anything non-numeric.
func Coerce(v any) float64 {
	switch value := v.(type) {
	case nil:
		return 0
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
