package currency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoFor_KnownMarkets(t *testing.T) {
	assert.Equal(t, Info{Rate: 0.85, Symbol: "£", Name: "GBP"}, InfoFor("UK"))
	assert.Equal(t, Info{Rate: 11.30, Symbol: "SEK", Name: "SEK"}, InfoFor("sweden"))
}

func TestInfoFor_UnknownMarketFallsBackToEUR(t *testing.T) {
	for _, market := range []string{"Atlantis", "germany", ""} {
		info := InfoFor(market)

		assert.Equal(t, 1.0, info.Rate, market)
		assert.Equal(t, "€", info.Symbol, market)
	}
}

func TestRateForCurrency(t *testing.T) {
	assert.Equal(t, 0.85, RateForCurrency("GBP"))
	assert.Equal(t, 11.50, RateForCurrency("nok"))
	assert.Equal(t, 1.0, RateForCurrency("USD"))
}

func TestConvertEURToLocal(t *testing.T) {
	assert.InDelta(t, 11300.0, ConvertEURToLocal(1000.0, "Sweden"), 0.001)
	assert.InDelta(t, 850.0, ConvertEURToLocal(1000, "UK"), 0.001)
	assert.InDelta(t, 1000.0, ConvertEURToLocal(1000.0, "France"), 0.001)
}

func TestConvertEURToLocal_NonNumericCoercesToZero(t *testing.T) {
	assert.Zero(t, ConvertEURToLocal(nil, "UK"))
	assert.Zero(t, ConvertEURToLocal("not a number", "Sweden"))
	assert.Zero(t, ConvertEURToLocal(struct{}{}, "France"))
}

func TestFormat_IntegerCurrencyHasNoDecimalPoint(t *testing.T) {
	got := Format(11300.75, "Sweden")

	assert.Equal(t, "11,301 SEK", got)
	assert.NotContains(t, got, ".")
	assert.True(t, strings.HasSuffix(got, "SEK"))
}

func TestFormat_DecimalCurrencyHasTwoDigits(t *testing.T) {
	assert.Equal(t, "£1,234.56", Format(1234.56, "UK"))
	assert.Equal(t, "€1,000.00", Format(1000, "France"))
	assert.Equal(t, "€0.00", Format(nil, "Atlantis"))
}
