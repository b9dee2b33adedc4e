package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMarket(t *testing.T) {
	cases := map[string]string{
		"uk":             "UK",
		"United Kingdom": "UK",
		"france":         "France",
		"FR":             "France",
		"sweden":         "Sweden",
		"NORWAY":         "Norway",
		"Denmark":        "Denmark",
		"NORDICS":        "Nordics",
		"germany":        "Germany",
		"":               "",
	}

	for input, want := range cases {
		assert.Equal(t, want, NormalizeMarket(input), input)
	}
}

func TestNormalizeParams_AppliesDefaults(t *testing.T) {
	params := NormalizeParams(map[string]any{"market": "uk"})

	assert.Equal(t, "UK", params["market"])
	assert.Equal(t, DefaultYear, params["year"])
}

func TestNormalizeParams_PreservesExistingYear(t *testing.T) {
	params := NormalizeParams(map[string]any{"market": "france", "year": 2024})

	assert.Equal(t, "France", params["market"])
	assert.Equal(t, 2024, params["year"])
}

func TestParse_Influencer(t *testing.T) {
	parsed, err := Parse(IntentInfluencerAnalysis, map[string]any{
		"influencer_name": "InfluencerX",
		"year":            2025,
	})
	require.NoError(t, err)

	assert.Equal(t, InfluencerParams{InfluencerName: "InfluencerX", Year: 2025}, parsed)
}

func TestParse_InfluencerMissingName(t *testing.T) {
	_, err := Parse(IntentInfluencerAnalysis, map[string]any{})

	var missing *MissingParamError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "influencer_name", missing.Key)
	assert.Equal(t, "A required parameter was missing: 'influencer_name'", err.Error())
}

func TestParse_MonthlyMissingYear(t *testing.T) {
	_, err := Parse(IntentMonthlyReview, map[string]any{
		"market":     "UK",
		"month_abbr": "Nov",
		"month_full": "November",
	})

	var missing *MissingParamError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "year", missing.Key)
}

func TestParse_WeeklyRangeMissingEndDate(t *testing.T) {
	_, err := Parse(IntentWeeklyReviewByRange, map[string]any{
		"market":     "UK",
		"start_date": "2025-01-01",
	})

	var missing *MissingParamError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "end_date", missing.Key)
	assert.Equal(t, "A required parameter ('end_date') was missing for the date range review.", err.Error())
}

func TestParse_WeeklyNumberDefaultsYear(t *testing.T) {
	parsed, err := Parse(IntentWeeklyReviewByNumber, map[string]any{
		"market":      "France",
		"week_number": 53,
	})
	require.NoError(t, err)

	assert.Equal(t, WeeklyNumberParams{Market: "France", WeekNumber: 53, Year: DefaultYear}, parsed)
}

func TestParse_TrendAllFiltersOptional(t *testing.T) {
	parsed, err := Parse(IntentInfluencerTrend, map[string]any{
		"market":     "UK",
		"month_full": "June",
	})
	require.NoError(t, err)

	assert.Equal(t, TrendParams{Market: "UK", Month: "June"}, parsed)
}

func TestParse_JSONNumbersCoerce(t *testing.T) {
	parsed, err := Parse(IntentWeeklyReviewByNumber, map[string]any{
		"market":      "UK",
		"week_number": float64(7),
		"year":        "2024",
	})
	require.NoError(t, err)

	assert.Equal(t, WeeklyNumberParams{Market: "UK", WeekNumber: 7, Year: 2024}, parsed)
}
