package report

import (
	"context"
	"fmt"
	"nova/app/client/analytics"
	"nova/app/service/currency"
	"nova/app/service/router"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLeaderboards_Ordering(t *testing.T) {
	var entries []map[string]any
	for i := 0; i < 20; i++ {
		entries = append(entries, map[string]any{
			"influencer_name":   fmt.Sprintf("inf_%02d", i),
			"total_conversions": float64(i),
			"effective_cac_eur": float64(100 - i),
			"total_spend_eur":   float64(i * 10),
		})
	}

	byConversions, byCAC := BuildLeaderboards(entries)

	require.Len(t, byConversions, 15)
	for i := 1; i < len(byConversions); i++ {
		assert.GreaterOrEqual(t,
			currency.Coerce(byConversions[i-1]["total_conversions"]),
			currency.Coerce(byConversions[i]["total_conversions"]))
	}

	// inf_00 has zero conversions and is excluded from the CAC board.
	require.Len(t, byCAC, 15)
	for _, entry := range byCAC {
		assert.Positive(t, currency.Coerce(entry["total_conversions"]))
		assert.Positive(t, currency.Coerce(entry["effective_cac_eur"]))
	}
	for i := 1; i < len(byCAC); i++ {
		assert.LessOrEqual(t,
			currency.Coerce(byCAC[i-1]["effective_cac_eur"]),
			currency.Coerce(byCAC[i]["effective_cac_eur"]))
	}
}

func TestBuildLeaderboards_ExcludesZeroCAC(t *testing.T) {
	entries := []map[string]any{
		{"influencer_name": "free_conversions", "total_conversions": 10.0, "effective_cac_eur": 0.0},
		{"influencer_name": "paid", "total_conversions": 5.0, "effective_cac_eur": 20.0},
	}

	_, byCAC := BuildLeaderboards(entries)

	require.Len(t, byCAC, 1)
	assert.Equal(t, "paid", byCAC[0]["influencer_name"])
}

func TestBuildLeaderboards_StableTies(t *testing.T) {
	entries := []map[string]any{
		{"influencer_name": "first", "total_conversions": 10.0, "effective_cac_eur": 5.0},
		{"influencer_name": "second", "total_conversions": 10.0, "effective_cac_eur": 5.0},
	}

	byConversions, byCAC := BuildLeaderboards(entries)

	assert.Equal(t, "first", byConversions[0]["influencer_name"])
	assert.Equal(t, "first", byCAC[0]["influencer_name"])
}

func TestRunInfluencerTrend_Success(t *testing.T) {
	payload := analytics.Payload{
		"gold": []any{
			map[string]any{"influencer_name": "gold_star", "total_conversions": 100.0, "effective_cac_eur": 50.0, "total_spend_eur": 5000.0},
		},
		"silver": []any{
			map[string]any{"influencer_name": "silver_medal", "total_conversions": 50.0, "effective_cac_eur": 40.0, "total_spend_eur": 2000.0},
		},
		"bronze": []any{},
	}
	f := newFixture(t, queryResponse{payload: payload})

	f.service.RunInfluencerTrend(context.Background(), "C123", "ts123",
		router.TrendParams{Market: "UK", Year: 2025}, "")

	require.Len(t, f.chat.replies, 3)
	assert.Contains(t, f.chat.replies[1], "🏆 TOP 15 BY CONVERSIONS")
	assert.Contains(t, f.chat.replies[1], "gold_star")
	assert.Contains(t, f.chat.replies[2], "💰 TOP 15 BY CAC")
	assert.Contains(t, f.chat.replies[2], "silver_medal")

	entry, ok := f.store.Get("ts123")
	require.True(t, ok)
	assert.Equal(t, router.IntentInfluencerTrend, entry.Type)
	assert.Equal(t, "Leaderboard reports were generated.", entry.LastReply)
	assert.Equal(t, payload, entry.RawData["raw_api_data"])

	// No generative call for the primary trend report.
	assert.Empty(t, f.generator.prompts)
}

func TestRunInfluencerTrend_NoData(t *testing.T) {
	f := newFixture(t, queryResponse{payload: analytics.Payload{
		"gold":   []any{},
		"silver": []any{},
		"bronze": []any{},
	}})

	f.service.RunInfluencerTrend(context.Background(), "C123", "ts123",
		router.TrendParams{Market: "Atlantis", Year: 2025}, "")

	require.Len(t, f.chat.replies, 1)
	assert.Contains(t, f.chat.replies[0], "I couldn't find any trend data")
	assert.Contains(t, f.chat.replies[0], "Market: Atlantis")

	_, ok := f.store.Get("ts123")
	assert.False(t, ok)
}

func TestRenderConversionsTable_TruncatesLongNames(t *testing.T) {
	rows := []map[string]any{
		{"influencer_name": "a_very_long_influencer_name_indeed", "total_conversions": 3.0, "effective_cac_eur": 1.0, "total_spend_eur": 3.0},
	}

	table := renderConversionsTable(rows, "Market: UK")

	assert.Contains(t, table, "a_very_long_influenc")
	assert.NotContains(t, table, "a_very_long_influencer")
}
