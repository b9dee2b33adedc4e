package report

import (
	"context"
	"fmt"
	"log/slog"
	"nova/app/client/analytics"
	"nova/app/service/currency"
	"nova/app/service/router"
	"nova/app/service/store"
	"strings"

	"github.com/elliotchance/pie/v2"
)

const leaderboardSize = 15

// BuildLeaderboards ranks the merged tier entries two ways: by conversions
// descending, and by CAC ascending over entries with positive conversions and
// positive CAC. Both are capped at 15 rows; ties keep their original order.
func BuildLeaderboards(entries []map[string]any) (byConversions, byCAC []map[string]any) {
	byConversions = pie.SortStableUsing(entries, func(a, b map[string]any) bool {
		return currency.Coerce(a["total_conversions"]) > currency.Coerce(b["total_conversions"])
	})
	if len(byConversions) > leaderboardSize {
		byConversions = byConversions[:leaderboardSize]
	}

	withConversions := pie.Filter(entries, func(entry map[string]any) bool {
		return currency.Coerce(entry["total_conversions"]) > 0 && currency.Coerce(entry["effective_cac_eur"]) > 0
	})
	byCAC = pie.SortStableUsing(withConversions, func(a, b map[string]any) bool {
		return currency.Coerce(a["effective_cac_eur"]) < currency.Coerce(b["effective_cac_eur"])
	})
	if len(byCAC) > leaderboardSize {
		byCAC = byCAC[:leaderboardSize]
	}

	return byConversions, byCAC
}

func (s *Service) RunInfluencerTrend(ctx context.Context, channelID, threadTS string, params router.TrendParams, _ string) {
	filters := trendFilters(params)

	payload, err := s.analytics.Query(ctx, analytics.Query{
		Source:  "influencer_analytics",
		View:    "discovery_tiers",
		Filters: filters,
	}, "Influencer Trends")
	if err != nil {
		s.say(ctx, channelID, threadTS, fmt.Sprintf("%s Please try again shortly.", err))
		return
	}

	// Gold first; ranking ties resolve in tier order.
	allInfluencers := payload.Maps("gold")
	allInfluencers = append(allInfluencers, payload.Maps("silver")...)
	allInfluencers = append(allInfluencers, payload.Maps("bronze")...)

	filterStr := trendFilterString(params)

	if len(allInfluencers) == 0 {
		s.say(ctx, channelID, threadTS,
			fmt.Sprintf("I couldn't find any trend data for the filters: `%s`. You might want to try a broader search.", filterStr))
		return
	}

	byConversions, byCAC := BuildLeaderboards(allInfluencers)

	s.say(ctx, channelID, threadTS, "Of course! Here are the influencer trend leaderboards for your requested filters.")
	s.say(ctx, channelID, threadTS, renderConversionsTable(byConversions, filterStr))
	s.say(ctx, channelID, threadTS, renderCACTable(byCAC, filterStr))

	s.store.Set(threadTS, store.Entry{
		Type:      router.IntentInfluencerTrend,
		Params:    params,
		RawData:   map[string]analytics.Payload{"raw_api_data": payload},
		LastReply: "Leaderboard reports were generated.",
	})

	slog.Info("Trend analysis completed", "filters", filters)
}

func trendFilters(params router.TrendParams) map[string]any {
	filters := make(map[string]any)
	if params.Market != "" {
		filters["market"] = params.Market
	}
	if params.Year > 0 {
		filters["year"] = params.Year
	}
	if params.Month != "" {
		filters["month"] = params.Month
	}
	if params.Tier != "" {
		filters["tier"] = params.Tier
	}

	return filters
}

func trendFilterString(params router.TrendParams) string {
	var parts []string
	if params.Market != "" {
		parts = append(parts, "Market: "+params.Market)
	}
	if params.Year > 0 {
		parts = append(parts, fmt.Sprintf("Year: %d", params.Year))
	}
	if params.Month != "" {
		parts = append(parts, "Month: "+params.Month)
	}
	if params.Tier != "" {
		parts = append(parts, "Tier: "+params.Tier)
	}

	return strings.Join(parts, " | ")
}

func renderConversionsTable(rows []map[string]any, filterStr string) string {
	var b strings.Builder

	b.WriteString("```\n")
	fmt.Fprintf(&b, "🏆 TOP 15 BY CONVERSIONS (%s)\n", filterStr)
	b.WriteString("Rank | Name                 | Conversions | CAC (€) | Spend (€)\n")
	b.WriteString(strings.Repeat("-", 65) + "\n")

	for i, row := range rows {
		fmt.Fprintf(&b, "%2d | %-20s | %11d | %7.2f | %9.2f\n",
			i+1,
			truncateName(row["influencer_name"]),
			int(currency.Coerce(row["total_conversions"])),
			currency.Coerce(row["effective_cac_eur"]),
			currency.Coerce(row["total_spend_eur"]),
		)
	}

	b.WriteString("```")

	return b.String()
}

func renderCACTable(rows []map[string]any, filterStr string) string {
	var b strings.Builder

	b.WriteString("```\n")
	fmt.Fprintf(&b, "💰 TOP 15 BY CAC (Lowest Cost) (%s)\n", filterStr)
	b.WriteString("Rank | Name                 | CAC (€)   | Conversions\n")
	b.WriteString(strings.Repeat("-", 55) + "\n")

	for i, row := range rows {
		fmt.Fprintf(&b, "%2d | %-20s | %7.2f | %11d\n",
			i+1,
			truncateName(row["influencer_name"]),
			currency.Coerce(row["effective_cac_eur"]),
			int(currency.Coerce(row["total_conversions"])),
		)
	}

	b.WriteString("```")

	return b.String()
}

func truncateName(v any) string {
	name, ok := v.(string)
	if !ok || name == "" {
		name = "N/A"
	}

	if len(name) > 20 {
		return name[:20]
	}

	return name
}
