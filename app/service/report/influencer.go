package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"nova/app/client/analytics"
	"nova/app/service/currency"
	"nova/app/service/router"
	"nova/app/service/store"
	"strings"

	_ "embed"
)

//go:embed influencer_prompt_template.txt
var influencerPromptTemplate string

// deepDiveKeywords flip the influencer narrative from a targeted answer to a
// comprehensive report. Each intent keeps its own historical keyword set.
var deepDiveKeywords = []string{"deep dive", "details", "analyse"}

// InfluencerSummary is the aggregate computed once per influencer request.
type InfluencerSummary struct {
	InfluencerName   string   `json:"influencer_name"`
	TotalCampaigns   int      `json:"total_campaigns"`
	Markets          []string `json:"markets"`
	TotalSpendEUR    float64  `json:"total_spend_eur"`
	TotalConversions int      `json:"total_conversions"`
	EffectiveCACEUR  float64  `json:"effective_cac_eur"`
	AverageCTR       float64  `json:"average_ctr"`
}

// ComputeInfluencerSummary aggregates raw campaign rows. Spend is converted
// to EUR per campaign via its own currency; CAC falls back to 0 when there
// are no conversions.
func ComputeInfluencerSummary(influencerName string, campaigns []map[string]any) InfluencerSummary {
	summary := InfluencerSummary{
		InfluencerName: influencerName,
		TotalCampaigns: len(campaigns),
		Markets:        []string{},
	}

	seenMarkets := make(map[string]bool)
	ctrCount := 0

	for _, campaign := range campaigns {
		code := "EUR"
		if c, ok := campaign["currency"].(string); ok && c != "" {
			code = c
		}
		summary.TotalSpendEUR += currency.Coerce(campaign["total_budget_clean"]) / currency.RateForCurrency(code)
		summary.TotalConversions += int(currency.Coerce(campaign["actual_conversions_clean"]))

		if market, ok := campaign["market"].(string); ok && !seenMarkets[market] {
			seenMarkets[market] = true
			summary.Markets = append(summary.Markets, market)
		}

		if ctr, ok := campaign["ctr"]; ok {
			summary.AverageCTR += currency.Coerce(ctr)
			ctrCount++
		}
	}

	if summary.TotalConversions > 0 {
		summary.EffectiveCACEUR = summary.TotalSpendEUR / float64(summary.TotalConversions)
	}
	if ctrCount > 0 {
		summary.AverageCTR /= float64(ctrCount)
	} else {
		summary.AverageCTR = 0
	}

	return summary
}

func (s *Service) RunInfluencerAnalysis(ctx context.Context, channelID, threadTS string, params router.InfluencerParams, userQuery string) {
	filters := map[string]any{"influencer_name": params.InfluencerName}
	if params.Year > 0 {
		filters["year"] = params.Year
	}

	payload, err := s.analytics.Query(ctx, analytics.Query{
		Source:  "influencer_analytics",
		View:    "influencer_performance",
		Filters: filters,
	}, "Influencer Analytics")

	campaigns := payload.Maps("campaigns")
	if err != nil || len(campaigns) == 0 {
		s.say(ctx, channelID, threadTS,
			fmt.Sprintf("No campaigns found for '%s' with the specified filters.", params.InfluencerName))
		return
	}

	summary := ComputeInfluencerSummary(params.InfluencerName, campaigns)

	summaryJSON, _ := json.Marshal(summary)
	campaignsJSON, _ := json.Marshal(campaigns)

	task := "Provide a concise, direct answer to the user's question about the influencer."
	if userQuery == "" || containsAny(userQuery, deepDiveKeywords) {
		task = "Generate a comprehensive deep-dive performance report for the influencer."
	}

	userRequest := userQuery
	if userRequest == "" {
		userRequest = "A full analysis."
	}

	prompt := buildPrompt(influencerPromptTemplate, map[string]any{
		"task":            task,
		"influencer_name": params.InfluencerName,
		"summary_stats":   string(summaryJSON),
		"campaigns":       string(campaignsJSON),
		"user_request":    userRequest,
	})

	answer, err := s.genai.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Influencer analysis generation failed",
			"influencer", params.InfluencerName,
			"error", err,
		)
		s.say(ctx, channelID, threadTS, fmt.Sprintf("AI analysis failed: `%s`", err))
		return
	}

	s.store.Set(threadTS, store.Entry{
		Type:      router.IntentInfluencerAnalysis,
		Params:    params,
		RawData:   map[string]analytics.Payload{"raw_api_data": payload},
		LastReply: answer,
	})

	s.sayChunked(ctx, channelID, threadTS, answer)

	slog.Info("Influencer analysis completed",
		"influencer", params.InfluencerName,
		"markets", strings.Join(summary.Markets, ","),
	)
}
