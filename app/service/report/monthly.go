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

//go:embed monthly_prompt_template.txt
var monthlyPromptTemplate string

var fullReviewKeywords = []string{"review", "summary", "analysis"}

func (s *Service) RunMonthlyReview(ctx context.Context, channelID, threadTS string, params router.MonthlyParams, userQuery string) {
	targetData, err := s.analytics.Query(ctx, analytics.Query{
		Source:  "dashboard",
		Filters: map[string]any{"market": params.Market, "year": params.Year},
	}, "Dashboard (Targets)")
	if err != nil {
		s.say(ctx, channelID, threadTS, fmt.Sprintf("API Error: `%s`", err))
		return
	}

	targetBudgetLocal := monthlyTargetBudget(targetData, params.MonthAbbr)

	actualData, err := s.analytics.Query(ctx, analytics.Query{
		Source:  "influencer_analytics",
		View:    "monthly_breakdown",
		Filters: map[string]any{"market": params.Market, "month": params.MonthFull, "year": params.Year},
	}, "Influencer Analytics (Monthly)")
	if err != nil {
		s.say(ctx, channelID, threadTS, fmt.Sprintf("API Error: `%s`", err))
		return
	}

	monthlyRows := actualData.Maps("monthly_data")
	if len(monthlyRows) == 0 {
		s.say(ctx, channelID, threadTS,
			fmt.Sprintf("No performance data found for %s %s %d.",
				strings.ToUpper(params.Market), params.MonthFull, params.Year))
		return
	}

	dataJSON, _ := json.MarshalIndent(map[string]any{
		"Target Budget": currency.Format(targetBudgetLocal, params.Market),
		"Actuals":       monthlyRows[0],
	}, "", "  ")

	task := "Provide a concise, direct answer to the user's question."
	if userQuery == "" || containsAny(userQuery, fullReviewKeywords) {
		task = "Generate a comprehensive monthly performance review."
	}

	userRequest := userQuery
	if userRequest == "" {
		userRequest = "A full monthly review."
	}

	prompt := buildPrompt(monthlyPromptTemplate, map[string]any{
		"task":         task,
		"market":       strings.ToUpper(params.Market),
		"month":        strings.ToUpper(params.MonthFull),
		"year":         params.Year,
		"data":         string(dataJSON),
		"user_request": userRequest,
	})

	answer, err := s.genai.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Monthly review generation failed",
			"market", params.Market,
			"month", params.MonthFull,
			"error", err,
		)
		s.say(ctx, channelID, threadTS, fmt.Sprintf("An error occurred generating the AI summary: %s", err))
		return
	}

	s.store.Set(threadTS, store.Entry{
		Type:   router.IntentMonthlyReview,
		Params: params,
		RawData: map[string]analytics.Payload{
			"raw_target_data": targetData,
			"raw_actual_data": actualData,
		},
		LastReply: answer,
	})

	s.sayChunked(ctx, channelID, threadTS, answer)

	slog.Info("Monthly review completed",
		"market", params.Market,
		"month", params.MonthFull,
		"year", params.Year,
	)
}

// monthlyTargetBudget picks the target for the requested month out of the
// dashboard's monthly detail rows, matching the abbreviation case-insensitively.
func monthlyTargetBudget(targetData analytics.Payload, monthAbbr string) float64 {
	for _, row := range targetData.Maps("monthly_detail") {
		if strings.EqualFold(fmt.Sprint(row["month"]), monthAbbr) {
			return currency.Coerce(row["target_budget_clean"])
		}
	}

	return 0
}
