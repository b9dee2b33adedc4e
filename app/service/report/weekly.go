package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"nova/app/client/analytics"
	"nova/app/service/router"
	"nova/app/service/store"
	"strings"

	_ "embed"
)

//go:embed weekly_range_prompt_template.txt
var weeklyRangePromptTemplate string

//go:embed weekly_number_prompt_template.txt
var weeklyNumberPromptTemplate string

func (s *Service) RunWeeklyReviewByRange(ctx context.Context, channelID, threadTS string, params router.WeeklyRangeParams, userQuery string) {
	payload, err := s.analytics.Query(ctx, analytics.Query{
		Source: "influencer_analytics",
		View:   "custom_range_breakdown",
		Filters: map[string]any{
			"market":    params.Market,
			"year":      params.Year,
			"date_from": params.StartDate,
			"date_to":   params.EndDate,
		},
	}, "Date Range Breakdown")
	if err != nil {
		s.say(ctx, channelID, threadTS, fmt.Sprintf("API Error: `%s`", err))
		return
	}

	if weeklyPayloadEmpty(payload) {
		s.say(ctx, channelID, threadTS,
			fmt.Sprintf("No performance data found for %s between %s and %s.",
				strings.ToUpper(params.Market), params.StartDate, params.EndDate))
		return
	}

	dataJSON, _ := json.MarshalIndent(payload, "", "  ")

	prompt := buildPrompt(weeklyRangePromptTemplate, map[string]any{
		"market":       strings.ToUpper(params.Market),
		"start_date":   params.StartDate,
		"end_date":     params.EndDate,
		"data":         string(dataJSON),
		"user_request": userQuery,
	})

	answer, err := s.genai.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Date range review generation failed",
			"market", params.Market,
			"error", err,
		)
		s.say(ctx, channelID, threadTS, fmt.Sprintf("An error occurred generating the AI summary: %s", err))
		return
	}

	s.store.Set(threadTS, store.Entry{
		Type:      router.IntentWeeklyReviewByRange,
		Params:    params,
		RawData:   map[string]analytics.Payload{"raw_api_data": payload},
		LastReply: answer,
	})

	s.sayChunked(ctx, channelID, threadTS, answer)

	slog.Info("Date range review completed",
		"market", params.Market,
		"from", params.StartDate,
		"to", params.EndDate,
	)
}

func (s *Service) RunWeeklyReviewByNumber(ctx context.Context, channelID, threadTS string, params router.WeeklyNumberParams, userQuery string) {
	payload, err := s.analytics.Query(ctx, analytics.Query{
		Source: "influencer_analytics",
		View:   "weekly_breakdown_by_number",
		Filters: map[string]any{
			"market":      params.Market,
			"year":        params.Year,
			"week_number": params.WeekNumber,
		},
	}, "Week Number Breakdown")
	if err != nil {
		s.say(ctx, channelID, threadTS, fmt.Sprintf("API Error: `%s`", err))
		return
	}

	if weeklyPayloadEmpty(payload) {
		s.say(ctx, channelID, threadTS,
			fmt.Sprintf("No performance data found for %s in week %d of %d.",
				strings.ToUpper(params.Market), params.WeekNumber, params.Year))
		return
	}

	dataJSON, _ := json.MarshalIndent(payload, "", "  ")

	prompt := buildPrompt(weeklyNumberPromptTemplate, map[string]any{
		"market":       strings.ToUpper(params.Market),
		"week_number":  params.WeekNumber,
		"year":         params.Year,
		"data":         string(dataJSON),
		"user_request": userQuery,
	})

	answer, err := s.genai.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Week number review generation failed",
			"market", params.Market,
			"week", params.WeekNumber,
			"error", err,
		)
		s.say(ctx, channelID, threadTS, fmt.Sprintf("An error occurred generating the AI summary: %s", err))
		return
	}

	s.store.Set(threadTS, store.Entry{
		Type:      router.IntentWeeklyReviewByNumber,
		Params:    params,
		RawData:   map[string]analytics.Payload{"raw_api_data": payload},
		LastReply: answer,
	})

	s.sayChunked(ctx, channelID, threadTS, answer)

	slog.Info("Week number review completed",
		"market", params.Market,
		"week", params.WeekNumber,
		"year", params.Year,
	)
}

// A weekly payload is usable only when both the summary object and the
// per-influencer detail rows are present.
func weeklyPayloadEmpty(payload analytics.Payload) bool {
	return len(payload.Map("summary")) == 0 || len(payload.Maps("details")) == 0
}
