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

	"github.com/elliotchance/pie/v2"
	"github.com/xuri/excelize/v2"
)

//go:embed plan_prompt_template.txt
var planPromptTemplate string

var planTiers = []string{"gold", "silver", "bronze"}

type planCandidate struct {
	Name                string  `json:"influencer_name"`
	Tier                string  `json:"tier"`
	PastCampaigns       int     `json:"past_campaigns"`
	PastSpendEUR        float64 `json:"past_spend_eur"`
	TotalConversions    int     `json:"total_conversions"`
	ProposedBudgetLocal float64 `json:"proposed_budget_local"`
}

// RunStrategicPlan builds a forward-looking booking plan for a month: checks
// the remaining budget, shortlists unbooked influencers from the discovery
// tiers, attaches the plan as a spreadsheet and narrates the insights.
func (s *Service) RunStrategicPlan(ctx context.Context, channelID, threadTS string, params router.MonthlyParams, userQuery string) {
	s.say(ctx, channelID, threadTS,
		fmt.Sprintf("📊 Creating a strategic plan for %s %s %d. This may take a moment...",
			params.Market, params.MonthFull, params.Year))

	targetData, err := s.analytics.Query(ctx, analytics.Query{
		Source:  "dashboard",
		Filters: map[string]any{"market": params.Market, "year": params.Year},
	}, "Dashboard (Targets)")
	if err != nil {
		s.say(ctx, channelID, threadTS, fmt.Sprintf("API Error: `%s`", err))
		return
	}

	actualData, err := s.analytics.Query(ctx, analytics.Query{
		Source:  "influencer_analytics",
		View:    "monthly_breakdown",
		Filters: map[string]any{"market": params.Market, "month": params.MonthFull, "year": params.Year},
	}, "Influencer Analytics (Monthly)")
	if err != nil {
		s.say(ctx, channelID, threadTS, fmt.Sprintf("API Error: `%s`", err))
		return
	}

	targetBudgetLocal := monthlyTargetBudget(targetData, params.MonthAbbr)

	var spentEUR float64
	booked := make(map[string]bool)

	if monthlyRows := actualData.Maps("monthly_data"); len(monthlyRows) > 0 {
		row := analytics.Payload(monthlyRows[0])
		spentEUR = currency.Coerce(row.Map("summary")["total_spend_eur"])

		for _, detail := range row.Maps("details") {
			if name, ok := detail["influencer_name"].(string); ok {
				booked[name] = true
			}
		}
	}

	spentLocal := currency.ConvertEURToLocal(spentEUR, params.Market)
	remainingLocal := targetBudgetLocal - spentLocal

	if remainingLocal <= 0 {
		s.say(ctx, channelID, threadTS,
			fmt.Sprintf("It looks like the %s budget for this period has already been fully utilized. A new plan isn't needed right now.",
				currency.Format(targetBudgetLocal, params.Market)))
		return
	}

	tierData := make(map[string]analytics.Payload, len(planTiers))
	var candidates []planCandidate

	for _, tier := range planTiers {
		payload, err := s.analytics.Query(ctx, analytics.Query{
			Source:  "influencer_analytics",
			View:    "discovery_tiers",
			Filters: map[string]any{"market": params.Market, "year": params.Year, "tier": tier},
		}, fmt.Sprintf("Influencer Trends (%s Tier)", strings.ToUpper(tier[:1])+tier[1:]))
		if err != nil {
			s.say(ctx, channelID, threadTS, fmt.Sprintf("API Error: `%s`", err))
			return
		}

		tierData[tier] = payload

		for _, row := range payload.Maps(tier) {
			name, _ := row["influencer_name"].(string)
			if name == "" || booked[name] {
				continue
			}

			candidates = append(candidates, planCandidate{
				Name:             name,
				Tier:             tier,
				PastCampaigns:    int(currency.Coerce(row["campaigns"])),
				PastSpendEUR:     currency.Coerce(row["total_spend_eur"]),
				TotalConversions: int(currency.Coerce(row["total_conversions"])),
			})
		}
	}

	shortlist := buildShortlist(candidates, remainingLocal, params.Market)

	workbook, err := buildPlanWorkbook(params, targetBudgetLocal, spentLocal, remainingLocal, shortlist)
	if err != nil {
		slog.Error("Failed to build plan workbook", "error", err)
		s.say(ctx, channelID, threadTS, "I'm sorry, a system error occurred while preparing your strategic plan.")
		return
	}

	filename := fmt.Sprintf("Strategic_Plan_%s_%s_%d.xlsx", params.Market, params.MonthFull, params.Year)
	if err = s.chat.UploadFile(ctx, channelID, threadTS, filename,
		fmt.Sprintf("Strategic Plan %s %s %d", params.Market, params.MonthFull, params.Year),
		"Here is the proposed booking plan.", workbook); err != nil {
		slog.Error("Failed to upload plan workbook", "filename", filename, "error", err)
		s.say(ctx, channelID, threadTS, "I'm sorry, I couldn't attach the strategic plan spreadsheet.")
		return
	}

	shortlistJSON, _ := json.Marshal(shortlist)

	userRequest := userQuery
	if userRequest == "" {
		userRequest = "A strategic plan for the month."
	}

	prompt := buildPrompt(planPromptTemplate, map[string]any{
		"market":           strings.ToUpper(params.Market),
		"month":            strings.ToUpper(params.MonthFull),
		"year":             params.Year,
		"target_budget":    currency.Format(targetBudgetLocal, params.Market),
		"spent":            currency.Format(spentLocal, params.Market),
		"remaining_budget": currency.Format(remainingLocal, params.Market),
		"shortlist":        string(shortlistJSON),
		"user_request":     userRequest,
	})

	answer, err := s.genai.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Strategic plan generation failed",
			"market", params.Market,
			"month", params.MonthFull,
			"error", err,
		)
		s.say(ctx, channelID, threadTS, fmt.Sprintf("An error occurred generating the strategic insights: %s", err))
		return
	}

	s.store.Set(threadTS, store.Entry{
		Type:   router.IntentStrategicPlan,
		Params: params,
		RawData: map[string]analytics.Payload{
			"raw_target_data": targetData,
			"raw_actual_data": actualData,
			"raw_gold_tier":   tierData["gold"],
			"raw_silver_tier": tierData["silver"],
			"raw_bronze_tier": tierData["bronze"],
		},
		LastReply: answer,
	})

	s.sayChunked(ctx, channelID, threadTS, answer)

	slog.Info("Strategic plan completed",
		"market", params.Market,
		"month", params.MonthFull,
		"year", params.Year,
		"shortlist_size", len(shortlist),
	)
}

// buildShortlist ranks unbooked candidates by past conversions and assigns
// each an average-past-spend budget until the remaining budget runs out.
func buildShortlist(candidates []planCandidate, remainingLocal float64, market string) []planCandidate {
	ranked := pie.SortStableUsing(candidates, func(a, b planCandidate) bool {
		return a.TotalConversions > b.TotalConversions
	})
	if len(ranked) > leaderboardSize {
		ranked = ranked[:leaderboardSize]
	}

	var shortlist []planCandidate
	budgetLeft := remainingLocal

	for _, candidate := range ranked {
		avgSpendEUR := candidate.PastSpendEUR
		if candidate.PastCampaigns > 1 {
			avgSpendEUR /= float64(candidate.PastCampaigns)
		}

		proposed := currency.ConvertEURToLocal(avgSpendEUR, market)
		if proposed <= 0 || proposed > budgetLeft {
			continue
		}

		candidate.ProposedBudgetLocal = proposed
		shortlist = append(shortlist, candidate)
		budgetLeft -= proposed
	}

	return shortlist
}

func buildPlanWorkbook(params router.MonthlyParams, targetLocal, spentLocal, remainingLocal float64, shortlist []planCandidate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Strategic Plan"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	summaryRows := [][]any{
		{"Market", params.Market},
		{"Month", fmt.Sprintf("%s %d", params.MonthFull, params.Year)},
		{"Target Budget", currency.Format(targetLocal, params.Market)},
		{"Spent", currency.Format(spentLocal, params.Market)},
		{"Remaining", currency.Format(remainingLocal, params.Market)},
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	header := []any{"Influencer", "Tier", "Past Campaigns", "Past Spend (EUR)", "Total Conversions", "Proposed Budget"}
	headerCell, _ := excelize.CoordinatesToCellName(1, len(summaryRows)+2)
	if err := f.SetSheetRow(sheet, headerCell, &header); err != nil {
		return nil, err
	}

	for i, candidate := range shortlist {
		row := []any{
			candidate.Name,
			candidate.Tier,
			candidate.PastCampaigns,
			candidate.PastSpendEUR,
			candidate.TotalConversions,
			currency.Format(candidate.ProposedBudgetLocal, params.Market),
		}
		cell, _ := excelize.CoordinatesToCellName(1, len(summaryRows)+3+i)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
