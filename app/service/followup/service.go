package followup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"nova/app/client/genai"
	"nova/app/client/slack"
	"nova/app/service/router"
	"nova/app/service/store"
	"nova/app/util/textsplit"
	"strings"

	_ "embed"

	"github.com/samber/do"
)

//go:embed followup_prompt_template.txt
var followupPromptTemplate string

// LostContextMessage is the fixed reply when a thread has no usable stored
// context. No network call is made in that case.
const LostContextMessage = "I'm sorry, I've lost the specific context for this conversation."

const apologyMessage = "Sorry, I had trouble with your follow-up."

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Messenger interface {
	Reply(ctx context.Context, channelID, threadTS, text string) error
}

// Service answers in-thread follow-up questions strictly from the data the
// original report was produced from. It never mutates the stored context.
type Service struct {
	genai Generator
	chat  Messenger
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		genai: do.MustInvoke[*genai.Client](di),
		chat:  do.MustInvoke[*slack.Client](di),
	}, nil
}

// NewWithDeps wires explicit dependencies, used by tests.
func NewWithDeps(generator Generator, messenger Messenger) *Service {
	return &Service{
		genai: generator,
		chat:  messenger,
	}
}

func (s *Service) Respond(ctx context.Context, channelID, threadTS string, entry store.Entry, userMessage string) {
	description, refusalExample, ok := describeContext(entry)
	if !ok {
		s.say(ctx, channelID, threadTS, LostContextMessage)
		return
	}

	slog.Info("Handling follow-up",
		"type", entry.Type,
		"thread_ts", threadTS,
	)

	dataJSON, _ := json.Marshal(scopedData(entry))

	prompt := buildPrompt(followupPromptTemplate, map[string]any{
		"context_description": description,
		"data":                string(dataJSON),
		"user_message":        userMessage,
		"refusal_example":     refusalExample,
	})

	answer, err := s.genai.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Follow-up generation failed",
			"type", entry.Type,
			"thread_ts", threadTS,
			"error", err,
		)
		s.say(ctx, channelID, threadTS, apologyMessage)
		return
	}

	for _, chunk := range textsplit.Split(answer, textsplit.DefaultMaxLength) {
		s.say(ctx, channelID, threadTS, chunk)
	}
}

// describeContext renders the stored intent's identifying parameters for the
// prompt. Unrecognized types report no description, which surfaces as a
// lost-context reply.
func describeContext(entry store.Entry) (description, refusalExample string, ok bool) {
	switch params := entry.Params.(type) {
	case router.InfluencerParams:
		if entry.Type != router.IntentInfluencerAnalysis {
			return "", "", false
		}
		paramsJSON, _ := json.Marshal(map[string]any{"influencer_name": params.InfluencerName, "year": params.Year})
		return fmt.Sprintf("An analysis of influencer **%s** with filters: %s.", params.InfluencerName, paramsJSON),
			fmt.Sprintf("Example: \"I can't answer that, as my current context is only for %s. To analyze another influencer, please start a new request like '@nova analyse influencer [name]'.\"", params.InfluencerName),
			true

	case router.MonthlyParams:
		switch entry.Type {
		case router.IntentMonthlyReview:
			return fmt.Sprintf("A Monthly Review for **%s** for **%s %d**.", params.Market, params.MonthFull, params.Year),
				"Example: \"I can't answer that, as my current context is only for this review. To compare with another month, you would need to ask me to run a new analysis for it.\"",
				true
		case router.IntentStrategicPlan:
			return fmt.Sprintf("A strategic plan for **%s** for **%s %d**.", params.Market, params.MonthFull, params.Year),
				"",
				true
		default:
			return "", "", false
		}

	case router.WeeklyRangeParams:
		if entry.Type != router.IntentWeeklyReviewByRange {
			return "", "", false
		}
		return fmt.Sprintf("A performance review for **%s** for the period **%s to %s**.", params.Market, params.StartDate, params.EndDate),
			"", true

	case router.WeeklyNumberParams:
		if entry.Type != router.IntentWeeklyReviewByNumber {
			return "", "", false
		}
		return fmt.Sprintf("A performance review for **%s** for **Week %d, %d**.", params.Market, params.WeekNumber, params.Year),
			"", true

	case router.TrendParams:
		if entry.Type != router.IntentInfluencerTrend {
			return "", "", false
		}
		paramsJSON, _ := json.Marshal(map[string]any{
			"market": params.Market, "year": params.Year, "month": params.Month, "tier": params.Tier,
		})
		return fmt.Sprintf("An Influencer Trend report for the filters: **%s**.", paramsJSON),
			"", true

	default:
		return "", "", false
	}
}

// scopedData shapes the stored snapshots the way each report's follow-up
// expects to see them.
func scopedData(entry store.Entry) any {
	switch entry.Type {
	case router.IntentMonthlyReview:
		return map[string]any{
			"targets": entry.RawData["raw_target_data"],
			"actuals": entry.RawData["raw_actual_data"],
		}
	case router.IntentInfluencerAnalysis, router.IntentWeeklyReviewByRange,
		router.IntentWeeklyReviewByNumber, router.IntentInfluencerTrend:
		return entry.RawData["raw_api_data"]
	default:
		return entry.RawData
	}
}

func (s *Service) say(ctx context.Context, channelID, threadTS, text string) {
	if err := s.chat.Reply(ctx, channelID, threadTS, text); err != nil {
		slog.Error("Failed to send follow-up reply",
			"thread_ts", threadTS,
			"error", err,
		)
	}
}

func buildPrompt(template string, values map[string]any) string {
	prompt := template
	for key, value := range values {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	return prompt
}
