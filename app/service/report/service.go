package report

import (
	"context"
	"fmt"
	"log/slog"
	"nova/app/client/analytics"
	"nova/app/client/genai"
	"nova/app/client/slack"
	"nova/app/service/router"
	"nova/app/service/store"
	"nova/app/util/textsplit"
	"strings"

	"github.com/samber/do"
)

type Querier interface {
	Query(ctx context.Context, query analytics.Query, endpointName string) (analytics.Payload, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Messenger interface {
	Reply(ctx context.Context, channelID, threadTS, text string) error
	UploadFile(ctx context.Context, channelID, threadTS, filename, title, initialComment string, data []byte) error
}

// Service runs the per-intent report pipelines: validate params, fetch data,
// aggregate, narrate, remember the thread context.
type Service struct {
	analytics Querier
	genai     Generator
	chat      Messenger
	store     *store.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		analytics: do.MustInvoke[*analytics.Client](di),
		genai:     do.MustInvoke[*genai.Client](di),
		chat:      do.MustInvoke[*slack.Client](di),
		store:     do.MustInvoke[*store.Service](di),
	}, nil
}

// NewWithDeps wires explicit dependencies, used by tests.
func NewWithDeps(querier Querier, generator Generator, messenger Messenger, contextStore *store.Service) *Service {
	return &Service{
		analytics: querier,
		genai:     generator,
		chat:      messenger,
		store:     contextStore,
	}
}

// Run dispatches a routed request to its report builder.
func (s *Service) Run(ctx context.Context, req router.Request) {
	switch params := req.Params.(type) {
	case router.InfluencerParams:
		s.RunInfluencerAnalysis(ctx, req.ChannelID, req.ThreadTS, params, req.UserQuery)
	case router.MonthlyParams:
		if req.Intent == router.IntentStrategicPlan {
			s.RunStrategicPlan(ctx, req.ChannelID, req.ThreadTS, params, req.UserQuery)
		} else {
			s.RunMonthlyReview(ctx, req.ChannelID, req.ThreadTS, params, req.UserQuery)
		}
	case router.WeeklyRangeParams:
		s.RunWeeklyReviewByRange(ctx, req.ChannelID, req.ThreadTS, params, req.UserQuery)
	case router.WeeklyNumberParams:
		s.RunWeeklyReviewByNumber(ctx, req.ChannelID, req.ThreadTS, params, req.UserQuery)
	case router.TrendParams:
		s.RunInfluencerTrend(ctx, req.ChannelID, req.ThreadTS, params, req.UserQuery)
	default:
		slog.Error("Unroutable request", "intent", req.Intent)
	}
}

func (s *Service) say(ctx context.Context, channelID, threadTS, text string) {
	if err := s.chat.Reply(ctx, channelID, threadTS, text); err != nil {
		slog.Error("Failed to send reply",
			"thread_ts", threadTS,
			"error", err,
		)
	}
}

func (s *Service) sayChunked(ctx context.Context, channelID, threadTS, text string) {
	for _, chunk := range textsplit.Split(text, textsplit.DefaultMaxLength) {
		s.say(ctx, channelID, threadTS, chunk)
	}
}

func buildPrompt(template string, values map[string]any) string {
	prompt := template
	for key, value := range values {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	return prompt
}

func containsAny(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}

	return false
}
