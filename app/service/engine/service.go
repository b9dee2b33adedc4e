package engine

import (
	"context"
	"errors"
	"log/slog"
	"nova/app/client/slack"
	"nova/app/service/followup"
	"nova/app/service/queue"
	"nova/app/service/report"
	"nova/app/service/router"
	"nova/app/service/store"
	"time"

	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

type Replier interface {
	Reply(ctx context.Context, channelID, threadTS, text string) error
}

// Service consumes routed chat events one at a time, which is what makes the
// context store's overwrite semantics safe without per-thread locking.
type Service struct {
	chatClient  Replier
	reportSvc   *report.Service
	followupSvc *followup.Service
	storeSvc    *store.Service
	queueSvc    *queue.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		chatClient:  do.MustInvoke[*slack.Client](di),
		reportSvc:   do.MustInvoke[*report.Service](di),
		followupSvc: do.MustInvoke[*followup.Service](di),
		storeSvc:    do.MustInvoke[*store.Service](di),
		queueSvc:    do.MustInvoke[*queue.Service](di),
	}, nil
}

// NewWithDeps wires explicit dependencies, used by tests.
func NewWithDeps(chat Replier, reportSvc *report.Service, followupSvc *followup.Service, storeSvc *store.Service, queueSvc *queue.Service) *Service {
	return &Service{
		chatClient:  chat,
		reportSvc:   reportSvc,
		followupSvc: followupSvc,
		storeSvc:    storeSvc,
		queueSvc:    queueSvc,
	}
}

func (s *Service) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return s.consume(ctx)
	})

	return group.Wait()
}

func (s *Service) consume(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-s.queueSvc.Channel():
			if !ok {
				return errors.New("event queue closed")
			}

			start := time.Now()
			s.handleEvent(ctx, event)

			slog.Info("Processed event",
				"thread_ts", event.ThreadTS,
				"intent", event.Intent,
				"duration", time.Since(start))
		}
	}
}

func (s *Service) handleEvent(ctx context.Context, event queue.Event) {
	if event.Intent == "" {
		s.handleFollowUp(ctx, event)
		return
	}

	params := router.NormalizeParams(event.Params)

	parsed, err := router.Parse(event.Intent, params)
	if err != nil {
		var missing *router.MissingParamError
		if errors.As(err, &missing) {
			s.say(ctx, event.ChannelID, event.ThreadTS, missing.Error())
			return
		}

		slog.Error("Failed to parse routed request",
			"intent", event.Intent,
			"error", err,
		)
		s.say(ctx, event.ChannelID, event.ThreadTS, "I'm sorry, I couldn't understand that request.")
		return
	}

	s.reportSvc.Run(ctx, router.Request{
		Intent:    event.Intent,
		Params:    parsed,
		ChannelID: event.ChannelID,
		ThreadTS:  event.ThreadTS,
		UserQuery: event.Text,
	})
}

func (s *Service) handleFollowUp(ctx context.Context, event queue.Event) {
	entry, ok := s.storeSvc.Get(event.ThreadTS)
	if !ok {
		s.say(ctx, event.ChannelID, event.ThreadTS, followup.LostContextMessage)
		return
	}

	s.followupSvc.Respond(ctx, event.ChannelID, event.ThreadTS, entry, event.Text)
}

func (s *Service) say(ctx context.Context, channelID, threadTS, text string) {
	if err := s.chatClient.Reply(ctx, channelID, threadTS, text); err != nil {
		slog.Error("Failed to send reply",
			"thread_ts", threadTS,
			"error", err,
		)
	}
}
