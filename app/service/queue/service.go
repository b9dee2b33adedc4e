package queue

import (
	"log/slog"
	"nova/app/service/router"

	"github.com/samber/do"
)

const bufferSize = 64

var _ do.Shutdownable = (*Service)(nil)

// Event is one inbound chat message, already routed by the front door. An
// empty Intent means a bare thread message: a follow-up to an earlier report.
type Event struct {
	ChannelID string
	ThreadTS  string
	Text      string
	Intent    router.Intent
	Params    map[string]any
}

type Service struct {
	queue chan Event
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan Event, bufferSize),
	}, nil
}

func (s *Service) Add(event Event) {
	defer func() {
		if r := recover(); r != nil {

		}
	}()

	select {
	case s.queue <- event:
	default:
		slog.Warn("event queue is full")
	}
}

func (s *Service) Channel() <-chan Event {
	return s.queue
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}
