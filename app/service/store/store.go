package store

import (
	"nova/app/client/analytics"
	"nova/app/service/router"
	"sync"

	"github.com/samber/do"
)

// Entry is the retained context of the last completed report in a thread.
// RawData is exactly the data LastReply was produced from; follow-ups must
// never see anything else.
type Entry struct {
	Type      router.Intent
	Params    any
	RawData   map[string]analytics.Payload
	LastReply string
}

// Service maps thread identifiers to their last report context. Entries are
// overwritten whole and live for the process lifetime only.
type Service struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		entries: make(map[string]Entry),
	}, nil
}

func (s *Service) Get(threadTS string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[threadTS]
	return entry, ok
}

func (s *Service) Set(threadTS string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[threadTS] = entry
}
