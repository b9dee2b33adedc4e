package report

import (
	"context"
	"errors"
	"nova/app/client/analytics"
	"nova/app/service/store"
	"testing"

	"github.com/stretchr/testify/require"
)

type queryResponse struct {
	payload analytics.Payload
	err     error
}

// fakeQuerier replays scripted responses in call order, recording queries.
type fakeQuerier struct {
	responses []queryResponse
	calls     []analytics.Query
	endpoints []string
}

func (f *fakeQuerier) Query(_ context.Context, query analytics.Query, endpointName string) (analytics.Payload, error) {
	f.calls = append(f.calls, query)
	f.endpoints = append(f.endpoints, endpointName)

	if len(f.responses) == 0 {
		return nil, errors.New("unexpected query")
	}

	response := f.responses[0]
	f.responses = f.responses[1:]

	return response.payload, response.err
}

type fakeGenerator struct {
	answer  string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)

	return f.answer, f.err
}

type upload struct {
	filename string
	title    string
	data     []byte
}

// recorderMessenger captures everything the builders send.
type recorderMessenger struct {
	replies []string
	uploads []upload
}

func (r *recorderMessenger) Reply(_ context.Context, _, _, text string) error {
	r.replies = append(r.replies, text)
	return nil
}

func (r *recorderMessenger) UploadFile(_ context.Context, _, _, filename, title, _ string, data []byte) error {
	r.uploads = append(r.uploads, upload{filename: filename, title: title, data: data})
	return nil
}

type fixture struct {
	querier   *fakeQuerier
	generator *fakeGenerator
	chat      *recorderMessenger
	store     *store.Service
	service   *Service
}

func newFixture(t *testing.T, responses ...queryResponse) *fixture {
	t.Helper()

	contextStore, err := store.New(nil)
	require.NoError(t, err)

	f := &fixture{
		querier:   &fakeQuerier{responses: responses},
		generator: &fakeGenerator{},
		chat:      &recorderMessenger{},
		store:     contextStore,
	}
	f.service = NewWithDeps(f.querier, f.generator, f.chat, f.store)

	return f
}
