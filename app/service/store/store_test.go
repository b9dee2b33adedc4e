package store

import (
	"nova/app/client/analytics"
	"nova/app/service/router"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetAbsent(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	_, ok := s.Get("ts-missing")
	assert.False(t, ok)
}

func TestStore_SetOverwritesWholeEntry(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	first := Entry{
		Type:      router.IntentMonthlyReview,
		RawData:   map[string]analytics.Payload{"raw_target_data": {"a": 1.0}},
		LastReply: "first reply",
	}
	s.Set("ts1", first)

	second := Entry{
		Type:      router.IntentInfluencerTrend,
		RawData:   map[string]analytics.Payload{"raw_api_data": {"gold": []any{}}},
		LastReply: "second reply",
	}
	s.Set("ts1", second)

	got, ok := s.Get("ts1")
	require.True(t, ok)
	assert.Equal(t, second, got)
	assert.NotContains(t, got.RawData, "raw_target_data")
}

func TestStore_EntriesAreThreadScoped(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	s.Set("ts1", Entry{Type: router.IntentMonthlyReview})
	s.Set("ts2", Entry{Type: router.IntentInfluencerAnalysis})

	entry1, _ := s.Get("ts1")
	entry2, _ := s.Get("ts2")

	assert.Equal(t, router.IntentMonthlyReview, entry1.Type)
	assert.Equal(t, router.IntentInfluencerAnalysis, entry2.Type)
}
