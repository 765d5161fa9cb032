package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofilter-bot/internal/model"
)

func TestNavCallbackRoundTrip(t *testing.T) {
	cases := []NavCallback{
		{Action: ActionNext, RequesterID: 42, SessionKey: "123-45", Offset: 10},
		{Action: ActionPrev, RequesterID: 42, SessionKey: "-100987-6", Offset: 0},
		{Action: ActionTier, RequesterID: 7, SessionKey: "1-2", Tier: model.TierArchive},
		{Action: ActionPages},
		{Action: ActionClose},
	}
	for _, want := range cases {
		got, err := ParseNavCallback(want.Encode())
		require.NoError(t, err, want.Encode())
		assert.Equal(t, want, got)
	}
}

func TestNavCallbackEncoding(t *testing.T) {
	cb := NavCallback{Action: ActionNext, RequesterID: 42, SessionKey: "123-45", Offset: 10}
	assert.Equal(t, "next_42_123-45_10", cb.Encode())

	cb = NavCallback{Action: ActionTier, RequesterID: 42, SessionKey: "123-45", Tier: model.TierCloud}
	assert.Equal(t, "tier_42_123-45_cloud", cb.Encode())
}

func TestParseNavCallbackRejectsGarbage(t *testing.T) {
	for _, data := range []string{
		"",
		"nonsense",
		"next_42_123-45",
		"next_abc_123-45_10",
		"next_42_123-45_-5",
		"tier_42_123-45_bogus",
		"pages_extra",
	} {
		_, err := ParseNavCallback(data)
		assert.ErrorIs(t, err, ErrBadCallback, data)
	}
}

func TestFileCallback(t *testing.T) {
	data := FileCallback("abc123")
	assert.Equal(t, "file#abc123", data)

	id, ok := ParseFileCallback(data)
	require.True(t, ok)
	assert.Equal(t, "abc123", id)

	_, ok = ParseFileCallback("next_1_2-3_0")
	assert.False(t, ok)

	_, ok = ParseFileCallback("file#")
	assert.False(t, ok)
}
