package prefs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOptions struct {
	QuizType string `json:"quizType"`
	Count    int    `json:"count"`
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.Save("options", fakeOptions{QuizType: "multiple", Count: 10}))

	var got fakeOptions
	require.True(t, s.Load("options", &got))
	assert.Equal(t, "multiple", got.QuizType)
	assert.Equal(t, 10, got.Count)
}

func TestLoadMissingKey(t *testing.T) {
	s := NewStore(t.TempDir())

	var got fakeOptions
	assert.False(t, s.Load("nothing", &got))
}

func TestStaleBlobDiscarded(t *testing.T) {
	s := NewStore(t.TempDir())

	base := time.Now()
	s.now = func() time.Time { return base }
	require.NoError(t, s.Save("pages", []int{1, 2, 3}))

	// Just inside the TTL: still readable.
	s.now = func() time.Time { return base.Add(TTL) }
	var pages []int
	assert.True(t, s.Load("pages", &pages))

	// Past the TTL: discarded, and the file is gone afterwards.
	s.now = func() time.Time { return base.Add(TTL + time.Second) }
	assert.False(t, s.Load("pages", &pages))
	s.now = func() time.Time { return base }
	assert.False(t, s.Load("pages", &pages))
}

func TestDelete(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.Save("options", fakeOptions{Count: 5}))
	require.NoError(t, s.Delete("options"))

	var got fakeOptions
	assert.False(t, s.Load("options", &got))

	// Deleting again is not an error.
	require.NoError(t, s.Delete("options"))
}
