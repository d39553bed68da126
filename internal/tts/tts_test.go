package tts

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStubClientSynthesize(t *testing.T) {
	audio, err := NewStubClient().Synthesize(context.Background(), "Hello there.", "alloy")
	require.NoError(t, err)
	require.NotEmpty(t, audio)
}

func TestOpenAIClientRetriesTransientFailures(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("fake-mp3-bytes"))
	}))
	defer server.Close()

	client := NewOpenAIClient(discardLogger(), "test-key", &OpenAIOptions{BaseURL: server.URL})
	audio, err := client.Synthesize(context.Background(), "Hello.", "")
	require.NoError(t, err)
	require.Equal(t, []byte("fake-mp3-bytes"), audio)
	require.Equal(t, 3, calls)
}

func TestOpenAIClientGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewOpenAIClient(discardLogger(), "test-key", &OpenAIOptions{BaseURL: server.URL})
	_, err := client.Synthesize(context.Background(), "Hello.", "alloy")
	require.Error(t, err)
	require.Equal(t, maxAttempts, calls)
}
