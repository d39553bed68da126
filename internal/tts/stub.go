package tts

import (
	"context"
	"fmt"
)

// StubClient simulates speech synthesis for development.
type StubClient struct{}

// NewStubClient constructs StubClient.
func NewStubClient() *StubClient {
	return &StubClient{}
}

// Synthesize returns a deterministic placeholder payload.
func (s *StubClient) Synthesize(_ context.Context, text, voice string) ([]byte, error) {
	return []byte(fmt.Sprintf("stub-audio voice=%s len=%d", voice, len(text))), nil
}
