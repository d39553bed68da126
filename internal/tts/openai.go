// Package tts synthesizes speech for paragraph text.
package tts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel = openai.TTSModel1
	defaultVoice = openai.VoiceAlloy

	maxAttempts = 3
	baseDelay   = 500 * time.Millisecond
)

// OpenAIOptions configures optional client behavior.
type OpenAIOptions struct {
	BaseURL string
	Model   openai.SpeechModel
}

// OpenAIClient synthesizes speech through the OpenAI audio API. The API
// call is retried with exponential backoff on transient failure.
type OpenAIClient struct {
	logger *slog.Logger
	client *openai.Client
	model  openai.SpeechModel
}

// NewOpenAIClient creates an OpenAI speech client.
func NewOpenAIClient(logger *slog.Logger, apiKey string, opts *OpenAIOptions) *OpenAIClient {
	if opts == nil {
		opts = &OpenAIOptions{}
	}

	config := openai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	return &OpenAIClient{
		logger: logger,
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Synthesize converts text into mp3 audio using the given voice.
func (c *OpenAIClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	speechVoice := openai.SpeechVoice(voice)
	if voice == "" {
		speechVoice = defaultVoice
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		audio, err := c.synthesizeOnce(ctx, text, speechVoice)
		if err == nil {
			return audio, nil
		}
		lastErr = err

		c.logger.Warn("speech synthesis attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("text_length", len(text)),
			slog.String("error", err.Error()),
		)

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("synthesize speech: %w", ctx.Err())
		case <-time.After(baseDelay << (attempt - 1)):
		}
	}
	return nil, fmt.Errorf("synthesize speech after %d attempts: %w", maxAttempts, lastErr)
}

func (c *OpenAIClient) synthesizeOnce(ctx context.Context, text string, voice openai.SpeechVoice) ([]byte, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          c.model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("call speech api: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech api returned empty audio")
	}
	return audio, nil
}
