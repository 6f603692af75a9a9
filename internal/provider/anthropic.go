package provider

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultModel = anthropic.ModelClaude3_7SonnetLatest
const APIVersion = "2023-06-01"

// NewAnthropicClient returns a client. An empty apiKey falls back to
// ANTHROPIC_API_KEY from the env.
func NewAnthropicClient(apiKey string, opts ...option.RequestOption) *anthropic.Client {
	if apiKey != "" {
		opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	}
	c := anthropic.NewClient(opts...)
	return &c
}

// AnthropicConfig holds configuration for the Anthropic model.
type AnthropicConfig struct {
	Model     string // Default: DefaultModel
	MaxTokens int    // Default: 1024
}

// Anthropic implements Model on the Messages API.
type Anthropic struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropic wraps client.
func NewAnthropic(client *anthropic.Client, cfg AnthropicConfig) *Anthropic {
	if cfg.Model == "" {
		cfg.Model = string(DefaultModel)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &Anthropic{client: client, model: anthropic.Model(cfg.Model), maxTokens: int64(cfg.MaxTokens)}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) params(prompt string) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
	}
}

func (a *Anthropic) Invoke(ctx context.Context, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, a.params(prompt))
	if err != nil {
		return "", &InvocationError{Provider: a.Name(), Op: "invoke", Err: err}
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(v.Text)
		}
	}
	return b.String(), nil
}

func (a *Anthropic) Stream(ctx context.Context, prompt string) (Stream, error) {
	return &anthropicStream{events: a.client.Messages.NewStreaming(ctx, a.params(prompt))}, nil
}

// eventStream is the part of the SDK's SSE stream used here.
type eventStream interface {
	Next() bool
	Current() anthropic.MessageStreamEventUnion
	Err() error
	Close() error
}

// anthropicStream surfaces text deltas and skips every other event.
type anthropicStream struct {
	events eventStream
	cur    string
}

func (s *anthropicStream) Next() bool {
	for s.events.Next() {
		ev := s.events.Current()
		if ev.Type == "content_block_delta" && ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
			s.cur = ev.Delta.Text
			return true
		}
	}
	s.cur = ""
	return false
}

func (s *anthropicStream) Current() string { return s.cur }

func (s *anthropicStream) Err() error {
	// EOF is the normal end of stream
	if err := s.events.Err(); err != nil && !errors.Is(err, io.EOF) {
		return &InvocationError{Provider: "anthropic", Op: "read", Err: err}
	}
	return nil
}

func (s *anthropicStream) Close() error { return s.events.Close() }
