package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaConfig holds configuration for the Ollama model.
type OllamaConfig struct {
	Endpoint string        // Default: http://localhost:11434
	Model    string        // Default: llama3
	Timeout  time.Duration // Zero means no client-side timeout
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Ollama implements Model on the /api/generate endpoint.
type Ollama struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewOllama creates a new Ollama model.
func NewOllama(cfg OllamaConfig) *Ollama {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3"
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Ollama{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		httpClient: hc,
	}
}

func (o *Ollama) Name() string { return "ollama" }

// Model returns the configured model name.
func (o *Ollama) Model() string { return o.model }

func (o *Ollama) Invoke(ctx context.Context, prompt string) (string, error) {
	resp, err := o.post(ctx, prompt, false)
	if err != nil {
		return "", &InvocationError{Provider: o.Name(), Op: "invoke", Err: err}
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &InvocationError{Provider: o.Name(), Op: "invoke", Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if out.Error != "" {
		return "", &InvocationError{Provider: o.Name(), Op: "invoke", Err: fmt.Errorf("API error: %s", out.Error)}
	}
	return out.Response, nil
}

func (o *Ollama) Stream(ctx context.Context, prompt string) (Stream, error) {
	resp, err := o.post(ctx, prompt, true)
	if err != nil {
		return nil, &InvocationError{Provider: o.Name(), Op: "stream", Err: err}
	}
	return &ollamaStream{body: resp.Body, scanner: bufio.NewScanner(resp.Body)}, nil
}

func (o *Ollama) post(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	body, err := json.Marshal(generateRequest{Model: o.model, Prompt: prompt, Stream: stream})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return resp, nil
}

// ollamaStream reads newline-delimited JSON chunks until done is set.
type ollamaStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	cur     string
	err     error
	done    bool
}

func (s *ollamaStream) Next() bool {
	for !s.done && s.err == nil && s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk generateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			s.err = &InvocationError{Provider: "ollama", Op: "read", Err: fmt.Errorf("malformed chunk: %w", err)}
			break
		}
		if chunk.Error != "" {
			s.err = &InvocationError{Provider: "ollama", Op: "read", Err: fmt.Errorf("API error: %s", chunk.Error)}
			break
		}
		if chunk.Done {
			s.done = true
		}
		if chunk.Response != "" {
			s.cur = chunk.Response
			return true
		}
	}
	if s.err == nil && !s.done {
		if err := s.scanner.Err(); err != nil {
			s.err = &InvocationError{Provider: "ollama", Op: "read", Err: err}
		} else {
			s.err = &InvocationError{Provider: "ollama", Op: "read", Err: io.ErrUnexpectedEOF}
		}
	}
	s.cur = ""
	return false
}

func (s *ollamaStream) Current() string { return s.cur }

func (s *ollamaStream) Err() error { return s.err }

func (s *ollamaStream) Close() error { return s.body.Close() }

// Ollama API types

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string `json:"model,omitempty"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}
