// Package ollama provides the generation oracle adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the default model (default: llama3).
	Model string

	// Timeout bounds a whole generation including streaming (default: 5m).
	Timeout time.Duration

	// HTTPClient overrides the client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// LLMService streams completions from Ollama's /api/generate endpoint.
type LLMService struct {
	client  *http.Client
	baseURL string
	model   string
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is one NDJSON line of the /api/generate response.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = domain.DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = domain.DefaultLLMTimeout
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &LLMService{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Stream starts a streaming generation.
func (s *LLMService) Stream(ctx context.Context, model, prompt string) (driven.FragmentStream, error) {
	if model == "" {
		model = s.model
	}

	jsonBody, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	return &fragmentStream{body: resp.Body, dec: json.NewDecoder(resp.Body)}, nil
}

// fragmentStream decodes NDJSON lines into fragments.
type fragmentStream struct {
	body io.ReadCloser
	dec  *json.Decoder

	mu   sync.Mutex
	done bool
}

// Next returns the next non-empty fragment, or io.EOF when generation is done.
func (f *fragmentStream) Next() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for !f.done {
		var line generateResponse
		err := f.dec.Decode(&line)
		if errors.Is(err, io.EOF) {
			f.done = true
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: decode stream: %w", domain.ErrOracle, err)
		}
		if line.Error != "" {
			return "", fmt.Errorf("%w: %s", domain.ErrOracle, line.Error)
		}
		if line.Done {
			f.done = true
		}
		if line.Response != "" {
			return line.Response, nil
		}
	}
	return "", io.EOF
}

// Close releases the response body.
func (f *fragmentStream) Close() error {
	return f.body.Close()
}

// ModelName returns the default model name.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return ping(ctx, s.client, s.baseURL)
}

// Close releases resources.
func (s *LLMService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func ping(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ollama: ping failed: %w", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// statusError reads an Ollama error body. Ollama reports {"error": "..."}.
func statusError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("%w: ollama returned status %d", domain.ErrOracle, resp.StatusCode)
	}

	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return fmt.Errorf("%w: ollama returned status %d: %s", domain.ErrOracle, resp.StatusCode, msg)
}
