// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService is the external generation oracle.
// It accepts a model identifier and a prompt and streams text fragments
// that concatenate to the full answer.
//
// Implementations may include:
//   - Ollama (local models)
//   - Any server speaking a compatible streaming protocol
type LLMService interface {
	// Stream starts generation and returns a pull-based fragment stream.
	// An empty model selects the service default.
	Stream(ctx context.Context, model, prompt string) (FragmentStream, error)

	// ModelName returns the default model name.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// FragmentStream yields generated text in arrival order.
type FragmentStream interface {
	// Next returns the next fragment. It returns io.EOF once generation is complete.
	Next() (string, error)

	// Close releases the underlying connection.
	Close() error
}
