// Package llm talks to the hosted completion APIs that write recipes.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrMissingAPIKey means the provider needs a credential that was not configured
	ErrMissingAPIKey = errors.New("llm: missing API key")
	// ErrMalformedResponse covers undecodable bodies and responses without text
	ErrMalformedResponse = errors.New("llm: malformed response")
	// ErrUpstreamStatus is returned for non-2xx upstream responses
	ErrUpstreamStatus = errors.New("llm: upstream returned an error status")
)

// Prompt is one system instruction plus one user turn
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

// Completion is the text the model produced
type Completion struct {
	Text         string
	OutputTokens int
}

// Completer issues exactly one completion call per Complete
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (*Completion, error)
	Provider() string
	Model() string
}

// Options configures a provider client
type Options struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// New builds the completer for opts.Provider. Callers treat
// ErrMissingAPIKey as "gateway unconfigured" rather than a fatal error.
func New(opts Options) (Completer, error) {
	if opts.HTTPClient == nil {
		// Deadlines come from the caller's context; this is only a backstop
		opts.HTTPClient = &http.Client{Timeout: 2 * time.Minute}
	}
	switch opts.Provider {
	case "mock":
		return NewMock(), nil
	case "anthropic", "":
		if opts.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewAnthropic(opts), nil
	case "openai":
		if opts.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewOpenAI(opts), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", opts.Provider)
	}
}

func statusError(code int, body []byte) error {
	const limit = 512
	if len(body) > limit {
		body = body[:limit]
	}
	return fmt.Errorf("%w: status %d: %s", ErrUpstreamStatus, code, string(body))
}
