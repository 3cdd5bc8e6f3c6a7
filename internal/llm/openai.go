package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	openAIDefaultURL   = "https://api.openai.com/v1/chat/completions"
	openAIDefaultModel = "gpt-4o-mini"
)

// OpenAI speaks the chat completions protocol. DeepSeek, Ollama and other
// compatible servers are reached by pointing BaseURL at them.
type OpenAI struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

func NewOpenAI(opts Options) *OpenAI {
	o := &OpenAI{
		apiKey: opts.APIKey,
		apiURL: opts.BaseURL,
		model:  opts.Model,
		client: opts.HTTPClient,
	}
	if o.apiURL == "" {
		o.apiURL = openAIDefaultURL
	}
	if o.model == "" {
		o.model = openAIDefaultModel
	}
	if o.client == nil {
		o.client = http.DefaultClient
	}
	return o
}

func (o *OpenAI) Provider() string { return "openai" }
func (o *OpenAI) Model() string    { return o.model }

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (o *OpenAI) Complete(ctx context.Context, prompt Prompt) (*Completion, error) {
	messages := make([]Message, 0, 2)
	if prompt.System != "" {
		messages = append(messages, Message{Role: "system", Content: prompt.System})
	}
	messages = append(messages, Message{Role: "user", Content: prompt.User})

	reqBody, err := json.Marshal(chatRequest{
		Model:     o.model,
		Messages:  messages,
		MaxTokens: prompt.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("%w: no choices in response", ErrMalformedResponse)
	}

	return &Completion{
		Text:         parsed.Choices[0].Message.Content,
		OutputTokens: parsed.Usage.CompletionTokens,
	}, nil
}
