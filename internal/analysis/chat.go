// Package analysis forwards chat conversations to an OpenAI-compatible
// chat-completion API, primed for environmental and urban-growth analysis.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	RequestTimeout = 20 * time.Second

	temperature = 0.7
	maxBody     = 1 << 20
)

// SystemInstruction is prepended to every conversation.
const SystemInstruction = "You are an environmental analysis and sustainable urbanism assistant " +
	"specialized in forecasting safe urban growth in Campo Mourão."

var (
	ErrMissingKey      = errors.New("analysis: API key not configured")
	ErrInvalidResponse = errors.New("analysis: invalid response from chat completion API")
)

// UpstreamError is a non-2xx answer from the chat-completion API.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("chat completion API returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the chat-completion endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	endpoint   string
}

// NewClient creates a Client. Empty model or baseURL take the defaults.
func NewClient(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: RequestTimeout},
		apiKey:     apiKey,
		model:      model,
		endpoint:   strings.TrimRight(baseURL, "/") + "/chat/completions",
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type completionRequest struct {
	Model       string            `json:"model"`
	Messages    []json.RawMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends messages after the system instruction and returns the trimmed
// content of the first choice. messages are forwarded as given. An empty model uses
// the client's default.
func (c *Client) Complete(ctx context.Context, model string, messages []json.RawMessage) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingKey
	}
	if strings.TrimSpace(model) == "" {
		model = c.model
	}

	primer, err := json.Marshal(map[string]string{"role": "system", "content": SystemInstruction})
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(completionRequest{
		Model:       model,
		Messages:    append([]json.RawMessage{primer}, messages...),
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("read chat completion: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: upstreamMessage(body)}
	}

	// null or a non-object decodes into a nil pointer or fails.
	var out *completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if out == nil {
		return "", ErrInvalidResponse
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// upstreamMessage prefers error.message from a JSON error body, then the raw text.
func upstreamMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Error.Message != "" {
			return e.Error.Message
		}
		return "OpenAI API error"
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return "OpenAI API error"
}
