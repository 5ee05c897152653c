// Anthropic Messages API [LLMService] implementation
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/stockmind/internal/shared"
)

const (
	defaultAnthropicBaseURL string = "https://api.anthropic.com"
	anthropicVersion        string = "2023-06-01"

	// Completion knobs tuned for a trading persona: warm enough to have
	// opinions, capped so a single session stays cheap.
	completionMaxTokens   int     = 2000
	completionTemperature float64 = 0.8
)

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnthropicService implements [LLMService] against the Anthropic Messages API.
type AnthropicService struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAnthropicService creates a new Anthropic service instance.
func NewAnthropicService(apiKey, model string) *AnthropicService {
	return &AnthropicService{
		baseURL:    defaultAnthropicBaseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: http.DefaultClient,
	}
}

// Name returns the provider name.
func (a *AnthropicService) Name() string {
	return "Anthropic"
}

// Complete sends a system prompt and user prompt to the Messages API and
// returns the concatenated text blocks of the response.
func (a *AnthropicService) Complete(ctx context.Context, system, prompt string) (string, error) {
	if a.apiKey == "" {
		return "", fmt.Errorf("%w: missing api key", shared.ErrLLMUnavailable)
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       a.model,
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
		System:      system,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", a.apiKey)
	req.Header.Set("Anthropic-Version", anthropicVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decoded.Error != nil {
			return "", fmt.Errorf("%w: %s (%s)", shared.ErrLLMUnavailable, decoded.Error.Message, decoded.Error.Type)
		}
		return "", fmt.Errorf("%w: status %d", shared.ErrLLMUnavailable, resp.StatusCode)
	}

	var parts []string
	for _, block := range decoded.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: empty completion", shared.ErrLLMUnavailable)
	}

	return strings.Join(parts, "\n"), nil
}
