package client

import (
	"context"
	"fmt"
	"time"
)

// Completion parameters for the analyst persona. Kept fixed so graded
// history stays comparable run to run.
const (
	mistralTemperature = 0.7
	mistralMaxTokens   = 1500
)

// Mistral is the chat-completions client behind the advisor.
type Mistral struct {
	core    *core
	baseURL string
	apiKey  string
	model   string
}

// NewMistral creates a Mistral client. The pacing interval is enforced as
// the client's rate limit, one request per interval.
func NewMistral(baseURL, apiKey, model string, timeout, pacing time.Duration) *Mistral {
	rps := 1.0
	if pacing > 0 {
		rps = 1.0 / pacing.Seconds()
	}
	return &Mistral{
		core:    newCore("mistral", timeout, rps),
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Chat sends one system+user exchange and returns the reply text.
func (m *Mistral) Chat(ctx context.Context, system, user string) (string, error) {
	payload := chatRequest{
		Model: m.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: mistralTemperature,
		MaxTokens:   mistralMaxTokens,
	}

	headers := map[string]string{"Authorization": "Bearer " + m.apiKey}

	var result chatResponse
	if err := m.core.postJSON(ctx, "chat/completions", m.baseURL+"/v1/chat/completions", headers, payload, &result); err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}
