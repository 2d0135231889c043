package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1/chat/completions"
	defaultModel      = "gpt-4o-mini"
	llmMaxRetries     = 3
	llmInitialDelay   = 1 * time.Second
	llmRequestTimeout = 30 * time.Second
)

const systemPrompt = `You extract actionable tasks from a note or voice transcript.
Reply with a JSON array only. Each element: {"title": string, "tags": [string],
"priority": "low"|"medium"|"high", "dueDate": "YYYY-MM-DD" or ""}.
Omit tasks you are not confident about. No prose.`

// LLMExtractor asks a chat-completions endpoint to pull task fragments
// out of free text.
type LLMExtractor struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewLLMExtractor(apiKey, baseURL, model string) *LLMExtractor {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &LLMExtractor{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: llmRequestTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *LLMExtractor) Extract(ctx context.Context, text string) ([]Fragment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var lastErr error
	delay := llmInitialDelay
	for attempt := 0; attempt < llmMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		frags, retryable, err := c.call(ctx, text)
		if err == nil {
			return frags, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func (c *LLMExtractor) call(ctx context.Context, text string) ([]Fragment, bool, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr chatError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
			return nil, retryable, fmt.Errorf("llm: %s (status %d)", apiErr.Error.Message, resp.StatusCode)
		}
		return nil, resp.StatusCode >= 500, fmt.Errorf("llm: status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("llm: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, false, fmt.Errorf("llm: empty response")
	}

	frags, err := parseFragments(out.Choices[0].Message.Content)
	if err != nil {
		return nil, false, err
	}
	return frags, false, nil
}

// parseFragments tolerates the model wrapping its JSON in a code fence.
func parseFragments(content string) ([]Fragment, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var frags []Fragment
	if err := json.Unmarshal([]byte(content), &frags); err != nil {
		return nil, fmt.Errorf("llm: unparseable fragments: %w", err)
	}
	out := frags[:0]
	for _, f := range frags {
		if strings.TrimSpace(f.Title) != "" {
			out = append(out, f)
		}
	}
	return out, nil
}
