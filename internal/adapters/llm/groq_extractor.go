package llm

import (
	"bufio"
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

const defaultModel = "llama-3.1-70b-versatile"

// GroqClient implements the ChatCompleter port against the Groq
// chat-completions API. Responses are streamed; chunks are accumulated into
// a single blob for the caller to parse.
type GroqClient struct {
	session *http.Client
	apiKey  string
	baseURL string
	model   string
}

func NewGroqClient(apiKey string) (*GroqClient, error) {
	if apiKey == "" {
		return nil, errors.New("groq api key is empty")
	}

	return &GroqClient{
		session: &http.Client{Timeout: 60 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.groq.com",
		model:   defaultModel,
	}, nil
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
	Stream      bool      `json:"stream"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete sends the prompt pair and accumulates the streamed response into
// one blob. The blob is raw model output; callers parse it themselves.
func (g *GroqClient) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model: g.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userText},
		},
		Temperature: 1,
		MaxTokens:   1024,
		TopP:        1,
		Stream:      true,
	})
	if err != nil {
		return "", fmt.Errorf("complete: marshal request: %w", err)
	}

	url := g.baseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("complete: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.session.Do(req)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("complete: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			break
		}

		var chunk completionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed keep-alive chunks rather than aborting.
			continue
		}
		if len(chunk.Choices) > 0 {
			out.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("complete: read stream: %w", err)
	}

	return out.String(), nil
}
