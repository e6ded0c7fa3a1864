package services

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

// ErrAINotConfigured signals missing or invalid AI credentials. Callers are
// expected to fall back to the non-AI heuristic path instead of aborting.
var ErrAINotConfigured = errors.New("AI client not configured: set GEMINI_API_KEY")

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient is the single LLM decision-point surface the pipeline depends on.
// Responses are untrusted text; every caller must JSON-parse with a fallback.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, model string, messages []ChatMessage, forceJSON bool) (string, error)
}

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiClient calls the Gemini REST API with an API key.
type GeminiClient struct {
	apiKey     string
	httpClient *http.Client
}

// NewGeminiClient returns a ChatClient backed by Gemini, or
// ErrAINotConfigured when no API key is present.
func NewGeminiClient(apiKey string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAINotConfigured
	}
	return &GeminiClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// CreateChatCompletion sends the message list to the given model and returns
// the raw response text.
func (c *GeminiClient) CreateChatCompletion(ctx context.Context, model string, messages []ChatMessage, forceJSON bool) (string, error) {
	reqBody := geminiRequest{
		GenerationConfig: &generationConfig{Temperature: 0.0},
	}
	if forceJSON {
		reqBody.GenerationConfig.ResponseMimeType = "application/json"
	}

	for _, m := range messages {
		switch m.Role {
		case "system":
			reqBody.SystemInstruction = &geminiContent{
				Parts: []geminiPart{{Text: m.Content}},
			}
		case "assistant":
			reqBody.Contents = append(reqBody.Contents, geminiContent{
				Role:  "model",
				Parts: []geminiPart{{Text: m.Content}},
			})
		default:
			reqBody.Contents = append(reqBody.Contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: m.Content}},
			})
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		model, c.apiKey,
	)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: %s", ErrAINotConfigured, b)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Gemini API error: %s", b)
	}

	var gemResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gemResp); err != nil {
		return "", err
	}

	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	return gemResp.Candidates[0].Content.Parts[0].Text, nil
}

// CleanJSONResponse strips markdown code fences that models sometimes wrap
// around JSON output despite instructions.
func CleanJSONResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = cleaned[:len(cleaned)-len("```")]
	}
	return strings.TrimSpace(cleaned)
}
