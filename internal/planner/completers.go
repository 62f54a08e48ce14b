package planner

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

func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return fmt.Errorf("request failed with status %d and couldn't read body: %v", resp.StatusCode, err)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Ollama talks to a local Ollama server in JSON mode.
type Ollama struct {
	httpClient *http.Client
	host       string
	model      string
}

func NewOllama(host, model string, timeout time.Duration) *Ollama {
	return &Ollama{httpClient: newHTTPClient(timeout), host: strings.TrimRight(host, "/"), model: model}
}

func (o *Ollama) Name() string { return ProviderOllama }

func (o *Ollama) Complete(ctx context.Context, prompt string) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	body := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}
	if err := postJSON(ctx, o.httpClient, o.host+"/api/generate", nil, body, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

const groqBaseURL = "https://api.groq.com/openai/v1"

// Groq uses the OpenAI-compatible chat completions endpoint.
type Groq struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewGroq(apiKey, model string, timeout time.Duration) *Groq {
	return &Groq{httpClient: newHTTPClient(timeout), baseURL: groqBaseURL, apiKey: apiKey, model: model}
}

func (g *Groq) Name() string { return ProviderGroq }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (g *Groq) Complete(ctx context.Context, prompt string) (string, error) {
	var out struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	body := map[string]interface{}{
		"model":           g.model,
		"messages":        []chatMessage{{Role: "user", Content: prompt}},
		"response_format": map[string]string{"type": "json_object"},
	}
	headers := map[string]string{"Authorization": "Bearer " + g.apiKey}
	if err := postJSON(ctx, g.httpClient, g.baseURL+"/chat/completions", headers, body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return out.Choices[0].Message.Content, nil
}

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

type GeminiRequest struct {
	Contents         []Content              `json:"contents"`
	GenerationConfig map[string]interface{} `json:"generationConfig,omitempty"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GeminiResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Content Content `json:"content"`
}

// Gemini calls the generateContent REST endpoint with a JSON response
// mime type.
type Gemini struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewGemini(apiKey, model string, timeout time.Duration) *Gemini {
	return &Gemini{httpClient: newHTTPClient(timeout), baseURL: geminiBaseURL, apiKey: apiKey, model: model}
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	body := GeminiRequest{
		Contents:         []Content{{Parts: []Part{{Text: prompt}}}},
		GenerationConfig: map[string]interface{}{"response_mime_type": "application/json"},
	}
	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, g.model)
	headers := map[string]string{"x-goog-api-key": g.apiKey}

	var out GeminiResponse
	if err := postJSON(ctx, g.httpClient, url, headers, body, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
