package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const nutritionistPrompt = `You are a registered dietitian who plans meals and estimates nutrition.
Give realistic portion sizes and calorie/macro numbers.

IMPORTANT: Always respond with a single valid JSON object in exactly the format the user asks for, with no commentary.`

// Gateway reaches OpenRouter through the MCP proxy's openrouter-gateway
// server, calling its create_completion tool over JSON-RPC.
type Gateway struct {
	httpClient *http.Client
	proxyURL   string
	apiKey     string
	model      string
}

func NewGateway(proxyURL, apiKey, model string, timeout time.Duration) *Gateway {
	return &Gateway{
		httpClient: newHTTPClient(timeout),
		proxyURL:   strings.TrimRight(proxyURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

func (g *Gateway) Name() string { return ProviderOpenRouter }

func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	completionRequest := map[string]interface{}{
		"model":         g.model,
		"system_prompt": nutritionistPrompt,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens":  2000,
		"temperature": 0.2,
	}

	text, err := g.callGateway(ctx, "create_completion", completionRequest)
	if err != nil {
		return "", fmt.Errorf("failed to get AI completion: %w", err)
	}
	return completionContent(text), nil
}

type rpcResponse struct {
	Result *struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Gateway) callGateway(ctx context.Context, toolName string, args interface{}) (string, error) {
	url := fmt.Sprintf("%s/openrouter-gateway", g.proxyURL)

	requestData := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      toolName,
			"arguments": args,
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + g.apiKey}

	var resp rpcResponse
	if err := postJSON(ctx, g.httpClient, url, headers, requestData, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("gateway error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if resp.Result == nil || len(resp.Result.Content) == 0 {
		return "", fmt.Errorf("unexpected response format")
	}
	if resp.Result.IsError {
		return "", fmt.Errorf("gateway tool error: %s", resp.Result.Content[0].Text)
	}
	return resp.Result.Content[0].Text, nil
}

// completionContent unwraps the gateway's {"content": "..."} completion
// envelope. Text that is not such an envelope is returned as is.
func completionContent(text string) string {
	var completion struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal([]byte(text), &completion); err != nil || completion.Content == nil {
		return text
	}
	return *completion.Content
}
