package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ShareServer/config"

	"github.com/sony/gobreaker"
)

// OpenAIProvider OpenAI 兼容接口（/chat/completions）的生成后端。
// 非流式、JSON 模式；外层套熔断器，后端持续故障时快速失败，
// 把时间留给 AI Flow 执行器的兜底逻辑。
type OpenAIProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewOpenAIProvider 创建生成后端客户端。
func NewOpenAIProvider(cfg config.AIFlowConfig) *OpenAIProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-backend",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 连续 5 次失败后熔断
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &OpenAIProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: cb,
	}
}

// ==================== wire 结构 ====================

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate 执行一次生成调用。
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (Result, error) {
	prompt, err := RenderPrompt(req.Template, req.Params)
	if err != nil {
		return Result{}, err
	}

	out, err := p.breaker.Execute(func() (interface{}, error) {
		return p.complete(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return Result{}, fmt.Errorf("llm breaker open: %w", err)
		}
		return Result{}, err
	}

	return out.(Result), nil
}

// complete 发起一次 chat/completions 调用并解析结构化结果。
func (p *OpenAIProvider) complete(ctx context.Context, prompt string) (Result, error) {
	body := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
		Temperature: 0.3,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("llm backend status %d: %s", resp.StatusCode, truncate(string(payload), 256))
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return Result{}, fmt.Errorf("decode llm response: %w", err)
	}
	if parsed.Error != nil {
		return Result{}, fmt.Errorf("llm backend error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return Result{}, errors.New("llm backend returned no choices")
	}

	var result Result
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &result); err != nil {
		return Result{}, fmt.Errorf("decode structured result: %w", err)
	}

	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
