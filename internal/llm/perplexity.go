package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Значения по умолчанию для клиента Perplexity.
const (
	defaultPerplexityURL   = "https://api.perplexity.ai/chat/completions"
	defaultPerplexityModel = "sonar"
	defaultTimeout         = 30 * time.Second
	defaultRequestsPerMin  = 20
)

// PerplexityConfig задаёт параметры клиента Perplexity.
type PerplexityConfig struct {
	APIKey            string
	Model             string
	BaseURL           string // полный адрес chat/completions
	Timeout           time.Duration
	RequestsPerMinute int
}

// PerplexityClient запрашивает черновики маршрутов у Perplexity
// через OpenAI-совместимый chat/completions API.
type PerplexityClient struct {
	cfg     PerplexityConfig
	client  *http.Client
	limiter *rate.Limiter
}

var _ Client = (*PerplexityClient)(nil)

// NewPerplexity создаёт клиента Perplexity.
func NewPerplexity(cfg PerplexityConfig) (*PerplexityClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultPerplexityURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultPerplexityModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMin
	}

	return &PerplexityClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
	}, nil
}

// chatCompletionRequest повторяет формат запроса OpenAI /chat/completions.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// SuggestItinerary запрашивает у Perplexity черновик маршрута.
func (c *PerplexityClient) SuggestItinerary(ctx context.Context, req Request) (*Itinerary, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ожидание лимита запросов: %w", err)
	}

	reqBody := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatCompletionMsg{
			{Role: "user", Content: BuildPrompt(req)},
		},
		MaxTokens:   2000,
		Temperature: 0.7,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к Perplexity: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа Perplexity: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа Perplexity: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("Perplexity вернул ошибку: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Perplexity вернул статус %d: %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("Perplexity вернул пустой ответ")
	}

	return ParseItinerary(chatResp.Choices[0].Message.Content)
}

// Provider возвращает имя провайдера.
func (c *PerplexityClient) Provider() string {
	return "perplexity"
}
