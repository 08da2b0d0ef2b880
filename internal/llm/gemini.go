package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig задаёт параметры клиента Gemini.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiClient запрашивает черновики маршрутов у Google Gemini.
// Соединение создаётся на время одного запроса.
type GeminiClient struct {
	cfg GeminiConfig
}

var _ Client = (*GeminiClient)(nil)

// NewGemini создаёт клиента Gemini.
func NewGemini(cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &GeminiClient{cfg: cfg}, nil
}

// SuggestItinerary запрашивает у Gemini черновик маршрута.
func (c *GeminiClient) SuggestItinerary(ctx context.Context, req Request) (*Itinerary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента Gemini: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(c.cfg.Model)
	resp, err := model.GenerateContent(ctx, genai.Text(BuildPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("Gemini вернул пустой ответ")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("в ответе Gemini нет текста")
	}

	return ParseItinerary(sb.String())
}

// Provider возвращает имя провайдера.
func (c *GeminiClient) Provider() string {
	return "gemini"
}
