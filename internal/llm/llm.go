// Package llm реализует получение черновиков маршрутов от языковых моделей.
// Поддерживаются Perplexity (OpenAI-совместимый API) и Gemini. Провайдер
// выбирается конфигурацией, для остального кода клиенты взаимозаменяемы.
package llm

import (
	"context"
	"errors"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/config"
)

// ErrNotConfigured возвращается, когда провайдер LLM не настроен.
var ErrNotConfigured = errors.New("провайдер LLM не настроен")

// catalogLimit ограничивает число мест каталога в промпте,
// чтобы не упереться в лимит токенов.
const catalogLimit = 50

// CatalogEntry описывает место каталога для включения в промпт.
type CatalogEntry struct {
	Name        string
	Category    string
	Description string
}

// Request описывает параметры запроса черновика маршрута.
type Request struct {
	City             string
	DurationHours    int
	Interests        []string
	MaxBudget        float64
	RouteName        string
	RouteDescription string
	PlaceTypes       []string       // типы мест; если не заданы, определяются по названию и описанию
	Catalog          []CatalogEntry // доступные места каталога
}

// Suggestion описывает одно место из ответа модели.
type Suggestion struct {
	Name          string   `json:"name"`
	Order         int      `json:"order"`
	VisitDuration int      `json:"visit_duration"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
}

// HasCoordinates сообщает, заданы ли в подсказке осмысленные координаты.
func (s *Suggestion) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil && *s.Latitude != 0 && *s.Longitude != 0
}

// Itinerary представляет разобранный ответ модели.
type Itinerary struct {
	Name        string
	Description string
	Attractions []Suggestion
}

// Client получает от языковой модели черновик маршрута.
type Client interface {
	SuggestItinerary(ctx context.Context, req Request) (*Itinerary, error)
	Provider() string
}

// New создаёт клиента выбранного в конфигурации провайдера.
func New(cfg *config.Config) (Client, error) {
	switch cfg.LLMProvider {
	case "perplexity":
		return NewPerplexity(PerplexityConfig{
			APIKey:            cfg.PerplexityAPIKey,
			Model:             cfg.PerplexityModel,
			BaseURL:           cfg.PerplexityURL,
			Timeout:           cfg.LLMTimeout,
			RequestsPerMinute: cfg.LLMRequestsPerMin,
		})
	case "gemini":
		return NewGemini(GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: cfg.LLMTimeout,
		})
	default:
		return nil, ErrNotConfigured
	}
}
