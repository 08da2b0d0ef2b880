package llm

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/logger"
)

// jsonBlockRe выделяет JSON-объект из текста: модели нередко оборачивают
// ответ в markdown или сопровождают его пояснениями.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// rawItinerary нужен для разбора в два шага: массив attractions
// проверяется отдельно, чтобы ответ без него не терялся целиком.
type rawItinerary struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Attractions json.RawMessage `json:"attractions"`
}

// ParseItinerary извлекает черновик маршрута из текста ответа модели.
func ParseItinerary(content string) (*Itinerary, error) {
	payload := content
	if block := jsonBlockRe.FindString(content); block != "" {
		payload = block
	}

	var raw rawItinerary
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("не удалось разобрать ответ модели: %w", err)
	}

	it := &Itinerary{Name: raw.Name, Description: raw.Description}
	if len(raw.Attractions) == 0 || string(raw.Attractions) == "null" {
		logger.Warn("в ответе модели нет массива attractions")
		return it, nil
	}
	if err := json.Unmarshal(raw.Attractions, &it.Attractions); err != nil {
		logger.Warn("массив attractions в ответе модели не разобрался: %v", err)
		it.Attractions = nil
	}
	return it, nil
}
