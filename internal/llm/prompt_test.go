package llm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPlaceTypes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty text", "", []string{"attractions"}},
		{"nothing recognized", "просто какой-то текст", []string{"attractions"}},
		{"single type", "музеи и галереи города", []string{"museums"}},
		{"food and drinks", "ужин в ресторане и коктейли в баре", []string{"restaurants", "bars"}},
		{"shopping", "шоппинг и сувениры", []string{"shopping"}},
		{"mixed walk", "прогулка по набережной и кофейня", []string{"cafes", "parks"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPlaceTypes(tt.text))
		})
	}
}

func TestBuildPromptBasics(t *testing.T) {
	prompt := BuildPrompt(Request{
		City:          "Казань",
		DurationHours: 6,
		Interests:     []string{"история", "еда"},
		MaxBudget:     1500,
		Catalog: []CatalogEntry{
			{Name: "Казанский Кремль", Category: "История", Description: "Крепость"},
			{Name: "Чаша", Category: "", Description: "Центр семьи"},
		},
	})

	assert.Contains(t, prompt, "по городу Казань на 6 часов")
	assert.Contains(t, prompt, "Интересы пользователя: история, еда")
	assert.Contains(t, prompt, "Бюджет: 1500 рублей")
	assert.Contains(t, prompt, "- Казанский Кремль (История) - Крепость")
	assert.Contains(t, prompt, "- Чаша (Без категории) - Центр семьи")
	assert.Contains(t, prompt, `"visit_duration"`)
	assert.Contains(t, prompt, "ТОЛЬКО валидным JSON")
}

func TestBuildPromptNoInterests(t *testing.T) {
	prompt := BuildPrompt(Request{City: "Казань", DurationHours: 4})
	assert.Contains(t, prompt, "Интересы пользователя: не указаны")
}

func TestBuildPromptCatalogLimit(t *testing.T) {
	var catalog []CatalogEntry
	for i := 1; i <= catalogLimit+10; i++ {
		catalog = append(catalog, CatalogEntry{Name: fmt.Sprintf("Место %d", i)})
	}

	prompt := BuildPrompt(Request{City: "Казань", DurationHours: 4, Catalog: catalog})

	assert.Contains(t, prompt, fmt.Sprintf("Место %d", catalogLimit))
	assert.NotContains(t, prompt, fmt.Sprintf("Место %d", catalogLimit+1))
}

func TestBuildPromptThemeFromName(t *testing.T) {
	prompt := BuildPrompt(Request{
		City:          "Казань",
		DurationHours: 5,
		RouteName:     "Бары и клубы",
	})

	require.Contains(t, prompt, "Название маршрута (используй это название или похожее): Бары и клубы")
	assert.Contains(t, prompt, "Вечер (18-22): бары")
}

func TestBuildPromptTimeDistribution(t *testing.T) {
	prompt := BuildPrompt(Request{
		City:          "Казань",
		DurationHours: 8,
		PlaceTypes:    []string{"attractions", "restaurants", "bars"},
	})

	assert.Contains(t, prompt, "Утро (9-12): достопримечательности")
	assert.Contains(t, prompt, "Обед (12-14): рестораны")
	assert.Contains(t, prompt, "Вечер (18-22): бары, рестораны")
}

func TestBuildPromptPlainAttractionsHasNoDistribution(t *testing.T) {
	prompt := BuildPrompt(Request{City: "Казань", DurationHours: 4})
	assert.False(t, strings.Contains(prompt, "Утро (9-12)"),
		"для маршрута без темы распределение по времени дня не добавляется")
}
