package llm

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/logger"
)

func TestParseItineraryCleanJSON(t *testing.T) {
	content := `{
		"name": "Маршрут по центру",
		"description": "Прогулка по историческому центру.",
		"attractions": [
			{
				"name": "Казанский Кремль",
				"order": 1,
				"visit_duration": 90,
				"latitude": 55.7981,
				"longitude": 49.1063,
				"description": "Крепость",
				"address": "Кремль, Казань"
			},
			{
				"name": "Улица Баумана",
				"order": 2,
				"visit_duration": 60,
				"latitude": 55.7947,
				"longitude": 49.1054
			}
		]
	}`

	it, err := ParseItinerary(content)
	require.NoError(t, err)

	assert.Equal(t, "Маршрут по центру", it.Name)
	assert.Equal(t, "Прогулка по историческому центру.", it.Description)
	require.Len(t, it.Attractions, 2)

	first := it.Attractions[0]
	assert.Equal(t, "Казанский Кремль", first.Name)
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 90, first.VisitDuration)
	require.NotNil(t, first.Latitude)
	assert.InDelta(t, 55.7981, *first.Latitude, 0.0001)
	assert.True(t, first.HasCoordinates())
}

func TestParseItineraryWrappedInMarkdown(t *testing.T) {
	content := "Вот маршрут:\n```json\n" +
		`{"name": "Тест", "description": "", "attractions": [{"name": "Место", "order": 1}]}` +
		"\n```\nОбращайтесь ещё!"

	it, err := ParseItinerary(content)
	require.NoError(t, err)
	assert.Equal(t, "Тест", it.Name)
	require.Len(t, it.Attractions, 1)
	assert.Equal(t, "Место", it.Attractions[0].Name)
}

func TestParseItineraryMissingAttractions(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	it, err := ParseItinerary(`{"name": "Без мест", "description": "Только текст"}`)
	require.NoError(t, err)
	assert.Empty(t, it.Attractions)
	assert.Contains(t, buf.String(), "нет массива attractions")
}

func TestParseItineraryAttractionsWrongType(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	defer logger.SetOutput(os.Stderr)

	it, err := ParseItinerary(`{"name": "Кривой ответ", "attractions": "Кремль, Баумана"}`)
	require.NoError(t, err)
	assert.Equal(t, "Кривой ответ", it.Name)
	assert.Empty(t, it.Attractions)
}

func TestParseItineraryInvalidJSON(t *testing.T) {
	_, err := ParseItinerary("К сожалению, я не могу составить маршрут.")
	assert.Error(t, err)
}

func TestSuggestionHasCoordinates(t *testing.T) {
	lat, lon, zero := 55.8, 49.1, 0.0

	tests := []struct {
		name string
		s    Suggestion
		want bool
	}{
		{"both set", Suggestion{Latitude: &lat, Longitude: &lon}, true},
		{"missing", Suggestion{}, false},
		{"only latitude", Suggestion{Latitude: &lat}, false},
		{"zero coordinates", Suggestion{Latitude: &zero, Longitude: &zero}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.HasCoordinates())
		})
	}
}
