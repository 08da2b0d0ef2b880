package service

import (
	"testing"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/geo"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// att создаёт достопримечательность для тестов.
func att(id int, name string, lat, lon, rating, price float64, free bool, duration int) model.Attraction {
	return model.Attraction{
		ID:            id,
		Name:          name,
		Latitude:      lat,
		Longitude:     lon,
		Rating:        rating,
		Price:         price,
		IsFree:        free,
		VisitDuration: duration,
		IsActive:      true,
	}
}

func TestOrderByNearestPermutation(t *testing.T) {
	input := []model.Attraction{
		att(1, "Кремль", 55.7989, 49.1064, 4.8, 0, true, 90),
		att(2, "Арена", 55.8208, 49.1605, 4.2, 500, false, 120),
		att(3, "Баумана", 55.7947, 49.1054, 4.5, 0, true, 60),
		att(4, "Чаша", 55.8130, 49.1083, 4.0, 0, true, 30),
	}

	ordered, total := orderByNearest(input, nil)

	require.Len(t, ordered, len(input))
	seen := map[int]bool{}
	for _, a := range ordered {
		assert.False(t, seen[a.ID], "место %d встретилось дважды", a.ID)
		seen[a.ID] = true
	}
	// суммарная длина равна сумме расстояний между соседями
	assert.InDelta(t, routeDistance(ordered), total, 1e-9)
}

func TestOrderByNearestGreedy(t *testing.T) {
	// без стартовой точки первой остаётся первая запись списка,
	// дальше всегда ближайшая из оставшихся
	input := []model.Attraction{
		att(1, "A", 55.7989, 49.1064, 4.8, 0, true, 60),
		att(2, "B", 55.8208, 49.1605, 4.5, 0, true, 60), // дальше от A, чем C
		att(3, "C", 55.7947, 49.1054, 4.0, 0, true, 60),
	}

	ordered, _ := orderByNearest(input, nil)

	require.Len(t, ordered, 3)
	assert.Equal(t, "A", ordered[0].Name)
	assert.Equal(t, "C", ordered[1].Name)
	assert.Equal(t, "B", ordered[2].Name)
}

func TestOrderByNearestStartPoint(t *testing.T) {
	input := []model.Attraction{
		att(1, "Далеко", 55.90, 49.30, 5.0, 0, true, 60),
		att(2, "Рядом", 55.7990, 49.1065, 3.0, 0, true, 60),
	}
	start := &geo.Point{Lat: 55.7989, Lon: 49.1064}

	ordered, _ := orderByNearest(input, start)

	assert.Equal(t, "Рядом", ordered[0].Name)
}

func TestOrderByNearestDeterminism(t *testing.T) {
	input := []model.Attraction{
		att(1, "A", 55.7989, 49.1064, 4.8, 0, true, 60),
		att(2, "B", 55.8208, 49.1605, 4.5, 0, true, 60),
		att(3, "C", 55.7947, 49.1054, 4.0, 0, true, 60),
		att(4, "D", 55.8130, 49.1083, 3.5, 0, true, 60),
	}

	first, d1 := orderByNearest(input, nil)
	second, d2 := orderByNearest(input, nil)

	assert.Equal(t, first, second)
	assert.Equal(t, d1, d2)
}

func TestOrderByNearestTieBreak(t *testing.T) {
	// B и C на одинаковом расстоянии от A: выигрывает более ранняя запись
	input := []model.Attraction{
		att(1, "A", 0, 0, 5.0, 0, true, 60),
		att(2, "B", 0, 1, 4.0, 0, true, 60),
		att(3, "C", 0, -1, 3.0, 0, true, 60),
	}

	ordered, _ := orderByNearest(input, nil)

	assert.Equal(t, "B", ordered[1].Name)
	assert.Equal(t, "C", ordered[2].Name)
}

func TestOrderByNearestSmallInputs(t *testing.T) {
	ordered, total := orderByNearest(nil, nil)
	assert.Empty(t, ordered)
	assert.Zero(t, total)

	single := []model.Attraction{att(1, "A", 55.80, 49.10, 4.0, 0, true, 60)}
	ordered, total = orderByNearest(single, nil)
	require.Len(t, ordered, 1)
	assert.Zero(t, total)
}

func TestRouteDistance(t *testing.T) {
	assert.Zero(t, routeDistance(nil))
	assert.Zero(t, routeDistance([]model.Attraction{att(1, "A", 55.80, 49.10, 4, 0, true, 60)}))

	two := []model.Attraction{
		att(1, "A", 55.80, 49.10, 4, 0, true, 60),
		att(2, "B", 55.79, 49.11, 4, 0, true, 60),
	}
	assert.InDelta(t, geo.Distance(55.80, 49.10, 55.79, 49.11), routeDistance(two), 1e-9)
}
