package service

import (
	"math"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/geo"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"
)

// waypoint - точка для построения порядка обхода: координаты плюс индекс
// в исходном списке.
type waypoint struct {
	point geo.Point
	index int
}

// nearestOrder строит порядок обхода точек жадным алгоритмом ближайшего
// соседа. Если задана стартовая точка, первой берётся ближайшая к ней,
// иначе - первая точка списка. Дальше на каждом шаге выбирается ближайшая
// из оставшихся к последней добавленной. При равных расстояниях
// сравнение строгое, поэтому остаётся более ранняя точка списка - порядок
// обхода детерминирован.
// Возвращает индексы исходного списка в порядке обхода и суммарную длину
// маршрута в километрах (без плеча от стартовой точки до первой).
func nearestOrder(points []waypoint, start *geo.Point) ([]int, float64) {
	if len(points) == 0 {
		return nil, 0
	}

	used := make([]bool, len(points))
	order := make([]int, 0, len(points))

	first := 0
	if start != nil {
		minDist := math.MaxFloat64
		for i, p := range points {
			if d := start.DistanceTo(p.point); d < minDist {
				minDist = d
				first = i
			}
		}
	}
	used[first] = true
	order = append(order, points[first].index)

	total := 0.0
	last := points[first].point
	for len(order) < len(points) {
		minDist := math.MaxFloat64
		minIndex := -1
		for i, p := range points {
			if used[i] {
				continue
			}
			if d := last.DistanceTo(p.point); d < minDist {
				minDist = d
				minIndex = i
			}
		}
		used[minIndex] = true
		order = append(order, points[minIndex].index)
		total += minDist
		last = points[minIndex].point
	}

	return order, total
}

// orderByNearest упорядочивает достопримечательности по географической
// близости и возвращает их вместе с суммарной длиной маршрута.
// Результат - перестановка входного списка.
func orderByNearest(attractions []model.Attraction, start *geo.Point) ([]model.Attraction, float64) {
	points := make([]waypoint, len(attractions))
	for i, a := range attractions {
		points[i] = waypoint{point: geo.Point{Lat: a.Latitude, Lon: a.Longitude}, index: i}
	}
	order, total := nearestOrder(points, start)

	ordered := make([]model.Attraction, 0, len(attractions))
	for _, idx := range order {
		ordered = append(ordered, attractions[idx])
	}
	return ordered, total
}

// routeDistance возвращает сумму расстояний между соседними точками списка.
// Для списка из нуля или одной точки расстояние равно нулю.
func routeDistance(attractions []model.Attraction) float64 {
	total := 0.0
	for i := 1; i < len(attractions); i++ {
		total += geo.Distance(
			attractions[i-1].Latitude, attractions[i-1].Longitude,
			attractions[i].Latitude, attractions[i].Longitude)
	}
	return total
}
