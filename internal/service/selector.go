package service

import (
	"math"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/geo"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/logger"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"
)

// travelMinPerKm - оценка времени в пути между остановками: две минуты
// на километр.
const travelMinPerKm = 2.0

// selectionCatalog - нужная подборщику часть каталога.
type selectionCatalog interface {
	FindForSelection(categoryIDs []int, maxBudget float64, freeOnly bool) ([]model.Attraction, error)
}

// Selector жадно подбирает места маршрута под бюджет времени и денег.
type Selector struct {
	catalog      selectionCatalog
	strictBudget bool
}

// NewSelector создаёт подборщик. При strictBudget подбор завершается
// ошибкой, если даже первое место не укладывается в бюджет; иначе первое
// место включается в маршрут всегда.
func NewSelector(catalog selectionCatalog, strictBudget bool) *Selector {
	return &Selector{catalog: catalog, strictBudget: strictBudget}
}

// Selection - итог подбора: места в порядке посещения и агрегаты.
type Selection struct {
	Attractions  []model.Attraction
	TotalCost    float64 // суммарная стоимость платных мест
	DistanceKm   float64 // суммарное расстояние между соседними местами
	TotalMinutes float64 // время посещений плюс оценка времени в пути
}

// Select подбирает места под бюджеты. Бюджет времени задаётся в часах,
// денежный бюджет 0 означает отсутствие ограничения. Кандидаты берутся из
// каталога по категориям и цене и рассматриваются по убыванию рейтинга.
// Первое место - ближайшее к стартовой точке, а без неё - с наибольшим
// рейтингом. Дальше на каждом шаге добавляется ближайшее к последнему из
// тех, что ещё укладываются в оба бюджета.
func (s *Selector) Select(durationHours int, maxBudget float64, categoryIDs []int, start *geo.Point) (*Selection, error) {
	candidates, err := s.catalog.FindForSelection(categoryIDs, maxBudget, false)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	budgetMinutes := float64(durationHours) * 60

	seed := 0
	if start != nil {
		minDist := math.MaxFloat64
		for i, c := range candidates {
			if d := start.DistanceTo(geo.Point{Lat: c.Latitude, Lon: c.Longitude}); d < minDist {
				minDist = d
				seed = i
			}
		}
	}

	seedOverTime := float64(candidates[seed].VisitDuration) > budgetMinutes
	seedOverCost := maxBudget > 0 && candidates[seed].Cost() > maxBudget
	if seedOverTime || seedOverCost {
		if s.strictBudget {
			return nil, ErrBudgetInfeasible
		}
		logger.Warn("первое место %q не укладывается в бюджет, маршрут будет из одного места",
			candidates[seed].Name)
	}

	used := make([]bool, len(candidates))
	used[seed] = true
	sel := &Selection{
		Attractions:  []model.Attraction{candidates[seed]},
		TotalCost:    candidates[seed].Cost(),
		TotalMinutes: float64(candidates[seed].VisitDuration),
	}

	last := candidates[seed]
	for {
		minDist := math.MaxFloat64
		minIndex := -1
		for i, c := range candidates {
			if used[i] {
				continue
			}
			d := geo.Distance(last.Latitude, last.Longitude, c.Latitude, c.Longitude)
			if sel.TotalMinutes+d*travelMinPerKm+float64(c.VisitDuration) > budgetMinutes {
				continue
			}
			if maxBudget > 0 && sel.TotalCost+c.Cost() > maxBudget {
				continue
			}
			if d < minDist {
				minDist = d
				minIndex = i
			}
		}
		if minIndex < 0 {
			break
		}

		used[minIndex] = true
		next := candidates[minIndex]
		sel.Attractions = append(sel.Attractions, next)
		sel.TotalCost += next.Cost()
		sel.TotalMinutes += minDist*travelMinPerKm + float64(next.VisitDuration)
		sel.DistanceKm += minDist
		last = next
	}

	logger.Debug("подобрано мест: %d, стоимость: %.0f, время: %.0f мин, расстояние: %.1f км",
		len(sel.Attractions), sel.TotalCost, sel.TotalMinutes, sel.DistanceKm)
	return sel, nil
}
