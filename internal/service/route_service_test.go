package service

import (
	"database/sql"
	"sort"
	"testing"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRouteStorage хранит один маршрут в памяти.
type fakeRouteStorage struct {
	route      *model.Route
	stops      []model.RouteAttraction
	orderCalls [][]int
}

func (s *fakeRouteStorage) CreateWithStops(route *model.Route, stops []model.RouteAttraction) (int, error) {
	s.route = route
	s.stops = stops
	return 1, nil
}

func (s *fakeRouteStorage) GetByID(id int) (*model.Route, error) {
	if s.route == nil || s.route.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *s.route
	return &copied, nil
}

func (s *fakeRouteStorage) ListByUser(userID int) ([]model.Route, error) { return nil, nil }

func (s *fakeRouteStorage) ListPublic() ([]model.Route, error) { return nil, nil }

func (s *fakeRouteStorage) ListFavorites(userID int) ([]model.Route, error) { return nil, nil }

func (s *fakeRouteStorage) GetStops(routeID int) ([]model.RouteAttraction, error) {
	out := make([]model.RouteAttraction, len(s.stops))
	copy(out, s.stops)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *fakeRouteStorage) AddStop(routeID, attractionID, visitDuration int, notes string) error {
	s.stops = append(s.stops, model.RouteAttraction{
		ID:            100 + len(s.stops),
		RouteID:       routeID,
		AttractionID:  attractionID,
		Order:         len(s.stops) + 1,
		VisitDuration: visitDuration,
		Notes:         notes,
	})
	return nil
}

func (s *fakeRouteStorage) UpdateOrder(routeID int, stopIDs []int) error {
	recorded := make([]int, len(stopIDs))
	copy(recorded, stopIDs)
	s.orderCalls = append(s.orderCalls, recorded)
	for pos, stopID := range stopIDs {
		for i := range s.stops {
			if s.stops[i].ID == stopID {
				s.stops[i].Order = pos + 1
			}
		}
	}
	return nil
}

func (s *fakeRouteStorage) UpdateMetrics(routeID int, distanceKm float64) error {
	s.route.DistanceKm = distanceKm
	return nil
}

func (s *fakeRouteStorage) IncrementViews(routeID int) (int, error) {
	s.route.ViewsCount++
	return s.route.ViewsCount, nil
}

func (s *fakeRouteStorage) ToggleFavorite(routeID int) (bool, error) {
	s.route.IsFavorite = !s.route.IsFavorite
	return s.route.IsFavorite, nil
}

func (s *fakeRouteStorage) Delete(routeID, userID int) error { return nil }

func (s *fakeRouteStorage) PopularRoutes(limit int) ([]model.Route, error) { return nil, nil }

func (s *fakeRouteStorage) Stats() (*model.RouteStats, error) { return &model.RouteStats{}, nil }

// fakeAttractionLookup отдаёт достопримечательности из карты.
type fakeAttractionLookup struct {
	attractions map[int]model.Attraction
}

func (l *fakeAttractionLookup) GetByIDs(ids []int) (map[int]model.Attraction, error) {
	out := map[int]model.Attraction{}
	for _, id := range ids {
		if a, ok := l.attractions[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func reoptimizeFixture() (*RouteService, *fakeRouteStorage) {
	// три точки на одной широте: ближний порядок от первой - 1, 3, 2
	lookup := &fakeAttractionLookup{attractions: map[int]model.Attraction{
		1: att(1, "Первая", 0, 0, 4.0, 0, true, 60),
		2: att(2, "Дальняя", 0, 0.2, 4.0, 0, true, 60),
		3: att(3, "Средняя", 0, 0.1, 4.0, 0, true, 60),
	}}
	storage := &fakeRouteStorage{
		route: &model.Route{ID: 5, UserID: 1, Name: "Тест", DurationHours: 4},
		stops: []model.RouteAttraction{
			{ID: 11, RouteID: 5, AttractionID: 1, Order: 1, VisitDuration: 60},
			{ID: 12, RouteID: 5, AttractionID: 2, Order: 2, VisitDuration: 60},
			{ID: 13, RouteID: 5, AttractionID: 3, Order: 3, VisitDuration: 60},
		},
	}
	return NewRouteService(storage, lookup), storage
}

func TestReoptimizeReordersByProximity(t *testing.T) {
	service, storage := reoptimizeFixture()

	route, stops, err := service.Reoptimize(5)
	require.NoError(t, err)

	require.Len(t, stops, 3)
	assert.Equal(t, "Первая", stops[0].Attraction.Name)
	assert.Equal(t, "Средняя", stops[1].Attraction.Name)
	assert.Equal(t, "Дальняя", stops[2].Attraction.Name)

	// нумерация сплошная с единицы
	for i, stop := range stops {
		assert.Equal(t, i+1, stop.Order)
	}

	require.Len(t, storage.orderCalls, 1)
	assert.Equal(t, []int{11, 13, 12}, storage.orderCalls[0])
	assert.Greater(t, route.DistanceKm, 0.0)
}

func TestReoptimizeIsStable(t *testing.T) {
	service, storage := reoptimizeFixture()

	_, first, err := service.Reoptimize(5)
	require.NoError(t, err)
	firstRoute, err := storage.GetByID(5)
	require.NoError(t, err)

	_, second, err := service.Reoptimize(5)
	require.NoError(t, err)
	secondRoute, err := storage.GetByID(5)
	require.NoError(t, err)

	// повторный вызов на неизменном составе даёт тот же порядок
	// и то же расстояние
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].AttractionID, second[i].AttractionID)
		assert.Equal(t, first[i].Order, second[i].Order)
	}
	assert.Equal(t, firstRoute.DistanceKm, secondRoute.DistanceKm)
}

func TestReoptimizeSingleStop(t *testing.T) {
	lookup := &fakeAttractionLookup{attractions: map[int]model.Attraction{
		1: att(1, "Одна", 0, 0, 4.0, 0, true, 60),
	}}
	storage := &fakeRouteStorage{
		route: &model.Route{ID: 5, UserID: 1, Name: "Тест"},
		stops: []model.RouteAttraction{{ID: 11, RouteID: 5, AttractionID: 1, Order: 1, VisitDuration: 60}},
	}
	service := NewRouteService(storage, lookup)

	_, stops, err := service.Reoptimize(5)
	require.NoError(t, err)

	assert.Len(t, stops, 1)
	assert.Empty(t, storage.orderCalls, "одну остановку переупорядочивать не нужно")
}

func TestReoptimizeUnknownRoute(t *testing.T) {
	service, _ := reoptimizeFixture()

	_, _, err := service.Reoptimize(99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateManual(t *testing.T) {
	lookup := &fakeAttractionLookup{attractions: map[int]model.Attraction{
		1: att(1, "Первая", 55.80, 49.10, 4.0, 0, true, 60),
		2: att(2, "Вторая", 55.79, 49.11, 4.0, 0, true, 30),
	}}
	storage := &fakeRouteStorage{}
	service := NewRouteService(storage, lookup)

	// несуществующий id 9 просто пропускается
	route, stops, err := service.CreateManual(1, "Мой маршрут", "", 3, 0, false, []int{2, 9, 1})
	require.NoError(t, err)

	assert.Equal(t, 1, route.ID)
	require.Len(t, stops, 2)
	assert.Equal(t, 2, stops[0].AttractionID)
	assert.Equal(t, 1, stops[0].Order)
	assert.Equal(t, 30, stops[0].VisitDuration)
	assert.Equal(t, 1, stops[1].AttractionID)
	assert.Equal(t, 2, stops[1].Order)
	assert.Greater(t, route.DistanceKm, 0.0)
}

func TestCreateManualNoValidStops(t *testing.T) {
	service := NewRouteService(&fakeRouteStorage{}, &fakeAttractionLookup{attractions: map[int]model.Attraction{}})

	_, _, err := service.CreateManual(1, "Пустой", "", 1, 0, false, []int{7})
	assert.ErrorIs(t, err, ErrNoCandidates)
}
