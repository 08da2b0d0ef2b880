package service

import (
	"github.com/Jack1337322/tourist-routes-service-backend/internal/geo"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/logger"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"
)

// routeStorage - нужная сервису маршрутов часть хранилища.
type routeStorage interface {
	CreateWithStops(route *model.Route, stops []model.RouteAttraction) (int, error)
	GetByID(id int) (*model.Route, error)
	ListByUser(userID int) ([]model.Route, error)
	ListPublic() ([]model.Route, error)
	ListFavorites(userID int) ([]model.Route, error)
	GetStops(routeID int) ([]model.RouteAttraction, error)
	AddStop(routeID, attractionID, visitDuration int, notes string) error
	UpdateOrder(routeID int, stopIDs []int) error
	UpdateMetrics(routeID int, distanceKm float64) error
	IncrementViews(routeID int) (int, error)
	ToggleFavorite(routeID int) (bool, error)
	Delete(routeID, userID int) error
	PopularRoutes(limit int) ([]model.Route, error)
	Stats() (*model.RouteStats, error)
}

// attractionLookup отдаёт достопримечательности по списку id.
type attractionLookup interface {
	GetByIDs(ids []int) (map[int]model.Attraction, error)
}

// RouteService содержит бизнес-логику работы с сохранёнными маршрутами.
type RouteService struct {
	routes      routeStorage
	attractions attractionLookup
}

// NewRouteService создаёт новый сервис маршрутов.
func NewRouteService(routes routeStorage, attractions attractionLookup) *RouteService {
	return &RouteService{routes: routes, attractions: attractions}
}

// GetWithStops возвращает маршрут вместе с остановками и данными
// достопримечательностей в порядке следования.
func (s *RouteService) GetWithStops(routeID int) (*model.Route, []model.RouteStop, error) {
	route, err := s.routes.GetByID(routeID)
	if err != nil {
		return nil, nil, err
	}
	stops, err := s.routes.GetStops(routeID)
	if err != nil {
		return nil, nil, err
	}
	composed, err := s.composeStops(stops)
	if err != nil {
		return nil, nil, err
	}
	return route, composed, nil
}

// ListByUser возвращает маршруты пользователя.
func (s *RouteService) ListByUser(userID int) ([]model.Route, error) {
	return s.routes.ListByUser(userID)
}

// ListPublic возвращает публичные маршруты.
func (s *RouteService) ListPublic() ([]model.Route, error) {
	return s.routes.ListPublic()
}

// ListFavorites возвращает избранные маршруты пользователя.
func (s *RouteService) ListFavorites(userID int) ([]model.Route, error) {
	return s.routes.ListFavorites(userID)
}

// CreateManual сохраняет маршрут, собранный пользователем вручную:
// остановки идут в заданном порядке, расстояние считается по ним.
func (s *RouteService) CreateManual(userID int, name, description string, durationHours int,
	budget float64, isPublic bool, attractionIDs []int) (*model.Route, []model.RouteStop, error) {
	if durationHours <= 0 {
		durationHours = 1
	}
	byID, err := s.attractions.GetByIDs(attractionIDs)
	if err != nil {
		return nil, nil, err
	}

	var ordered []model.Attraction
	var stops []model.RouteAttraction
	for _, id := range attractionIDs {
		attraction, ok := byID[id]
		if !ok {
			continue // несуществующие id пропускаются
		}
		ordered = append(ordered, attraction)
		stops = append(stops, model.RouteAttraction{
			AttractionID:  id,
			Order:         len(stops) + 1,
			VisitDuration: attraction.VisitDuration,
		})
	}
	if len(stops) == 0 {
		return nil, nil, ErrNoCandidates
	}

	route := &model.Route{
		UserID:        userID,
		Name:          name,
		Description:   description,
		DurationHours: durationHours,
		Budget:        budget,
		DistanceKm:    routeDistance(ordered),
		IsPublic:      isPublic,
	}
	id, err := s.routes.CreateWithStops(route, stops)
	if err != nil {
		return nil, nil, err
	}
	route.ID = id

	composed := make([]model.RouteStop, len(stops))
	for i := range stops {
		stops[i].RouteID = id
		composed[i] = model.RouteStop{RouteAttraction: stops[i], Attraction: ordered[i]}
	}
	return route, composed, nil
}

// Reoptimize переупорядочивает остановки маршрута по географической
// близости, не меняя их состав. Отправной точкой служит текущая первая
// остановка, поэтому повторный вызов на неизменном составе даёт тот же
// порядок и то же расстояние. Остановки нумеруются заново с единицы,
// длина маршрута пересчитывается и сохраняется.
func (s *RouteService) Reoptimize(routeID int) (*model.Route, []model.RouteStop, error) {
	route, err := s.routes.GetByID(routeID)
	if err != nil {
		return nil, nil, err
	}
	stops, err := s.routes.GetStops(routeID)
	if err != nil {
		return nil, nil, err
	}
	if len(stops) < 2 {
		composed, err := s.composeStops(stops)
		if err != nil {
			return nil, nil, err
		}
		return route, composed, nil
	}

	ids := make([]int, len(stops))
	for i, st := range stops {
		ids[i] = st.AttractionID
	}
	byID, err := s.attractions.GetByIDs(ids)
	if err != nil {
		return nil, nil, err
	}

	points := make([]waypoint, len(stops))
	for i, st := range stops {
		attraction := byID[st.AttractionID]
		points[i] = waypoint{
			point: geo.Point{Lat: attraction.Latitude, Lon: attraction.Longitude},
			index: i,
		}
	}
	order, distance := nearestOrder(points, nil)

	stopIDs := make([]int, len(order))
	composed := make([]model.RouteStop, len(order))
	for pos, idx := range order {
		stop := stops[idx]
		stopIDs[pos] = stop.ID
		stop.Order = pos + 1
		composed[pos] = model.RouteStop{RouteAttraction: stop, Attraction: byID[stop.AttractionID]}
	}

	if err := s.routes.UpdateOrder(routeID, stopIDs); err != nil {
		return nil, nil, err
	}
	if err := s.routes.UpdateMetrics(routeID, distance); err != nil {
		return nil, nil, err
	}
	route.DistanceKm = distance

	logger.Info("маршрут #%d переупорядочен: %d остановок, %.1f км", routeID, len(stops), distance)
	return route, composed, nil
}

// AddStop добавляет достопримечательность в конец маршрута.
func (s *RouteService) AddStop(routeID, attractionID int) error {
	byID, err := s.attractions.GetByIDs([]int{attractionID})
	if err != nil {
		return err
	}
	attraction, ok := byID[attractionID]
	if !ok {
		return ErrNoCandidates
	}
	return s.routes.AddStop(routeID, attractionID, attraction.VisitDuration, "")
}

// Delete удаляет маршрут пользователя.
func (s *RouteService) Delete(routeID, userID int) error {
	return s.routes.Delete(routeID, userID)
}

// IncrementViews увеличивает счётчик просмотров маршрута.
func (s *RouteService) IncrementViews(routeID int) (int, error) {
	return s.routes.IncrementViews(routeID)
}

// ToggleFavorite переключает признак избранного маршрута.
func (s *RouteService) ToggleFavorite(routeID int) (bool, error) {
	return s.routes.ToggleFavorite(routeID)
}

// Popular возвращает публичные маршруты по убыванию просмотров.
func (s *RouteService) Popular(limit int) ([]model.Route, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.routes.PopularRoutes(limit)
}

// Stats возвращает агрегированную статистику по маршрутам.
func (s *RouteService) Stats() (*model.RouteStats, error) {
	return s.routes.Stats()
}

// composeStops дополняет остановки данными достопримечательностей.
func (s *RouteService) composeStops(stops []model.RouteAttraction) ([]model.RouteStop, error) {
	ids := make([]int, len(stops))
	for i, st := range stops {
		ids[i] = st.AttractionID
	}
	byID, err := s.attractions.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	composed := make([]model.RouteStop, len(stops))
	for i, st := range stops {
		composed[i] = model.RouteStop{RouteAttraction: st, Attraction: byID[st.AttractionID]}
	}
	return composed, nil
}
