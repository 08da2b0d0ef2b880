package repository

import (
	"database/sql"
	"fmt"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"

	"github.com/jmoiron/sqlx"
)

// RouteRepository обеспечивает доступ к маршрутам и их остановкам.
type RouteRepository struct {
	db *sqlx.DB
}

// NewRouteRepository создаёт новый репозиторий маршрутов.
func NewRouteRepository(db *sqlx.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// CreateWithStops сохраняет маршрут вместе с остановками в одной транзакции.
// Либо сохраняется всё, либо ничего. Возвращает id созданного маршрута.
func (r *RouteRepository) CreateWithStops(route *model.Route, stops []model.RouteAttraction) (int, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("не удалось открыть транзакцию: %w", err)
	}

	var id int
	err = tx.QueryRow(
		`INSERT INTO routes (user_id, name, description, duration_hours, budget, distance_km, is_public)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		route.UserID, route.Name, route.Description, route.DurationHours,
		route.Budget, route.DistanceKm, route.IsPublic,
	).Scan(&id)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("не удалось создать маршрут: %w", err)
	}

	for _, stop := range stops {
		_, err := tx.Exec(
			`INSERT INTO route_attractions (route_id, attraction_id, order_index, visit_duration, notes)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, stop.AttractionID, stop.Order, stop.VisitDuration, stop.Notes)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("не удалось сохранить остановку маршрута: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("не удалось зафиксировать маршрут: %w", err)
	}
	return id, nil
}

// GetByID получает маршрут по идентификатору.
func (r *RouteRepository) GetByID(id int) (*model.Route, error) {
	var route model.Route
	err := r.db.Get(&route, "SELECT * FROM routes WHERE id=$1", id)
	if err != nil {
		return nil, err
	}
	return &route, nil
}

// ListByUser возвращает маршруты пользователя, новые первыми.
func (r *RouteRepository) ListByUser(userID int) ([]model.Route, error) {
	routes := []model.Route{}
	err := r.db.Select(&routes, "SELECT * FROM routes WHERE user_id=$1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении маршрутов пользователя: %w", err)
	}
	return routes, nil
}

// ListPublic возвращает публичные маршруты, новые первыми.
func (r *RouteRepository) ListPublic() ([]model.Route, error) {
	routes := []model.Route{}
	err := r.db.Select(&routes, "SELECT * FROM routes WHERE is_public = TRUE ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении публичных маршрутов: %w", err)
	}
	return routes, nil
}

// ListFavorites возвращает избранные маршруты пользователя.
func (r *RouteRepository) ListFavorites(userID int) ([]model.Route, error) {
	routes := []model.Route{}
	err := r.db.Select(&routes,
		"SELECT * FROM routes WHERE user_id=$1 AND is_favorite = TRUE ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении избранных маршрутов: %w", err)
	}
	return routes, nil
}

// GetStops возвращает остановки маршрута в текущем порядке следования.
func (r *RouteRepository) GetStops(routeID int) ([]model.RouteAttraction, error) {
	stops := []model.RouteAttraction{}
	err := r.db.Select(&stops,
		"SELECT * FROM route_attractions WHERE route_id=$1 ORDER BY order_index", routeID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении остановок маршрута: %w", err)
	}
	return stops, nil
}

// AddStop добавляет остановку в конец маршрута.
func (r *RouteRepository) AddStop(routeID, attractionID, visitDuration int, notes string) error {
	var order int
	err := r.db.Get(&order, "SELECT COALESCE(MAX(order_index), 0) + 1 FROM route_attractions WHERE route_id=$1", routeID)
	if err != nil {
		return fmt.Errorf("ошибка при определении номера остановки: %w", err)
	}
	_, err = r.db.Exec(
		`INSERT INTO route_attractions (route_id, attraction_id, order_index, visit_duration, notes)
		 VALUES ($1, $2, $3, $4, $5)`,
		routeID, attractionID, order, visitDuration, notes)
	if err != nil {
		return fmt.Errorf("ошибка при добавлении остановки: %w", err)
	}
	return nil
}

// UpdateOrder перенумеровывает остановки маршрута в заданном порядке их id.
// Нумерация начинается с 1 и идёт без пропусков.
func (r *RouteRepository) UpdateOrder(routeID int, stopIDs []int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	for idx, stopID := range stopIDs {
		_, err := tx.Exec(
			"UPDATE route_attractions SET order_index=$1 WHERE id=$2 AND route_id=$3",
			idx+1, stopID, routeID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("не удалось обновить порядок маршрута: %w", err)
		}
	}
	return tx.Commit()
}

// UpdateMetrics сохраняет пересчитанную длину маршрута.
func (r *RouteRepository) UpdateMetrics(routeID int, distanceKm float64) error {
	_, err := r.db.Exec("UPDATE routes SET distance_km=$1, updated_at=NOW() WHERE id=$2", distanceKm, routeID)
	if err != nil {
		return fmt.Errorf("не удалось обновить параметры маршрута: %w", err)
	}
	return nil
}

// IncrementViews увеличивает счётчик просмотров и возвращает новое значение.
func (r *RouteRepository) IncrementViews(routeID int) (int, error) {
	var views int
	err := r.db.QueryRow(
		"UPDATE routes SET views_count = views_count + 1 WHERE id=$1 RETURNING views_count",
		routeID).Scan(&views)
	if err != nil {
		return 0, err
	}
	return views, nil
}

// ToggleFavorite переключает признак избранного и возвращает новое значение.
func (r *RouteRepository) ToggleFavorite(routeID int) (bool, error) {
	var favorite bool
	err := r.db.QueryRow(
		"UPDATE routes SET is_favorite = NOT is_favorite WHERE id=$1 RETURNING is_favorite",
		routeID).Scan(&favorite)
	if err != nil {
		return false, err
	}
	return favorite, nil
}

// Delete удаляет маршрут пользователя вместе с остановками.
func (r *RouteRepository) Delete(routeID, userID int) error {
	res, err := r.db.Exec("DELETE FROM routes WHERE id=$1 AND user_id=$2", routeID, userID)
	if err != nil {
		return fmt.Errorf("не удалось удалить маршрут: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PopularRoutes возвращает публичные маршруты по убыванию просмотров.
func (r *RouteRepository) PopularRoutes(limit int) ([]model.Route, error) {
	routes := []model.Route{}
	err := r.db.Select(&routes,
		"SELECT * FROM routes WHERE is_public = TRUE ORDER BY views_count DESC, id LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении популярных маршрутов: %w", err)
	}
	return routes, nil
}

// Stats собирает агрегированную статистику по маршрутам.
func (r *RouteRepository) Stats() (*model.RouteStats, error) {
	var stats model.RouteStats
	err := r.db.Get(&stats,
		`SELECT COUNT(*) AS total_routes,
		        COUNT(*) FILTER (WHERE is_public) AS public_routes,
		        COALESCE(SUM(views_count), 0) AS total_views,
		        COALESCE(AVG(duration_hours), 0) AS avg_duration_hours,
		        COALESCE(AVG(distance_km), 0) AS avg_distance_km
		 FROM routes`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подсчёте статистики маршрутов: %w", err)
	}

	buckets := []model.DurationBucket{}
	err = r.db.Select(&buckets,
		`SELECT duration_hours, COUNT(*) AS count
		 FROM routes GROUP BY duration_hours ORDER BY duration_hours`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подсчёте распределения длительностей: %w", err)
	}
	stats.Durations = buckets

	return &stats, nil
}
