package model

import "time"

// Route представляет сохранённый однодневный маршрут пользователя.
type Route struct {
	ID            int       `db:"id" json:"id"`
	UserID        int       `db:"user_id" json:"user_id"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	DurationHours int       `db:"duration_hours" json:"duration_hours"` // планируемая длительность в часах, не меньше 1
	Budget        float64   `db:"budget" json:"budget"`                 // денежный бюджет маршрута, 0 - без ограничения
	DistanceKm    float64   `db:"distance_km" json:"distance_km"`       // суммарное расстояние между остановками
	IsPublic      bool      `db:"is_public" json:"is_public"`
	IsFavorite    bool      `db:"is_favorite" json:"is_favorite"`
	ViewsCount    int       `db:"views_count" json:"views_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// RouteAttraction представляет остановку маршрута.
type RouteAttraction struct {
	ID            int    `db:"id" json:"id"`
	RouteID       int    `db:"route_id" json:"route_id"`
	AttractionID  int    `db:"attraction_id" json:"attraction_id"`
	Order         int    `db:"order_index" json:"order"`             // порядковый номер остановки, с 1 и без пропусков
	VisitDuration int    `db:"visit_duration" json:"visit_duration"` // время на остановке в минутах
	Notes         string `db:"notes" json:"notes"`                   // например, исходное название места из ответа нейросети
}

// RouteStop объединяет остановку маршрута с данными достопримечательности.
type RouteStop struct {
	RouteAttraction
	Attraction Attraction `json:"attraction"`
}
