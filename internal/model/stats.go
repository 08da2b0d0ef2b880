package model

// RouteStats содержит агрегированную статистику по маршрутам.
type RouteStats struct {
	TotalRoutes      int              `db:"total_routes" json:"total_routes"`
	PublicRoutes     int              `db:"public_routes" json:"public_routes"`
	TotalViews       int              `db:"total_views" json:"total_views"`
	AvgDurationHours float64          `db:"avg_duration_hours" json:"avg_duration_hours"`
	AvgDistanceKm    float64          `db:"avg_distance_km" json:"avg_distance_km"`
	Durations        []DurationBucket `db:"-" json:"duration_distribution"`
}

// DurationBucket показывает число маршрутов заданной длительности.
type DurationBucket struct {
	DurationHours int `db:"duration_hours" json:"duration_hours"`
	Count         int `db:"count" json:"count"`
}

// AttractionMention содержит достопримечательность и число маршрутов,
// в которые она входит.
type AttractionMention struct {
	Attraction
	MentionCount int `db:"mention_count" json:"mention_count"`
}
