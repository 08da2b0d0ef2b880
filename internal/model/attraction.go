package model

import "time"

// Attraction представляет достопримечательность из каталога.
type Attraction struct {
	ID               int       `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Slug             string    `db:"slug" json:"slug"`
	Description      string    `db:"description" json:"description"`
	ShortDescription string    `db:"short_description" json:"short_description"`
	Latitude         float64   `db:"latitude" json:"latitude"`
	Longitude        float64   `db:"longitude" json:"longitude"`
	Address          string    `db:"address" json:"address"`
	CategoryID       *int      `db:"category_id" json:"category_id"`       // может быть без категории
	Rating           float64   `db:"rating" json:"rating"`                 // средний рейтинг от 0 до 5
	VisitDuration    int       `db:"visit_duration" json:"visit_duration"` // типичное время посещения в минутах
	Price            float64   `db:"price" json:"price"`
	IsFree           bool      `db:"is_free" json:"is_free"`
	Image            string    `db:"image" json:"image"`
	Website          string    `db:"website" json:"website"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Cost возвращает стоимость посещения: для бесплатных мест всегда 0.
func (a *Attraction) Cost() float64 {
	if a.IsFree {
		return 0
	}
	return a.Price
}
