package model

// Category представляет категорию достопримечательностей.
type Category struct {
	ID          int    `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Slug        string `db:"slug" json:"slug"`
	Description string `db:"description" json:"description"`
	Icon        string `db:"icon" json:"icon"` // имя иконки для фронтенда
}
