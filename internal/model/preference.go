package model

import (
	"time"

	"github.com/lib/pq"
)

// UserPreference хранит предпочтения пользователя для подбора маршрутов.
// Используется генератором, когда параметры не заданы в запросе явно.
type UserPreference struct {
	ID                   int            `db:"id" json:"id"`
	UserID               int            `db:"user_id" json:"user_id"`
	Interests            pq.StringArray `db:"interests" json:"interests"`                           // свободные интересы: "история", "еда" и т.п.
	PreferredDurationMin int            `db:"preferred_duration_min" json:"preferred_duration_min"` // минуты
	PreferredDurationMax int            `db:"preferred_duration_max" json:"preferred_duration_max"` // минуты
	MaxBudget            float64        `db:"max_budget" json:"max_budget"`                         // 0 означает без ограничения
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
	CategoryIDs          []int          `db:"-" json:"category_ids"` // заполняется из таблицы связей
}
