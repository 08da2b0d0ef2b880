package repository

import (
	"fmt"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PreferenceRepository обеспечивает доступ к предпочтениям пользователей.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository создаёт новый репозиторий предпочтений.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByUserID возвращает предпочтения пользователя вместе со списком
// предпочитаемых категорий. Если записи нет, возвращает sql.ErrNoRows.
func (r *PreferenceRepository) GetByUserID(userID int) (*model.UserPreference, error) {
	var pref model.UserPreference
	err := r.db.Get(&pref, "SELECT * FROM user_preferences WHERE user_id=$1", userID)
	if err != nil {
		return nil, err
	}

	categoryIDs := []int{}
	err = r.db.Select(&categoryIDs,
		"SELECT category_id FROM preference_categories WHERE preference_id=$1 ORDER BY category_id", pref.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении категорий предпочтений: %w", err)
	}
	pref.CategoryIDs = categoryIDs

	return &pref, nil
}

// Upsert создаёт или обновляет предпочтения пользователя и список категорий.
func (r *PreferenceRepository) Upsert(pref *model.UserPreference) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("не удалось открыть транзакцию: %w", err)
	}

	interests := pref.Interests
	if interests == nil {
		interests = pq.StringArray{}
	}

	var id int
	err = tx.QueryRow(
		`INSERT INTO user_preferences (user_id, interests, preferred_duration_min, preferred_duration_max, max_budget)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
		     interests = EXCLUDED.interests,
		     preferred_duration_min = EXCLUDED.preferred_duration_min,
		     preferred_duration_max = EXCLUDED.preferred_duration_max,
		     max_budget = EXCLUDED.max_budget,
		     updated_at = NOW()
		 RETURNING id`,
		pref.UserID, interests, pref.PreferredDurationMin, pref.PreferredDurationMax, pref.MaxBudget,
	).Scan(&id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("не удалось сохранить предпочтения: %w", err)
	}
	pref.ID = id

	if _, err := tx.Exec("DELETE FROM preference_categories WHERE preference_id=$1", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("не удалось обновить категории предпочтений: %w", err)
	}
	for _, categoryID := range pref.CategoryIDs {
		_, err := tx.Exec(
			"INSERT INTO preference_categories (preference_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			id, categoryID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("не удалось сохранить категорию предпочтений: %w", err)
		}
	}

	return tx.Commit()
}
