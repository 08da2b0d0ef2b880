package repository

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/geo"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// AttractionRepository обеспечивает доступ к каталогу достопримечательностей.
type AttractionRepository struct {
	db *sqlx.DB
}

// NewAttractionRepository создаёт новый репозиторий каталога.
func NewAttractionRepository(db *sqlx.DB) *AttractionRepository {
	return &AttractionRepository{db: db}
}

// ListActive возвращает активные достопримечательности в порядке их id.
// Этот порядок используется сопоставлением подсказок как детерминированный.
func (r *AttractionRepository) ListActive() ([]model.Attraction, error) {
	attractions := []model.Attraction{}
	err := r.db.Select(&attractions, "SELECT * FROM attractions WHERE is_active = TRUE ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении каталога: %w", err)
	}
	return attractions, nil
}

// FindForSelection возвращает кандидатов для подбора маршрута: активные,
// из заданных категорий, бесплатные или не дороже бюджета (0 - без ограничения).
// Сортировка по убыванию рейтинга, затем по имени.
func (r *AttractionRepository) FindForSelection(categoryIDs []int, maxBudget float64, freeOnly bool) ([]model.Attraction, error) {
	query := "SELECT * FROM attractions WHERE is_active = TRUE"
	args := []interface{}{}
	if len(categoryIDs) > 0 {
		query += " AND category_id = ANY(?)"
		args = append(args, pq.Array(categoryIDs))
	}
	if freeOnly {
		query += " AND is_free = TRUE"
	} else if maxBudget > 0 {
		query += " AND (is_free = TRUE OR price <= ?)"
		args = append(args, maxBudget)
	}
	query += " ORDER BY rating DESC, name"
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	attractions := []model.Attraction{}
	if err := r.db.Select(&attractions, query, args...); err != nil {
		return nil, fmt.Errorf("ошибка при подборе кандидатов: %w", err)
	}
	return attractions, nil
}

// FindByFilters выполняет поиск по каталогу по категории, признаку
// бесплатности и ключевому слову в названии, описании или адресе.
func (r *AttractionRepository) FindByFilters(categoryID int, isFree *bool, keyword, ordering string) ([]model.Attraction, error) {
	query := "SELECT * FROM attractions WHERE is_active = TRUE"
	args := []interface{}{}
	if categoryID > 0 {
		query += " AND category_id = ?"
		args = append(args, categoryID)
	}
	if isFree != nil {
		query += " AND is_free = ?"
		args = append(args, *isFree)
	}
	if keyword != "" {
		kw := "%" + strings.ToLower(keyword) + "%"
		query += " AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(address) LIKE ?)"
		args = append(args, kw, kw, kw)
	}
	query += " ORDER BY " + orderClause(ordering)
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	attractions := []model.Attraction{}
	if err := r.db.Select(&attractions, query, args...); err != nil {
		return nil, fmt.Errorf("ошибка при поиске по каталогу: %w", err)
	}
	return attractions, nil
}

// orderClause переводит параметр сортировки в безопасное SQL-выражение.
func orderClause(ordering string) string {
	switch ordering {
	case "rating":
		return "rating, name"
	case "name":
		return "name"
	case "-name":
		return "name DESC"
	case "created_at":
		return "created_at"
	case "-created_at":
		return "created_at DESC"
	default:
		return "rating DESC, name"
	}
}

// FindNearby возвращает активные места не дальше radiusKm от точки.
// Грубый отбор по ограничивающему прямоугольнику делается в SQL,
// точное расстояние уточняется по формуле гаверсинусов.
func (r *AttractionRepository) FindNearby(lat, lon, radiusKm float64) ([]model.Attraction, error) {
	latRange := radiusKm / 111.0
	lonRange := radiusKm / (111.0 * math.Abs(math.Cos(lat*math.Pi/180)))

	box := []model.Attraction{}
	err := r.db.Select(&box,
		`SELECT * FROM attractions
		 WHERE is_active = TRUE
		   AND latitude BETWEEN $1 AND $2
		   AND longitude BETWEEN $3 AND $4
		 ORDER BY id`,
		lat-latRange, lat+latRange, lon-lonRange, lon+lonRange)
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске мест рядом: %w", err)
	}

	nearby := []model.Attraction{}
	for _, a := range box {
		if geo.Distance(lat, lon, a.Latitude, a.Longitude) <= radiusKm {
			nearby = append(nearby, a)
		}
	}
	return nearby, nil
}

// GetByID получает достопримечательность по идентификатору.
func (r *AttractionRepository) GetByID(id int) (*model.Attraction, error) {
	var attraction model.Attraction
	err := r.db.Get(&attraction, "SELECT * FROM attractions WHERE id=$1", id)
	if err != nil {
		return nil, err
	}
	return &attraction, nil
}

// GetByIDs возвращает достопримечательности по списку id.
func (r *AttractionRepository) GetByIDs(ids []int) (map[int]model.Attraction, error) {
	result := make(map[int]model.Attraction, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	attractions := []model.Attraction{}
	err := r.db.Select(&attractions, "SELECT * FROM attractions WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении достопримечательностей: %w", err)
	}
	for _, a := range attractions {
		result[a.ID] = a
	}
	return result, nil
}

// Create сохраняет новую достопримечательность и возвращает её id.
func (r *AttractionRepository) Create(a *model.Attraction) (int, error) {
	query := `INSERT INTO attractions
		(name, slug, description, short_description, latitude, longitude, address,
		 category_id, rating, visit_duration, price, is_free, image, website, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`
	var id int
	err := r.db.QueryRow(query,
		a.Name, a.Slug, a.Description, a.ShortDescription, a.Latitude, a.Longitude, a.Address,
		a.CategoryID, a.Rating, a.VisitDuration, a.Price, a.IsFree, a.Image, a.Website, a.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("не удалось сохранить достопримечательность: %w", err)
	}
	return id, nil
}

// SlugExists проверяет, занят ли slug.
func (r *AttractionRepository) SlugExists(slug string) (bool, error) {
	var exists bool
	err := r.db.Get(&exists, "SELECT EXISTS (SELECT 1 FROM attractions WHERE slug=$1)", slug)
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке slug: %w", err)
	}
	return exists, nil
}

// PopularAttractions возвращает места по убыванию числа маршрутов,
// в которые они входят.
func (r *AttractionRepository) PopularAttractions(limit int) ([]model.AttractionMention, error) {
	mentions := []model.AttractionMention{}
	err := r.db.Select(&mentions,
		`SELECT a.*, COUNT(DISTINCT ra.route_id) AS mention_count
		 FROM attractions a
		 JOIN route_attractions ra ON ra.attraction_id = a.id
		 WHERE a.is_active = TRUE
		 GROUP BY a.id
		 ORDER BY mention_count DESC, a.id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подсчёте популярных мест: %w", err)
	}
	return mentions, nil
}

// IsUniqueViolation сообщает, вызвана ли ошибка нарушением уникальности.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
