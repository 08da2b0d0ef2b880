package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository обеспечивает доступ к категориям достопримечательностей.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository создаёт новый репозиторий категорий.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindAll возвращает все категории по алфавиту.
func (r *CategoryRepository) FindAll() ([]model.Category, error) {
	categories := []model.Category{}
	err := r.db.Select(&categories, "SELECT * FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении категорий: %w", err)
	}
	return categories, nil
}

// GetByID возвращает категорию по идентификатору.
func (r *CategoryRepository) GetByID(id int) (*model.Category, error) {
	var category model.Category
	err := r.db.Get(&category, "SELECT * FROM categories WHERE id=$1", id)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// First возвращает первую по id категорию или nil, если категорий нет.
// Используется как категория по умолчанию для новых мест из подсказок.
func (r *CategoryRepository) First() (*model.Category, error) {
	var category model.Category
	err := r.db.Get(&category, "SELECT * FROM categories ORDER BY id LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении категории по умолчанию: %w", err)
	}
	return &category, nil
}
