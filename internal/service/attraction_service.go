package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/repository"
)

// searchCacheTTL - время жизни закэшированного результата поиска.
// Каталог меняется редко, короткого кэша достаточно.
const searchCacheTTL = time.Minute

// AttractionService содержит бизнес-логику работы с каталогом.
type AttractionService struct {
	repo       *repository.AttractionRepository
	categories *repository.CategoryRepository

	mu    sync.Mutex
	cache map[string]searchCacheEntry
}

type searchCacheEntry struct {
	attractions []model.Attraction
	expires     time.Time
}

// NewAttractionService создаёт новый сервис каталога.
func NewAttractionService(repo *repository.AttractionRepository, categories *repository.CategoryRepository) *AttractionService {
	return &AttractionService{
		repo:       repo,
		categories: categories,
		cache:      make(map[string]searchCacheEntry),
	}
}

// Search выполняет поиск по каталогу с кэшированием результатов
// по параметрам фильтра.
func (s *AttractionService) Search(categoryID int, isFree *bool, keyword, ordering string) ([]model.Attraction, error) {
	key := searchKey(categoryID, isFree, keyword, ordering)

	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.attractions, nil
	}

	attractions, err := s.repo.FindByFilters(categoryID, isFree, keyword, ordering)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = searchCacheEntry{attractions: attractions, expires: time.Now().Add(searchCacheTTL)}
	s.mu.Unlock()
	return attractions, nil
}

func searchKey(categoryID int, isFree *bool, keyword, ordering string) string {
	free := "-"
	if isFree != nil {
		free = fmt.Sprintf("%t", *isFree)
	}
	return fmt.Sprintf("%d|%s|%s|%s", categoryID, free, strings.ToLower(keyword), ordering)
}

// GetByID возвращает достопримечательность по идентификатору.
func (s *AttractionService) GetByID(id int) (*model.Attraction, error) {
	return s.repo.GetByID(id)
}

// Nearby возвращает активные места не дальше radiusKm от точки.
func (s *AttractionService) Nearby(lat, lon, radiusKm float64) ([]model.Attraction, error) {
	if radiusKm <= 0 {
		radiusKm = 5
	}
	return s.repo.FindNearby(lat, lon, radiusKm)
}

// Categories возвращает все категории каталога.
func (s *AttractionService) Categories() ([]model.Category, error) {
	return s.categories.FindAll()
}

// Create сохраняет новую достопримечательность. Пустой slug выводится из
// названия и уникализируется числовым суффиксом.
func (s *AttractionService) Create(a *model.Attraction) error {
	if a.Slug == "" {
		slug, err := uniqueSlug(s.repo, slugify(a.Name), 50)
		if err != nil {
			return err
		}
		a.Slug = slug
	}
	if a.VisitDuration <= 0 {
		a.VisitDuration = 60
	}
	id, err := s.repo.Create(a)
	if err != nil {
		return err
	}
	a.ID = id

	// каталог изменился, закэшированные результаты устарели
	s.mu.Lock()
	s.cache = make(map[string]searchCacheEntry)
	s.mu.Unlock()
	return nil
}

// Popular возвращает места по убыванию числа маршрутов с ними.
func (s *AttractionService) Popular(limit int) ([]model.AttractionMention, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.PopularAttractions(limit)
}
