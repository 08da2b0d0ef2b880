package service

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/llm"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/logger"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/repository"
)

// fuzzyThreshold - минимальная степень вложенности названий для нечёткого
// совпадения: отношение длины короткого названия к длине длинного должно
// быть строго больше этого порога.
const fuzzyThreshold = 0.5

// keywordMinRunes - слова короче этой длины не попадают в индекс ключевых
// слов и не участвуют в поиске по нему.
const keywordMinRunes = 3

// matcherCatalog - нужная сопоставлению часть каталога.
type matcherCatalog interface {
	ListActive() ([]model.Attraction, error)
	Create(a *model.Attraction) (int, error)
	SlugExists(slug string) (bool, error)
}

// defaultCategory возвращает категорию по умолчанию для новых мест.
type defaultCategory interface {
	First() (*model.Category, error)
}

// MatchStrategy сообщает, каким способом подсказка сопоставилась с каталогом.
type MatchStrategy string

const (
	MatchExact   MatchStrategy = "exact"   // точное совпадение названия
	MatchFuzzy   MatchStrategy = "fuzzy"   // одно название входит в другое
	MatchKeyword MatchStrategy = "keyword" // совпадение по ключевому слову
	MatchCreated MatchStrategy = "created" // создано новое место по координатам
	MatchDropped MatchStrategy = "dropped" // подсказка отброшена
)

// MatchResult - итог сопоставления одной подсказки.
type MatchResult struct {
	Attraction    *model.Attraction // nil, если подсказка отброшена
	Strategy      MatchStrategy
	SuggestedName string // исходное название из подсказки
}

// Matcher сопоставляет свободные названия мест из подсказок с каталогом.
type Matcher struct {
	catalog        matcherCatalog
	categories     defaultCategory
	slugRetryLimit int
}

// NewMatcher создаёт сопоставление подсказок с каталогом.
func NewMatcher(catalog matcherCatalog, categories defaultCategory, slugRetryLimit int) *Matcher {
	if slugRetryLimit <= 0 {
		slugRetryLimit = 50
	}
	return &Matcher{catalog: catalog, categories: categories, slugRetryLimit: slugRetryLimit}
}

// catalogIndex - индекс каталога для сопоставления. Записи хранятся в
// порядке возрастания id, поэтому при равных совпадениях выигрывает
// более ранняя запись каталога: результат воспроизводим.
type catalogIndex struct {
	entries  []model.Attraction
	exact    map[string]int   // имя в нижнем регистре -> индекс записи
	keywords map[string][]int // слово длиннее 3 символов -> индексы записей
}

func buildIndex(entries []model.Attraction) *catalogIndex {
	idx := &catalogIndex{
		entries:  entries,
		exact:    make(map[string]int, len(entries)),
		keywords: make(map[string][]int),
	}
	for i, a := range entries {
		name := strings.ToLower(a.Name)
		if _, ok := idx.exact[name]; !ok {
			idx.exact[name] = i
		}
		for _, word := range keywordTokens(name) {
			idx.keywords[word] = append(idx.keywords[word], i)
		}
	}
	return idx
}

// add дополняет индекс только что созданной записью, чтобы повтор того же
// названия в одной пачке подсказок сопоставился точно, а не создал дубль.
func (idx *catalogIndex) add(a model.Attraction) {
	idx.entries = append(idx.entries, a)
	i := len(idx.entries) - 1
	name := strings.ToLower(a.Name)
	if _, ok := idx.exact[name]; !ok {
		idx.exact[name] = i
	}
	for _, word := range keywordTokens(name) {
		idx.keywords[word] = append(idx.keywords[word], i)
	}
}

// keywordTokens возвращает слова текста длиннее трёх символов.
func keywordTokens(text string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if utf8.RuneCountInString(word) > keywordMinRunes {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// containmentScore возвращает степень вложенности двух названий: отношение
// длины короткого к длине длинного, если одно входит в другое как
// подстрока, иначе 0. Длина считается в рунах.
func containmentScore(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	shorter, longer := a, b
	if la > lb {
		shorter, longer = b, a
		la, lb = lb, la
	}
	if !strings.Contains(longer, shorter) {
		return 0
	}
	return float64(la) / float64(lb)
}

// ResolveSuggestions сопоставляет подсказки с каталогом по очереди.
// Порядок результатов совпадает с порядком подсказок; отброшенные
// подсказки остаются в списке с признаком MatchDropped.
func (m *Matcher) ResolveSuggestions(suggestions []llm.Suggestion) ([]MatchResult, error) {
	entries, err := m.catalog.ListActive()
	if err != nil {
		return nil, err
	}
	idx := buildIndex(entries)

	results := make([]MatchResult, 0, len(suggestions))
	for _, sug := range suggestions {
		res, err := m.resolve(idx, sug)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// resolve сопоставляет одну подсказку. Стратегии пробуются по порядку,
// первая сработавшая выигрывает: точное совпадение, нечёткое по
// вложенности названий, по ключевому слову, создание нового места по
// координатам, отбрасывание.
func (m *Matcher) resolve(idx *catalogIndex, sug llm.Suggestion) (MatchResult, error) {
	name := strings.TrimSpace(sug.Name)
	if name == "" {
		return MatchResult{Strategy: MatchDropped, SuggestedName: sug.Name}, nil
	}
	nameLower := strings.ToLower(name)

	if i, ok := idx.exact[nameLower]; ok {
		logger.Debug("подсказка %q: точное совпадение с %q", name, idx.entries[i].Name)
		return MatchResult{Attraction: &idx.entries[i], Strategy: MatchExact, SuggestedName: name}, nil
	}

	bestScore := 0.0
	bestIndex := -1
	for i, a := range idx.entries {
		if score := containmentScore(nameLower, strings.ToLower(a.Name)); score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}
	if bestIndex >= 0 && bestScore > fuzzyThreshold {
		logger.Debug("подсказка %q: нечёткое совпадение с %q (%.2f)",
			name, idx.entries[bestIndex].Name, bestScore)
		return MatchResult{Attraction: &idx.entries[bestIndex], Strategy: MatchFuzzy, SuggestedName: name}, nil
	}

	for _, word := range keywordTokens(nameLower) {
		if hits, ok := idx.keywords[word]; ok && len(hits) > 0 {
			logger.Debug("подсказка %q: совпадение по слову %q с %q",
				name, word, idx.entries[hits[0]].Name)
			return MatchResult{Attraction: &idx.entries[hits[0]], Strategy: MatchKeyword, SuggestedName: name}, nil
		}
	}

	if sug.HasCoordinates() {
		created, err := m.materialize(name, sug)
		if err != nil {
			return MatchResult{}, err
		}
		idx.add(*created)
		logger.Info("подсказка %q: создано новое место #%d (%s)", name, created.ID, created.Slug)
		return MatchResult{Attraction: created, Strategy: MatchCreated, SuggestedName: name}, nil
	}

	logger.Warn("подсказка %q отброшена: нет совпадений и координат", name)
	return MatchResult{Strategy: MatchDropped, SuggestedName: name}, nil
}

// materialize создаёт новое место каталога из подсказки с координатами.
// Конфликт slug с параллельно созданной записью разрешается повторной
// попыткой со следующим суффиксом; число попыток ограничено.
func (m *Matcher) materialize(name string, sug llm.Suggestion) (*model.Attraction, error) {
	description := sug.Description
	if description == "" {
		description = fmt.Sprintf("Место из подсказки маршрута: %s", name)
	}
	visitDuration := sug.VisitDuration
	if visitDuration <= 0 {
		visitDuration = 60
	}

	var categoryID *int
	if m.categories != nil {
		category, err := m.categories.First()
		if err != nil {
			return nil, err
		}
		if category != nil {
			categoryID = &category.ID
		}
	}

	attraction := &model.Attraction{
		Name:          name,
		Description:   description,
		Address:       sug.Address,
		Latitude:      *sug.Latitude,
		Longitude:     *sug.Longitude,
		CategoryID:    categoryID,
		VisitDuration: visitDuration,
		IsFree:        true,
		IsActive:      true,
	}

	base := slugify(name)
	slug, err := m.uniqueSlug(base)
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < m.slugRetryLimit; attempt++ {
		attraction.Slug = slug
		id, err := m.catalog.Create(attraction)
		if err == nil {
			attraction.ID = id
			return attraction, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, err
		}
		// slug заняли между проверкой и вставкой
		slug, err = m.uniqueSlug(base)
		if err != nil {
			return nil, err
		}
	}
	return nil, ErrSlugExhausted
}

// uniqueSlug подбирает свободный slug: сначала базовый, затем с числовым
// суффиксом -1, -2 и так далее, пока не исчерпан лимит попыток.
func (m *Matcher) uniqueSlug(base string) (string, error) {
	return uniqueSlug(m.catalog, base, m.slugRetryLimit)
}

// slugChecker проверяет занятость slug в каталоге.
type slugChecker interface {
	SlugExists(slug string) (bool, error)
}

func uniqueSlug(catalog slugChecker, base string, limit int) (string, error) {
	slug := base
	for attempt := 1; attempt <= limit; attempt++ {
		exists, err := catalog.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", ErrSlugExhausted
}

// slugify приводит название к slug: нижний регистр, буквы и цифры
// сохраняются (включая кириллицу), остальное заменяется дефисом.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // подавляет дефис в начале
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
