package service

import (
	"fmt"
	"testing"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/llm"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCatalog - каталог в памяти для тестов сопоставления.
type memCatalog struct {
	attractions []model.Attraction
	nextID      int
	takenSlugs  map[string]bool // slug, занятые "кем-то ещё" помимо attractions
}

func newMemCatalog(attractions ...model.Attraction) *memCatalog {
	return &memCatalog{attractions: attractions, nextID: 100, takenSlugs: map[string]bool{}}
}

func (c *memCatalog) ListActive() ([]model.Attraction, error) {
	out := make([]model.Attraction, 0, len(c.attractions))
	for _, a := range c.attractions {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (c *memCatalog) Create(a *model.Attraction) (int, error) {
	for _, existing := range c.attractions {
		if existing.Slug == a.Slug {
			return 0, fmt.Errorf("duplicate slug %q", a.Slug)
		}
	}
	c.nextID++
	created := *a
	created.ID = c.nextID
	c.attractions = append(c.attractions, created)
	return c.nextID, nil
}

func (c *memCatalog) SlugExists(slug string) (bool, error) {
	if c.takenSlugs[slug] {
		return true, nil
	}
	for _, a := range c.attractions {
		if a.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// memCategories отдаёт фиксированный список категорий.
type memCategories struct {
	categories []model.Category
}

func (c *memCategories) First() (*model.Category, error) {
	if len(c.categories) == 0 {
		return nil, nil
	}
	return &c.categories[0], nil
}

func (c *memCategories) FindAll() ([]model.Category, error) {
	return c.categories, nil
}

func suggestion(name string) llm.Suggestion {
	return llm.Suggestion{Name: name}
}

func suggestionAt(name string, lat, lon float64) llm.Suggestion {
	return llm.Suggestion{Name: name, Latitude: &lat, Longitude: &lon}
}

func kremlinCatalog() *memCatalog {
	kremlin := att(1, "Казанский Кремль", 55.7981, 49.1063, 4.9, 0, true, 90)
	kremlin.Slug = "казанский-кремль"
	bauman := att(2, "Улица Баумана", 55.7947, 49.1054, 4.5, 0, true, 60)
	bauman.Slug = "улица-баумана"
	return newMemCatalog(kremlin, bauman)
}

func newTestMatcher(catalog *memCatalog) *Matcher {
	return NewMatcher(catalog, &memCategories{categories: []model.Category{
		{ID: 7, Name: "Достопримечательности", Slug: "attractions"},
	}}, 10)
}

func TestMatcherExactCaseInsensitive(t *testing.T) {
	m := newTestMatcher(kremlinCatalog())

	results, err := m.ResolveSuggestions([]llm.Suggestion{suggestion("казанский кремль")})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, MatchExact, results[0].Strategy)
	require.NotNil(t, results[0].Attraction)
	assert.Equal(t, 1, results[0].Attraction.ID)
}

func TestMatcherFuzzyContainment(t *testing.T) {
	m := newTestMatcher(kremlinCatalog())

	// "казанский кремль" входит в "казанский кремль вечером":
	// 16/24 > 0.5, нечёткое совпадение
	results, err := m.ResolveSuggestions([]llm.Suggestion{suggestion("Казанский Кремль вечером")})
	require.NoError(t, err)

	assert.Equal(t, MatchFuzzy, results[0].Strategy)
	assert.Equal(t, 1, results[0].Attraction.ID)
}

func TestMatcherFuzzyBelowThresholdFallsToKeyword(t *testing.T) {
	m := newTestMatcher(kremlinCatalog())

	// "кремль" входит в "казанский кремль", но 6/16 = 0.375 ниже порога,
	// поэтому срабатывает поиск по ключевому слову
	results, err := m.ResolveSuggestions([]llm.Suggestion{suggestion("Кремль")})
	require.NoError(t, err)

	assert.Equal(t, MatchKeyword, results[0].Strategy)
	assert.Equal(t, 1, results[0].Attraction.ID)
}

func TestMatcherThresholdIsStrict(t *testing.T) {
	entry := att(1, "aaaabbbbccccdddd", 55.80, 49.10, 4.0, 0, true, 60)
	entry.Slug = "x"
	m := newTestMatcher(newMemCatalog(entry))

	// ровно 8/16 = 0.5: порог строгий, совпадения нет; ключевое слово
	// "aaaabbbb" в индексе отсутствует, координат нет - подсказка отброшена
	results, err := m.ResolveSuggestions([]llm.Suggestion{suggestion("aaaabbbb")})
	require.NoError(t, err)

	assert.Equal(t, MatchDropped, results[0].Strategy)
	assert.Nil(t, results[0].Attraction)
}

func TestMatcherFuzzyTieKeepsEarliestEntry(t *testing.T) {
	first := att(1, "Парк Победы", 55.82, 49.09, 4.0, 0, true, 60)
	first.Slug = "park-1"
	second := att(2, "Парк Победы", 55.83, 49.08, 4.5, 0, true, 60)
	second.Slug = "park-2"
	m := newTestMatcher(newMemCatalog(first, second))

	results, err := m.ResolveSuggestions([]llm.Suggestion{suggestion("Парк Победы летом")})
	require.NoError(t, err)

	assert.Equal(t, MatchFuzzy, results[0].Strategy)
	assert.Equal(t, 1, results[0].Attraction.ID)
}

func TestMatcherMaterializesWithCoordinates(t *testing.T) {
	catalog := kremlinCatalog()
	m := newTestMatcher(catalog)

	results, err := m.ResolveSuggestions([]llm.Suggestion{
		suggestionAt("Новая Набережная", 55.7900, 49.1200),
	})
	require.NoError(t, err)

	res := results[0]
	assert.Equal(t, MatchCreated, res.Strategy)
	require.NotNil(t, res.Attraction)
	assert.NotZero(t, res.Attraction.ID)
	assert.Equal(t, "новая-набережная", res.Attraction.Slug)
	assert.True(t, res.Attraction.IsFree)
	assert.True(t, res.Attraction.IsActive)
	require.NotNil(t, res.Attraction.CategoryID)
	assert.Equal(t, 7, *res.Attraction.CategoryID)
	assert.InDelta(t, 55.79, res.Attraction.Latitude, 0.001)
}

func TestMatcherMaterializationSlugSuffix(t *testing.T) {
	catalog := kremlinCatalog()
	catalog.takenSlugs["новая-набережная"] = true // slug занят параллельной записью
	m := newTestMatcher(catalog)

	results, err := m.ResolveSuggestions([]llm.Suggestion{
		suggestionAt("Новая Набережная", 55.7900, 49.1200),
	})
	require.NoError(t, err)

	assert.Equal(t, "новая-набережная-1", results[0].Attraction.Slug)
}

func TestMatcherRepeatedSuggestionMatchesCreated(t *testing.T) {
	m := newTestMatcher(kremlinCatalog())

	results, err := m.ResolveSuggestions([]llm.Suggestion{
		suggestionAt("Новая Набережная", 55.7900, 49.1200),
		suggestionAt("Новая Набережная", 55.7900, 49.1200),
	})
	require.NoError(t, err)

	// повтор того же названия в одной пачке не создаёт дубль
	assert.Equal(t, MatchCreated, results[0].Strategy)
	assert.Equal(t, MatchExact, results[1].Strategy)
	assert.Equal(t, results[0].Attraction.ID, results[1].Attraction.ID)
}

func TestMatcherDropsWithoutCoordinates(t *testing.T) {
	m := newTestMatcher(kremlinCatalog())

	results, err := m.ResolveSuggestions([]llm.Suggestion{suggestion("Неизвестное место")})
	require.NoError(t, err)

	assert.Equal(t, MatchDropped, results[0].Strategy)
	assert.Nil(t, results[0].Attraction)
	assert.Equal(t, "Неизвестное место", results[0].SuggestedName)
}

func TestUniqueSlugExhaustion(t *testing.T) {
	catalog := newMemCatalog()
	catalog.takenSlugs["парк"] = true
	for i := 1; i <= 10; i++ {
		catalog.takenSlugs[fmt.Sprintf("парк-%d", i)] = true
	}

	_, err := uniqueSlug(catalog, "парк", 10)
	assert.ErrorIs(t, err, ErrSlugExhausted)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"cyrillic", "Казанский Кремль", "казанский-кремль"},
		{"punctuation", "Парк им. Горького!", "парк-им-горького"},
		{"latin and digits", "Kazan Arena 2013", "kazan-arena-2013"},
		{"extra spaces", "  Улица   Баумана  ", "улица-баумана"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}

func TestContainmentScore(t *testing.T) {
	// длины считаются в рунах, не в байтах
	assert.InDelta(t, 0.375, containmentScore("кремль", "казанский кремль"), 1e-9)
	assert.InDelta(t, 1.0, containmentScore("кремль", "кремль"), 1e-9)
	assert.Zero(t, containmentScore("арена", "кремль"))
	assert.Zero(t, containmentScore("", "кремль"))
}
