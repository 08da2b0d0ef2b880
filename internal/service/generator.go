package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/geo"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/llm"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/logger"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"
)

// GenerationParams - параметры генерации маршрута из запроса. Незаданные
// значения добираются из сохранённых предпочтений пользователя, а затем
// из значений по умолчанию.
type GenerationParams struct {
	DurationHours    int      `json:"duration_hours"`
	CategoryIDs      []int    `json:"category_ids"`
	Interests        []string `json:"interests"`
	MaxBudget        *float64 `json:"max_budget"` // nil - взять из предпочтений; 0 - без ограничения
	StartLat         *float64 `json:"start_lat"`
	StartLon         *float64 `json:"start_lon"`
	RouteName        string   `json:"name"`
	RouteDescription string   `json:"description"`
	GeneratorType    string   `json:"generator_type"` // llm, algorithmic или hybrid; пусто - из конфигурации
}

// resolvedParams - параметры после применения цепочки: запрос,
// затем предпочтения, затем значения по умолчанию.
type resolvedParams struct {
	durationHours    int
	categoryIDs      []int
	interests        []string
	maxBudget        float64
	start            *geo.Point
	routeName        string
	routeDescription string
}

// routeStore - нужная генератору часть хранилища маршрутов.
type routeStore interface {
	CreateWithStops(route *model.Route, stops []model.RouteAttraction) (int, error)
}

// generatorCatalog отдаёт каталог для промпта нейросети.
type generatorCatalog interface {
	ListActive() ([]model.Attraction, error)
}

// categoryLister отдаёт категории для подписей каталога в промпте.
type categoryLister interface {
	FindAll() ([]model.Category, error)
}

// preferenceSource отдаёт сохранённые предпочтения пользователя.
type preferenceSource interface {
	GetByUserID(userID int) (*model.UserPreference, error)
}

// RouteGenerator собирает готовый маршрут: подбирает места алгоритмически
// или сопоставляет подсказки нейросети с каталогом, упорядочивает
// остановки и атомарно сохраняет маршрут.
type RouteGenerator struct {
	selector   *Selector
	matcher    *Matcher
	oracle     llm.Client // nil, если провайдер подсказок не настроен
	routes     routeStore
	catalog    generatorCatalog
	categories categoryLister
	prefs      preferenceSource

	city                 string
	defaultDurationHours int
	defaultType          string
}

// NewRouteGenerator создаёт генератор маршрутов.
func NewRouteGenerator(selector *Selector, matcher *Matcher, oracle llm.Client,
	routes routeStore, catalog generatorCatalog, categories categoryLister,
	prefs preferenceSource, city string, defaultDurationHours int, defaultType string) *RouteGenerator {
	if defaultDurationHours <= 0 {
		defaultDurationHours = 4
	}
	if defaultType == "" {
		defaultType = "hybrid"
	}
	return &RouteGenerator{
		selector:             selector,
		matcher:              matcher,
		oracle:               oracle,
		routes:               routes,
		catalog:              catalog,
		categories:           categories,
		prefs:                prefs,
		city:                 city,
		defaultDurationHours: defaultDurationHours,
		defaultType:          defaultType,
	}
}

// Generate строит маршрут выбранным способом. Пустой тип означает тип
// по умолчанию из конфигурации; неизвестный тип считается гибридным.
func (g *RouteGenerator) Generate(ctx context.Context, userID int, params GenerationParams) (*model.Route, []model.RouteStop, error) {
	generatorType := params.GeneratorType
	if generatorType == "" {
		generatorType = g.defaultType
	}
	switch generatorType {
	case "algorithmic":
		return g.GenerateAlgorithmic(userID, params)
	case "llm":
		return g.GenerateFromOracle(ctx, userID, params)
	default:
		return g.GenerateHybrid(ctx, userID, params)
	}
}

// GenerateAlgorithmic подбирает места из каталога под бюджеты времени и
// денег и сохраняет маршрут.
func (g *RouteGenerator) GenerateAlgorithmic(userID int, params GenerationParams) (*model.Route, []model.RouteStop, error) {
	rp := g.resolveParams(userID, params)

	sel, err := g.selector.Select(rp.durationHours, rp.maxBudget, rp.categoryIDs, rp.start)
	if err != nil {
		return nil, nil, err
	}

	stops := make([]resolvedStop, len(sel.Attractions))
	for i, a := range sel.Attractions {
		stops[i] = resolvedStop{attraction: a, visitDuration: a.VisitDuration}
	}

	name := rp.routeName
	if name == "" {
		name = fmt.Sprintf("Маршрут на %d часов", rp.durationHours)
	}
	description := rp.routeDescription
	if description == "" {
		description = fmt.Sprintf("Автоматически подобранный маршрут из %d мест", len(stops))
	}

	return g.persist(userID, name, description, rp, stops, sel.DistanceKm)
}

// GenerateFromOracle запрашивает черновик маршрута у нейросети,
// сопоставляет подсказки с каталогом и сохраняет маршрут в порядке
// подсказок.
func (g *RouteGenerator) GenerateFromOracle(ctx context.Context, userID int, params GenerationParams) (*model.Route, []model.RouteStop, error) {
	rp := g.resolveParams(userID, params)
	return g.assembleFromOracle(ctx, userID, rp, false)
}

// GenerateHybrid запрашивает черновик у нейросети и переупорядочивает
// остановки по географической близости. Если сервис подсказок недоступен
// или ни одна подсказка не сопоставилась, маршрут строится алгоритмически.
func (g *RouteGenerator) GenerateHybrid(ctx context.Context, userID int, params GenerationParams) (*model.Route, []model.RouteStop, error) {
	rp := g.resolveParams(userID, params)
	route, stops, err := g.assembleFromOracle(ctx, userID, rp, true)
	if errors.Is(err, ErrOracleUpstream) || errors.Is(err, ErrNoStopsResolved) {
		logger.Warn("черновик от нейросети не получился (%v), строим алгоритмически", err)
		return g.GenerateAlgorithmic(userID, params)
	}
	return route, stops, err
}

// resolvedStop - остановка будущего маршрута до сохранения.
type resolvedStop struct {
	attraction    model.Attraction
	visitDuration int
	notes         string
}

// assembleFromOracle - общая часть генерации по подсказкам: запрос к
// нейросети, сопоставление, опциональное переупорядочивание и сохранение.
func (g *RouteGenerator) assembleFromOracle(ctx context.Context, userID int, rp resolvedParams, reorder bool) (*model.Route, []model.RouteStop, error) {
	itinerary, err := g.suggestWithRetry(ctx, rp)
	if err != nil {
		return nil, nil, err
	}

	suggestions := make([]llm.Suggestion, len(itinerary.Attractions))
	copy(suggestions, itinerary.Attractions)
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Order < suggestions[j].Order
	})

	results, err := g.matcher.ResolveSuggestions(suggestions)
	if err != nil {
		return nil, nil, err
	}

	var stops []resolvedStop
	dropped := 0
	for i, res := range results {
		if res.Attraction == nil {
			dropped++
			continue
		}
		visitDuration := suggestions[i].VisitDuration
		if visitDuration <= 0 {
			visitDuration = res.Attraction.VisitDuration
		}
		notes := ""
		if res.SuggestedName != res.Attraction.Name {
			notes = res.SuggestedName
		}
		stops = append(stops, resolvedStop{
			attraction:    *res.Attraction,
			visitDuration: visitDuration,
			notes:         notes,
		})
	}
	if len(stops) == 0 {
		return nil, nil, fmt.Errorf("%w: подсказок %d, отброшено %d", ErrNoStopsResolved, len(results), dropped)
	}

	var distance float64
	if reorder {
		points := make([]waypoint, len(stops))
		for i, st := range stops {
			points[i] = waypoint{
				point: geo.Point{Lat: st.attraction.Latitude, Lon: st.attraction.Longitude},
				index: i,
			}
		}
		order, total := nearestOrder(points, rp.start)
		reordered := make([]resolvedStop, 0, len(stops))
		for _, idx := range order {
			reordered = append(reordered, stops[idx])
		}
		stops = reordered
		distance = total
	} else {
		attractions := make([]model.Attraction, len(stops))
		for i, st := range stops {
			attractions[i] = st.attraction
		}
		distance = routeDistance(attractions)
	}

	name := itinerary.Name
	if name == "" {
		name = rp.routeName
	}
	if name == "" {
		name = fmt.Sprintf("Маршрут на %d часов", rp.durationHours)
	}
	description := itinerary.Description
	if description == "" {
		description = rp.routeDescription
	}

	return g.persist(userID, name, description, rp, stops, distance)
}

// suggestWithRetry запрашивает черновик маршрута с одним повтором:
// при ошибке запроса или пустом списке подсказок. Дальше отказ
// возвращается вызывающему как ErrOracleUpstream.
func (g *RouteGenerator) suggestWithRetry(ctx context.Context, rp resolvedParams) (*llm.Itinerary, error) {
	if g.oracle == nil {
		return nil, fmt.Errorf("%w: провайдер не настроен", ErrOracleUpstream)
	}

	req := llm.Request{
		City:             g.city,
		DurationHours:    rp.durationHours,
		Interests:        rp.interests,
		MaxBudget:        rp.maxBudget,
		RouteName:        rp.routeName,
		RouteDescription: rp.routeDescription,
		Catalog:          g.catalogPreview(),
	}

	itinerary, err := g.oracle.SuggestItinerary(ctx, req)
	if err != nil || len(itinerary.Attractions) == 0 {
		if err != nil {
			logger.Warn("первый запрос к %s не удался: %v, повторяем", g.oracle.Provider(), err)
		} else {
			logger.Warn("в ответе %s нет подсказок, повторяем запрос", g.oracle.Provider())
		}
		itinerary, err = g.oracle.SuggestItinerary(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOracleUpstream, err)
		}
		if len(itinerary.Attractions) == 0 {
			return nil, fmt.Errorf("%w: в ответе нет подсказок", ErrOracleUpstream)
		}
	}
	return itinerary, nil
}

// catalogPreview собирает каталог для промпта. Ошибки чтения каталога
// здесь не фатальны: промпт просто останется без списка мест.
func (g *RouteGenerator) catalogPreview() []llm.CatalogEntry {
	attractions, err := g.catalog.ListActive()
	if err != nil {
		logger.Warn("не удалось получить каталог для промпта: %v", err)
		return nil
	}

	categoryNames := map[int]string{}
	if g.categories != nil {
		categories, err := g.categories.FindAll()
		if err != nil {
			logger.Warn("не удалось получить категории для промпта: %v", err)
		}
		for _, c := range categories {
			categoryNames[c.ID] = c.Name
		}
	}

	entries := make([]llm.CatalogEntry, 0, len(attractions))
	for _, a := range attractions {
		category := ""
		if a.CategoryID != nil {
			category = categoryNames[*a.CategoryID]
		}
		description := a.ShortDescription
		if description == "" {
			description = a.Description
		}
		entries = append(entries, llm.CatalogEntry{
			Name:        a.Name,
			Category:    category,
			Description: description,
		})
	}
	return entries
}

// persist атомарно сохраняет маршрут с остановками и возвращает его
// вместе с данными достопримечательностей. Нумерация остановок сплошная
// и начинается с 1.
func (g *RouteGenerator) persist(userID int, name, description string, rp resolvedParams, stops []resolvedStop, distance float64) (*model.Route, []model.RouteStop, error) {
	route := &model.Route{
		UserID:        userID,
		Name:          name,
		Description:   description,
		DurationHours: rp.durationHours,
		Budget:        rp.maxBudget,
		DistanceKm:    distance,
	}

	routeStops := make([]model.RouteAttraction, len(stops))
	for i, st := range stops {
		routeStops[i] = model.RouteAttraction{
			AttractionID:  st.attraction.ID,
			Order:         i + 1,
			VisitDuration: st.visitDuration,
			Notes:         st.notes,
		}
	}

	id, err := g.routes.CreateWithStops(route, routeStops)
	if err != nil {
		return nil, nil, err
	}
	route.ID = id

	composed := make([]model.RouteStop, len(stops))
	for i, st := range stops {
		routeStops[i].RouteID = id
		composed[i] = model.RouteStop{RouteAttraction: routeStops[i], Attraction: st.attraction}
	}

	logger.Info("маршрут #%d сохранён: %d остановок, %.1f км", id, len(stops), distance)
	return route, composed, nil
}

// resolveParams применяет цепочку источников параметров: явное значение
// из запроса, затем сохранённые предпочтения пользователя, затем значение
// по умолчанию.
func (g *RouteGenerator) resolveParams(userID int, params GenerationParams) resolvedParams {
	rp := resolvedParams{
		durationHours:    params.DurationHours,
		categoryIDs:      params.CategoryIDs,
		interests:        params.Interests,
		routeName:        params.RouteName,
		routeDescription: params.RouteDescription,
	}
	if params.MaxBudget != nil {
		rp.maxBudget = *params.MaxBudget
	}
	if params.StartLat != nil && params.StartLon != nil {
		rp.start = &geo.Point{Lat: *params.StartLat, Lon: *params.StartLon}
	}

	needPrefs := rp.durationHours <= 0 || params.MaxBudget == nil ||
		len(rp.categoryIDs) == 0 || len(rp.interests) == 0
	if needPrefs && g.prefs != nil {
		pref, err := g.prefs.GetByUserID(userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			logger.Warn("не удалось получить предпочтения пользователя %d: %v", userID, err)
		}
		if err == nil {
			if rp.durationHours <= 0 && pref.PreferredDurationMax > 0 {
				rp.durationHours = pref.PreferredDurationMax / 60
			}
			if params.MaxBudget == nil {
				rp.maxBudget = pref.MaxBudget
			}
			if len(rp.categoryIDs) == 0 {
				rp.categoryIDs = pref.CategoryIDs
			}
			if len(rp.interests) == 0 {
				rp.interests = pref.Interests
			}
		}
	}

	if rp.durationHours <= 0 {
		rp.durationHours = g.defaultDurationHours
	}
	if rp.maxBudget < 0 {
		rp.maxBudget = 0
	}
	return rp
}
