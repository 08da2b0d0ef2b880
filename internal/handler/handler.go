package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

// Handler структурирует зависимости сервисов для обработки HTTP-запросов.
type Handler struct {
	Attractions *service.AttractionService
	Routes      *service.RouteService
	Generator   *service.RouteGenerator
	Preferences *service.PreferenceService
	Auth        *service.AuthService
}

// NewHandler создает новый Handler с внедрением зависимостей (сервисов).
func NewHandler(attractions *service.AttractionService, routes *service.RouteService,
	generator *service.RouteGenerator, preferences *service.PreferenceService,
	auth *service.AuthService) *Handler {
	return &Handler{
		Attractions: attractions,
		Routes:      routes,
		Generator:   generator,
		Preferences: preferences,
		Auth:        auth,
	}
}

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/auth/telegram", h.AuthTelegram)

		api.GET("/attractions", h.ListAttractions)
		api.GET("/attractions/nearby", h.NearbyAttractions)
		api.GET("/attractions/:id", h.GetAttraction)
		api.POST("/attractions", h.CreateAttraction)
		api.GET("/categories", h.ListCategories)

		api.GET("/routes", h.ListRoutes)
		api.GET("/routes/public", h.ListPublicRoutes)
		api.GET("/routes/favorites", h.ListFavoriteRoutes)
		api.GET("/routes/:id", h.GetRoute)
		api.POST("/routes", h.CreateRoute)
		api.POST("/routes/generate", h.GenerateRoute)
		api.POST("/routes/:id/optimize", h.OptimizeRoute)
		api.POST("/routes/:id/views", h.IncrementRouteViews)
		api.POST("/routes/:id/favorite", h.ToggleRouteFavorite)
		api.DELETE("/routes/:id", h.DeleteRoute)

		api.GET("/preferences", h.GetPreferences)
		api.PUT("/preferences", h.UpdatePreferences)

		api.GET("/analytics/popular", h.PopularRoutes)
		api.GET("/analytics/stats", h.RouteStats)
	}
}

// userID извлекает идентификатор пользователя из заголовка X-User-ID.
// Аутентификация выполняется выше по стеку, здесь заголовку доверяем.
func (h *Handler) userID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.GetHeader("X-User-ID"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Не указан пользователь (X-User-ID)"})
		return 0, false
	}
	return id, true
}

// respondError транслирует ошибки сервисов в HTTP-статусы.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoCandidates),
		errors.Is(err, service.ErrNoStopsResolved),
		errors.Is(err, service.ErrBudgetInfeasible):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOracleUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "retryable": true})
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "Не найдено"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера"})
	}
}

// routeResponse собирает маршрут с остановками в один ответ.
func routeResponse(route *model.Route, stops []model.RouteStop) gin.H {
	return gin.H{"route": route, "stops": stops}
}

// authTelegramRequest - тело запроса регистрации через Telegram.
type authTelegramRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// AuthTelegram обработчик для POST /api/auth/telegram - регистрирует
// пользователя по Telegram ID или возвращает существующего.
func (h *Handler) AuthTelegram(c *gin.Context) {
	var req authTelegramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Нужен telegram_id"})
		return
	}
	user, err := h.Auth.AuthByTelegram(req.TelegramID, req.Username, req.FirstName, req.LastName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListAttractions обработчик для GET /api/attractions.
func (h *Handler) ListAttractions(c *gin.Context) {
	categoryID, _ := strconv.Atoi(c.Query("category"))
	var isFree *bool
	if v := c.Query("is_free"); v != "" {
		free, err := strconv.ParseBool(v)
		if err == nil {
			isFree = &free
		}
	}
	attractions, err := h.Attractions.Search(categoryID, isFree, c.Query("search"), c.Query("ordering"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attractions)
}

// NearbyAttractions обработчик для GET /api/attractions/nearby.
func (h *Handler) NearbyAttractions(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Нужны параметры lat и lng"})
		return
	}
	radius, _ := strconv.ParseFloat(c.DefaultQuery("radius", "5"), 64)
	attractions, err := h.Attractions.Nearby(lat, lon, radius)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attractions)
}

// GetAttraction обработчик для GET /api/attractions/:id.
func (h *Handler) GetAttraction(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	attraction, err := h.Attractions.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attraction)
}

// CreateAttraction обработчик для POST /api/attractions.
func (h *Handler) CreateAttraction(c *gin.Context) {
	var attraction model.Attraction
	if err := c.ShouldBindJSON(&attraction); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректное тело запроса"})
		return
	}
	if attraction.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Название обязательно"})
		return
	}
	attraction.IsActive = true
	if err := h.Attractions.Create(&attraction); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attraction)
}

// ListCategories обработчик для GET /api/categories.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Attractions.Categories()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListRoutes обработчик для GET /api/routes - маршруты текущего пользователя.
func (h *Handler) ListRoutes(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	routes, err := h.Routes.ListByUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}

// ListPublicRoutes обработчик для GET /api/routes/public.
func (h *Handler) ListPublicRoutes(c *gin.Context) {
	routes, err := h.Routes.ListPublic()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}

// ListFavoriteRoutes обработчик для GET /api/routes/favorites.
func (h *Handler) ListFavoriteRoutes(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	routes, err := h.Routes.ListFavorites(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}

// GetRoute обработчик для GET /api/routes/:id - маршрут с остановками.
func (h *Handler) GetRoute(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	route, stops, err := h.Routes.GetWithStops(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routeResponse(route, stops))
}

// createRouteRequest - тело запроса ручного создания маршрута.
type createRouteRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	DurationHours int     `json:"duration_hours"`
	Budget        float64 `json:"budget"`
	IsPublic      bool    `json:"is_public"`
	AttractionIDs []int   `json:"attraction_ids" binding:"required"`
}

// CreateRoute обработчик для POST /api/routes - ручное создание маршрута.
func (h *Handler) CreateRoute(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req createRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Нужны name и attraction_ids"})
		return
	}
	route, stops, err := h.Routes.CreateManual(userID, req.Name, req.Description,
		req.DurationHours, req.Budget, req.IsPublic, req.AttractionIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, routeResponse(route, stops))
}

// GenerateRoute обработчик для POST /api/routes/generate.
func (h *Handler) GenerateRoute(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var params service.GenerationParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректное тело запроса"})
		return
	}
	route, stops, err := h.Generator.Generate(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, routeResponse(route, stops))
}

// OptimizeRoute обработчик для POST /api/routes/:id/optimize.
func (h *Handler) OptimizeRoute(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	route, stops, err := h.Routes.Reoptimize(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routeResponse(route, stops))
}

// IncrementRouteViews обработчик для POST /api/routes/:id/views.
func (h *Handler) IncrementRouteViews(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	views, err := h.Routes.IncrementViews(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"views_count": views})
}

// ToggleRouteFavorite обработчик для POST /api/routes/:id/favorite.
func (h *Handler) ToggleRouteFavorite(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	favorite, err := h.Routes.ToggleFavorite(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_favorite": favorite})
}

// DeleteRoute обработчик для DELETE /api/routes/:id.
func (h *Handler) DeleteRoute(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	if err := h.Routes.Delete(id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPreferences обработчик для GET /api/preferences.
func (h *Handler) GetPreferences(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	pref, err := h.Preferences.Get(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}

// updatePreferencesRequest - тело запроса обновления предпочтений.
type updatePreferencesRequest struct {
	Interests            []string `json:"interests"`
	PreferredDurationMin int      `json:"preferred_duration_min"`
	PreferredDurationMax int      `json:"preferred_duration_max"`
	MaxBudget            float64  `json:"max_budget"`
	CategoryIDs          []int    `json:"category_ids"`
}

// UpdatePreferences обработчик для PUT /api/preferences.
func (h *Handler) UpdatePreferences(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректное тело запроса"})
		return
	}
	pref := &model.UserPreference{
		UserID:               userID,
		Interests:            pq.StringArray(req.Interests),
		PreferredDurationMin: req.PreferredDurationMin,
		PreferredDurationMax: req.PreferredDurationMax,
		MaxBudget:            req.MaxBudget,
		CategoryIDs:          req.CategoryIDs,
	}
	if err := h.Preferences.Update(pref); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}

// PopularRoutes обработчик для GET /api/analytics/popular.
func (h *Handler) PopularRoutes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	routes, err := h.Routes.Popular(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	attractions, err := h.Attractions.Popular(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes, "attractions": attractions})
}

// RouteStats обработчик для GET /api/analytics/stats.
func (h *Handler) RouteStats(c *gin.Context) {
	stats, err := h.Routes.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	users, err := h.Auth.CountUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": stats, "total_users": users})
}
