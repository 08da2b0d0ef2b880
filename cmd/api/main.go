package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/config"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/handler"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/llm"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/repository"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // PostgreSQL драйвер
)

func main() {
	// .env удобен при локальной разработке; в продакшене его может не быть
	if err := godotenv.Load(); err == nil {
		log.Println("Загружен .env")
	}
	cfg := config.Load()

	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		log.Fatalf("Не удалось подключиться к базе данных: %v", err)
	}
	applyMigrations(db)

	// Инициализируем репозитории
	userRepo := repository.NewUserRepository(db)
	attractionRepo := repository.NewAttractionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	routeRepo := repository.NewRouteRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)

	// Клиент подсказок маршрутов; без настройки работаем алгоритмически
	oracle, err := llm.New(cfg)
	if err != nil {
		log.Printf("Подсказки маршрутов отключены: %v", err)
		oracle = nil
	} else {
		log.Printf("Провайдер подсказок маршрутов: %s", oracle.Provider())
	}

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo)
	attractionService := service.NewAttractionService(attractionRepo, categoryRepo)
	routeService := service.NewRouteService(routeRepo, attractionRepo)
	preferenceService := service.NewPreferenceService(prefRepo)
	selector := service.NewSelector(attractionRepo, cfg.StrictBudget)
	matcher := service.NewMatcher(attractionRepo, categoryRepo, cfg.SlugRetryLimit)
	generator := service.NewRouteGenerator(selector, matcher, oracle,
		routeRepo, attractionRepo, categoryRepo, prefRepo,
		cfg.City, cfg.DefaultDurationHours, cfg.GeneratorType)

	// Создаем Handler и регистрируем маршруты
	h := handler.NewHandler(attractionService, routeService, generator, preferenceService, authService)
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders: []string{"Content-Type", "X-User-ID"},
	}))
	h.RegisterRoutes(router)

	// Запускаем HTTP-сервер
	if err := router.Run(":" + cfg.APIPort); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}

// applyMigrations выполняет SQL-миграции из каталога migrations (если есть).
func applyMigrations(db *sqlx.DB) {
	files, err := filepath.Glob("migrations/*.sql")
	if err != nil {
		return
	}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			log.Printf("Миграция %s не прочиталась: %v", file, err)
			continue
		}
		if _, err := db.Exec(string(content)); err != nil {
			log.Printf("Миграция %s завершилась ошибкой: %v", file, err)
		} else {
			log.Printf("Миграция %s применена.", file)
		}
	}
}
