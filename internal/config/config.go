// Package config предоставляет загрузку конфигурации приложения из переменных окружения.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит все параметры конфигурации приложения.
// Значения загружаются из переменных окружения с fallback на значения по умолчанию.
type Config struct {
	DBHost string // хост PostgreSQL
	DBPort string // порт PostgreSQL
	DBUser string // пользователь PostgreSQL
	DBPass string // пароль PostgreSQL
	DBName string // имя базы данных

	APIPort        string   // порт HTTP сервера
	AllowedOrigins []string // разрешённые origin для CORS

	BotToken string // токен Telegram-бота

	City string // город, для которого строятся маршруты

	LLMProvider       string        // провайдер подсказок маршрутов: perplexity, gemini или disabled
	PerplexityAPIKey  string        // ключ Perplexity API
	PerplexityModel   string        // модель Perplexity
	PerplexityURL     string        // адрес chat/completions Perplexity
	GeminiAPIKey      string        // ключ Gemini API
	GeminiModel       string        // модель Gemini
	LLMTimeout        time.Duration // таймаут одного запроса к LLM
	LLMRequestsPerMin int           // ограничение частоты запросов к LLM

	DefaultDurationHours int    // длительность маршрута по умолчанию в часах
	GeneratorType        string // тип генератора по умолчанию: llm, algorithmic или hybrid
	StrictBudget         bool   // отклонять маршрут, если даже первое место не укладывается в бюджет
	SlugRetryLimit       int    // максимум попыток подбора уникального slug
}

// Load загружает конфигурацию из переменных окружения.
// Если переменная не установлена, используется значение по умолчанию.
func Load() *Config {
	return &Config{
		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBUser: getEnv("DB_USER", "postgres"),
		DBPass: getEnv("DB_PASS", ""),
		DBName: getEnv("DB_NAME", "tourist_routes"),

		APIPort:        getEnv("API_PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		City: getEnv("ROUTES_CITY", "Казань"),

		LLMProvider:       getEnv("LLM_PROVIDER", "disabled"),
		PerplexityAPIKey:  getEnv("PERPLEXITY_API_KEY", ""),
		PerplexityModel:   getEnv("PERPLEXITY_MODEL", "sonar"),
		PerplexityURL:     getEnv("PERPLEXITY_API_URL", "https://api.perplexity.ai/chat/completions"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMTimeout:        time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,
		LLMRequestsPerMin: getEnvInt("LLM_REQUESTS_PER_MINUTE", 20),

		DefaultDurationHours: getEnvInt("GENERATOR_DEFAULT_HOURS", 4),
		GeneratorType:        getEnv("GENERATOR_TYPE", "hybrid"),
		StrictBudget:         getEnvBool("GENERATOR_STRICT_BUDGET", false),
		SlugRetryLimit:       getEnvInt("SLUG_RETRY_LIMIT", 50),
	}
}

// DSN возвращает строку подключения к PostgreSQL.
func (c *Config) DSN() string {
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPass + " dbname=" + c.DBName + " sslmode=disable"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
