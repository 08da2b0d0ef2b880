package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/Jack1337322/tourist-routes-service-backend/internal/config"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/llm"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/model"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/repository"
	"github.com/Jack1337322/tourist-routes-service-backend/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const helpText = `Команды:
/newroute - начать сбор нового маршрута
/save [название] - сохранить собранный маршрут
/myroutes - мои маршруты
/generate <часы> [бюджет] - подобрать маршрут автоматически
/help - эта справка

Любой другой текст - поиск по каталогу мест (или * для всех).`

func main() {
	godotenv.Load()
	cfg := config.Load()

	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		log.Fatalf("Не удалось подключиться к базе данных: %v", err)
	}

	// Инициализация репозиториев и сервисов
	userRepo := repository.NewUserRepository(db)
	attractionRepo := repository.NewAttractionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	routeRepo := repository.NewRouteRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)

	oracle, err := llm.New(cfg)
	if err != nil {
		log.Printf("Подсказки маршрутов отключены: %v", err)
		oracle = nil
	}

	authService := service.NewAuthService(userRepo)
	attractionService := service.NewAttractionService(attractionRepo, categoryRepo)
	routeService := service.NewRouteService(routeRepo, attractionRepo)
	selector := service.NewSelector(attractionRepo, cfg.StrictBudget)
	matcher := service.NewMatcher(attractionRepo, categoryRepo, cfg.SlugRetryLimit)
	generator := service.NewRouteGenerator(selector, matcher, oracle,
		routeRepo, attractionRepo, categoryRepo, prefRepo,
		cfg.City, cfg.DefaultDurationHours, cfg.GeneratorType)

	// Инициализация Telegram Bot API
	if cfg.BotToken == "" {
		log.Fatal("Не указан токен бота (TELEGRAM_BOT_TOKEN)")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal("Ошибка инициализации бота:", err)
	}
	log.Printf("Запущен бот %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	// Состояние диалогов: собираемый маршрут для каждого пользователя
	pendingRoute := make(map[int64][]int) // TelegramID -> выбранные достопримечательности

	for update := range updates {
		// --- CallbackQuery (inline buttons) ---
		if cq := update.CallbackQuery; cq != nil {
			bot.Request(tgbotapi.NewCallback(cq.ID, ""))

			fromID := cq.From.ID
			data := cq.Data

			switch {
			// Показ деталей достопримечательности
			case strings.HasPrefix(data, "ATT_"):
				attID, _ := strconv.Atoi(strings.TrimPrefix(data, "ATT_"))
				attraction, err := attractionService.GetByID(attID)
				if err != nil {
					bot.Send(tgbotapi.NewMessage(fromID, "Место не найдено."))
					continue
				}

				price := "бесплатно"
				if !attraction.IsFree && attraction.Price > 0 {
					price = fmt.Sprintf("%.0f руб.", attraction.Price)
				}
				text := fmt.Sprintf(
					"*%s*\n%s\n\nРейтинг: %.1f | Посещение: ~%d мин | Вход: %s\n[Открыть в картах](https://maps.google.com/?q=%f,%f)",
					attraction.Name, attraction.Description, attraction.Rating,
					attraction.VisitDuration, price, attraction.Latitude, attraction.Longitude,
				)
				msg := tgbotapi.NewMessage(fromID, text)
				msg.ParseMode = "Markdown"

				btnAdd := tgbotapi.NewInlineKeyboardButtonData("Добавить в маршрут", fmt.Sprintf("ADD_%d", attraction.ID))
				msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btnAdd))
				bot.Send(msg)

			// Добавление в собираемый маршрут
			case strings.HasPrefix(data, "ADD_"):
				attID, _ := strconv.Atoi(strings.TrimPrefix(data, "ADD_"))
				pendingRoute[fromID] = append(pendingRoute[fromID], attID)
				bot.Send(tgbotapi.NewMessage(fromID,
					fmt.Sprintf("Место добавлено. В маршруте мест: %d. /save - сохранить.", len(pendingRoute[fromID]))))

			// Показ сохранённого маршрута
			case strings.HasPrefix(data, "RT_"):
				routeID, _ := strconv.Atoi(strings.TrimPrefix(data, "RT_"))
				route, stops, err := routeService.GetWithStops(routeID)
				if err != nil {
					bot.Send(tgbotapi.NewMessage(fromID, "Маршрут не найден."))
					continue
				}
				msg := tgbotapi.NewMessage(fromID, formatRoute(route, stops))
				btnOpt := tgbotapi.NewInlineKeyboardButtonData("Оптимизировать порядок", fmt.Sprintf("OPT_%d", route.ID))
				msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btnOpt))
				bot.Send(msg)

			// Переупорядочивание остановок по близости
			case strings.HasPrefix(data, "OPT_"):
				routeID, _ := strconv.Atoi(strings.TrimPrefix(data, "OPT_"))
				route, stops, err := routeService.Reoptimize(routeID)
				if err != nil {
					bot.Send(tgbotapi.NewMessage(fromID, "Не удалось оптимизировать маршрут."))
					continue
				}
				bot.Send(tgbotapi.NewMessage(fromID, "Порядок обновлён.\n\n"+formatRoute(route, stops)))
			}
			continue
		}

		// --- Обычные сообщения ---
		if update.Message == nil {
			continue
		}
		msg := update.Message
		chatID := msg.Chat.ID
		userID := msg.From.ID

		// Команды
		if msg.IsCommand() {
			switch msg.Command() {
			case "start":
				user, err := authService.AuthByTelegram(userID, msg.From.UserName, msg.From.FirstName, msg.From.LastName)
				if err != nil {
					bot.Send(tgbotapi.NewMessage(chatID, "Ошибка авторизации."))
				} else {
					bot.Send(tgbotapi.NewMessage(chatID,
						fmt.Sprintf("Здравствуйте, %s!\n\n%s", user.FirstName, helpText)))
				}

			case "help":
				bot.Send(tgbotapi.NewMessage(chatID, helpText))

			case "newroute":
				pendingRoute[userID] = nil
				bot.Send(tgbotapi.NewMessage(chatID, "Начат новый маршрут. Найдите места поиском и добавляйте их."))

			case "save":
				ids := pendingRoute[userID]
				if len(ids) == 0 {
					bot.Send(tgbotapi.NewMessage(chatID, "В маршруте нет мест. Сначала добавьте их."))
					continue
				}
				user, err := authService.AuthByTelegram(userID, msg.From.UserName, msg.From.FirstName, msg.From.LastName)
				if err != nil {
					bot.Send(tgbotapi.NewMessage(chatID, "Ошибка авторизации."))
					continue
				}
				name := strings.TrimSpace(msg.CommandArguments())
				if name == "" {
					name = "Мой маршрут"
				}
				route, stops, err := routeService.CreateManual(user.ID, name, "", 1, 0, false, ids)
				if err != nil {
					bot.Send(tgbotapi.NewMessage(chatID, "Не удалось сохранить маршрут."))
					continue
				}
				delete(pendingRoute, userID)
				reply := tgbotapi.NewMessage(chatID, "Маршрут сохранён.\n\n"+formatRoute(route, stops))
				btnOpt := tgbotapi.NewInlineKeyboardButtonData("Оптимизировать порядок", fmt.Sprintf("OPT_%d", route.ID))
				reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btnOpt))
				bot.Send(reply)

			case "myroutes":
				user, err := authService.AuthByTelegram(userID, msg.From.UserName, msg.From.FirstName, msg.From.LastName)
				if err != nil {
					bot.Send(tgbotapi.NewMessage(chatID, "Ошибка авторизации."))
					continue
				}
				routes, err := routeService.ListByUser(user.ID)
				if err != nil || len(routes) == 0 {
					bot.Send(tgbotapi.NewMessage(chatID, "У вас пока нет маршрутов."))
					continue
				}
				var rows [][]tgbotapi.InlineKeyboardButton
				for _, route := range routes {
					label := fmt.Sprintf("%s (%.1f км)", route.Name, route.DistanceKm)
					rows = append(rows, tgbotapi.NewInlineKeyboardRow(
						tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("RT_%d", route.ID))))
				}
				reply := tgbotapi.NewMessage(chatID, fmt.Sprintf("Ваши маршруты: %d", len(routes)))
				reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
				bot.Send(reply)

			case "generate":
				user, err := authService.AuthByTelegram(userID, msg.From.UserName, msg.From.FirstName, msg.From.LastName)
				if err != nil {
					bot.Send(tgbotapi.NewMessage(chatID, "Ошибка авторизации."))
					continue
				}
				args := strings.Fields(msg.CommandArguments())
				params := service.GenerationParams{}
				if len(args) > 0 {
					if hours, err := strconv.Atoi(args[0]); err == nil {
						params.DurationHours = hours
					}
				}
				if len(args) > 1 {
					if budget, err := strconv.ParseFloat(args[1], 64); err == nil {
						params.MaxBudget = &budget
					}
				}
				bot.Send(tgbotapi.NewMessage(chatID, "Подбираем маршрут..."))
				route, stops, err := generator.Generate(context.Background(), user.ID, params)
				if err != nil {
					bot.Send(tgbotapi.NewMessage(chatID, "Не удалось подобрать маршрут: "+err.Error()))
					continue
				}
				reply := tgbotapi.NewMessage(chatID, formatRoute(route, stops))
				btnOpt := tgbotapi.NewInlineKeyboardButtonData("Оптимизировать порядок", fmt.Sprintf("OPT_%d", route.ID))
				reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btnOpt))
				bot.Send(reply)
			}
			continue
		}

		// Поиск по каталогу по тексту
		kw := strings.TrimSpace(msg.Text)
		if kw == "*" {
			kw = ""
		}
		attractions, err := attractionService.Search(0, nil, kw, "")
		if err != nil || len(attractions) == 0 {
			bot.Send(tgbotapi.NewMessage(chatID, "Ничего не найдено."))
			continue
		}
		if len(attractions) > 10 {
			attractions = attractions[:10]
		}

		var rows [][]tgbotapi.InlineKeyboardButton
		for _, a := range attractions {
			name := a.Name
			if len(name) > 30 {
				name = name[:30] + "..."
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(name, fmt.Sprintf("ATT_%d", a.ID))))
		}
		reply := tgbotapi.NewMessage(chatID, fmt.Sprintf("Найдено: %d", len(attractions)))
		reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
		bot.Send(reply)
	}
}

// formatRoute собирает текстовое описание маршрута с остановками.
func formatRoute(route *model.Route, stops []model.RouteStop) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nОстановок: %d, всего %.1f км\n", route.Name, len(stops), route.DistanceKm)
	for _, stop := range stops {
		fmt.Fprintf(&b, "\n%d. %s (~%d мин)", stop.Order, stop.Attraction.Name, stop.VisitDuration)
		if stop.Notes != "" {
			fmt.Fprintf(&b, " (в подсказке: %s)", stop.Notes)
		}
	}
	return b.String()
}
