package llm

import (
	"fmt"
	"strings"
)

// placeTypeKeywords сопоставляет тип места с ключевыми словами в тексте.
// Порядок важен: он определяет порядок типов в результате распознавания.
var placeTypeKeywords = []struct {
	placeType string
	keywords  []string
}{
	{"attractions", []string{"достопримечательность", "памятник", "архитектур", "исторический", "культурный", "экскурсия", "обзор"}},
	{"restaurants", []string{"ресторан", "рестораны", "еда", "кухня", "гастроном", "обед", "ужин", "трапеза"}},
	{"bars", []string{"бар", "бары", "паб", "пабы", "пивной", "коктейль", "напиток", "алкоголь"}},
	{"cafes", []string{"кафе", "кофе", "кофейня", "завтрак", "перекус", "десерт"}},
	{"museums", []string{"музей", "музеи", "экспозиция", "выставка", "коллекция", "галерея"}},
	{"parks", []string{"парк", "парки", "сквер", "скверы", "природа", "набережная", "прогулка"}},
	{"entertainment", []string{"развлечение", "развлечения", "клуб", "клубы", "кинотеатр", "театр", "концерт"}},
	{"shopping", []string{"магазин", "магазины", "торговый", "шоппинг", "покупка", "сувенир"}},
	{"hotels", []string{"отель", "отели", "гостиница", "размещение", "ночлег"}},
}

// DetectPlaceTypes определяет типы мест по названию или описанию маршрута.
// Если ничего не распознано, возвращает только "attractions".
func DetectPlaceTypes(text string) []string {
	if text == "" {
		return []string{"attractions"}
	}

	textLower := strings.ToLower(text)
	var detected []string
	for _, entry := range placeTypeKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(textLower, keyword) {
				detected = append(detected, entry.placeType)
				break
			}
		}
	}

	if len(detected) == 0 {
		return []string{"attractions"}
	}
	return detected
}

// BuildPrompt собирает промпт для запроса черновика маршрута.
func BuildPrompt(req Request) string {
	placeTypes := req.PlaceTypes
	if len(placeTypes) == 0 || (len(placeTypes) == 1 && placeTypes[0] == "attractions") {
		combined := strings.TrimSpace(req.RouteName + " " + req.RouteDescription)
		if combined != "" {
			placeTypes = DetectPlaceTypes(combined)
		} else {
			placeTypes = []string{"attractions"}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Создай туристический маршрут по городу %s на %d часов.", req.City, req.DurationHours)

	if req.RouteName != "" {
		fmt.Fprintf(&b, "\n\nНазвание маршрута (используй это название или похожее): %s", req.RouteName)
	}
	if req.RouteDescription != "" {
		fmt.Fprintf(&b, "\n\nОписание маршрута от пользователя: %s", req.RouteDescription)
	}

	interests := "не указаны"
	if len(req.Interests) > 0 {
		interests = strings.Join(req.Interests, ", ")
	}
	fmt.Fprintf(&b, "\n\nИнтересы пользователя: %s\nБюджет: %.0f рублей", interests, req.MaxBudget)

	b.WriteString(themeInstruction(placeTypes, req.RouteName))

	b.WriteString("\n\nДоступные достопримечательности:\n")
	catalog := req.Catalog
	if len(catalog) > catalogLimit {
		catalog = catalog[:catalogLimit]
	}
	for _, entry := range catalog {
		category := entry.Category
		if category == "" {
			category = "Без категории"
		}
		fmt.Fprintf(&b, "- %s (%s) - %s\n", entry.Name, category, entry.Description)
	}

	fmt.Fprintf(&b, `
ВАЖНО: Ты ДОЛЖЕН вернуть ответ ТОЛЬКО в формате JSON без дополнительного текста. JSON должен содержать:
1. "name" - название маршрута
2. "description" - подробное описание маршрута (2-3 предложения)
3. "attractions" - МАССИВ объектов, где каждый объект содержит:
   - "name" - точное название достопримечательности
   - "order" - порядковый номер посещения (начиная с 1)
   - "visit_duration" - время посещения в минутах
   - "latitude" - широта координат места (обязательно, число)
   - "longitude" - долгота координат места (обязательно, число)
   - "description" - краткое описание места (1-2 предложения, опционально)
   - "address" - адрес места в городе %s (опционально)

Выбери 4-8 мест (можно использовать из списка выше или добавить известные места города %s) и расположи их в логичном порядке.

ОБЯЗАТЕЛЬНО укажи координаты для каждого места.

Пример правильного ответа:
{
    "name": "Маршрут по центру города",
    "description": "Описание маршрута...",
    "attractions": [
        {
            "name": "Казанский Кремль",
            "order": 1,
            "visit_duration": 90,
            "latitude": 55.7981,
            "longitude": 49.1063,
            "description": "Историческая крепость, объект Всемирного наследия ЮНЕСКО",
            "address": "Кремль, Казань"
        }
    ]
}

КРИТИЧЕСКИ ВАЖНО: Твой ответ должен быть ТОЛЬКО валидным JSON объектом без дополнительного текста, комментариев или markdown разметки. Начни ответ сразу с открывающей фигурной скобки { и закончи закрывающей }. Массив "attractions" ОБЯЗАТЕЛЕН и должен содержать минимум 4 элемента.`,
		req.City, req.City)

	return b.String()
}

// themeInstruction строит указание о тематике маршрута и распределении
// типов мест по времени дня.
func themeInstruction(placeTypes []string, routeName string) string {
	selected := make(map[string]bool, len(placeTypes))
	for _, t := range placeTypes {
		selected[t] = true
	}

	if len(placeTypes) > 1 || (len(placeTypes) == 1 && placeTypes[0] != "attractions") {
		var distribution []string

		var morning []string
		if selected["attractions"] {
			morning = append(morning, "достопримечательности")
		}
		if selected["museums"] {
			morning = append(morning, "музеи")
		}
		if selected["parks"] {
			morning = append(morning, "парки")
		}
		if len(morning) > 0 {
			distribution = append(distribution, "- Утро (9-12): "+strings.Join(morning, ", "))
		}

		var lunch []string
		if selected["restaurants"] {
			lunch = append(lunch, "рестораны")
		}
		if selected["cafes"] {
			lunch = append(lunch, "кафе")
		}
		if len(lunch) > 0 {
			distribution = append(distribution, "- Обед (12-14): "+strings.Join(lunch, ", "))
		}

		var afternoon []string
		if selected["attractions"] {
			afternoon = append(afternoon, "достопримечательности")
		}
		if selected["museums"] {
			afternoon = append(afternoon, "музеи")
		}
		if selected["parks"] {
			afternoon = append(afternoon, "парки")
		}
		if selected["shopping"] {
			afternoon = append(afternoon, "магазины")
		}
		if len(afternoon) > 0 {
			distribution = append(distribution, "- День (14-18): "+strings.Join(afternoon, ", "))
		}

		var evening []string
		if selected["bars"] {
			evening = append(evening, "бары")
		}
		if selected["restaurants"] {
			evening = append(evening, "рестораны")
		}
		if selected["entertainment"] {
			evening = append(evening, "развлечения")
		}
		if len(evening) > 0 {
			distribution = append(distribution, "- Вечер (18-22): "+strings.Join(evening, ", "))
		}

		if len(distribution) > 0 {
			return "\n\nВАЖНО: Маршрут должен включать разные типы мест, соответствующие теме маршрута. Распредели места по маршруту логично по времени дня:\n" +
				strings.Join(distribution, "\n") +
				"\n\nСоздай сбалансированный маршрут, который включает соответствующие типы мест в логичной последовательности."
		}
		return ""
	}

	if routeName == "" {
		return ""
	}
	nameLower := strings.ToLower(routeName)
	themes := []struct {
		keywords    []string
		instruction string
	}{
		{[]string{"бар", "бары", "клуб", "клубы", "развлечения", "ночная"},
			"\n\nВАЖНО: Маршрут должен быть посвящён барам, клубам и ночным развлечениям. Выбери бары, пабы, клубы и развлекательные заведения."},
		{[]string{"еда", "ресторан", "кафе", "кухня", "гастроном"},
			"\n\nВАЖНО: Маршрут должен быть посвящён гастрономии. Выбери рестораны, кафе и места с местной кухней."},
		{[]string{"история", "исторический", "музей", "памятник"},
			"\n\nВАЖНО: Маршрут должен быть посвящён истории и культуре. Выбери исторические достопримечательности и музеи."},
		{[]string{"природа", "парк", "сквер", "набережная"},
			"\n\nВАЖНО: Маршрут должен быть посвящён природе и паркам. Выбери парки, скверы и природные достопримечательности."},
	}
	for _, theme := range themes {
		for _, keyword := range theme.keywords {
			if strings.Contains(nameLower, keyword) {
				return theme.instruction
			}
		}
	}
	return ""
}
