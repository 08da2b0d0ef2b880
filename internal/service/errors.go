package service

import "errors"

// Ошибки генератора маршрутов. Обработчики транслируют их в HTTP-статусы,
// бот - в сообщения пользователю.
var (
	// ErrNoCandidates означает, что по заданным ограничениям в каталоге
	// не нашлось ни одного подходящего места.
	ErrNoCandidates = errors.New("нет подходящих мест по заданным условиям")

	// ErrOracleUpstream означает отказ внешнего сервиса подсказок:
	// запрос не удался или ответ не разобрался. Запрос можно повторить.
	ErrOracleUpstream = errors.New("сервис подсказок маршрутов недоступен")

	// ErrNoStopsResolved означает, что ни одна подсказка не сопоставилась
	// с каталогом и не была создана; маршрут без остановок не сохраняется.
	ErrNoStopsResolved = errors.New("ни одно место из подсказки не удалось сопоставить с каталогом")

	// ErrBudgetInfeasible возвращается в строгом режиме, когда даже первое
	// место маршрута не укладывается в бюджет времени или денег.
	ErrBudgetInfeasible = errors.New("бюджет слишком мал даже для одного места")

	// ErrSlugExhausted означает, что не удалось подобрать уникальный slug
	// за отведённое число попыток.
	ErrSlugExhausted = errors.New("не удалось подобрать уникальный slug")
)
