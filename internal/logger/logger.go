// Package logger предоставляет уровневое логирование для сервисов приложения.
// Debug-сообщения включаются отдельно и помогают разбирать работу
// генератора маршрутов: выбор мест, сопоставление подсказок, fallback-и.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu     sync.RWMutex
	debug  bool
	output io.Writer = os.Stderr
)

// SetDebug включает или выключает debug-сообщения.
func SetDebug(v bool) {
	mu.Lock()
	defer mu.Unlock()
	debug = v
}

// SetOutput задаёт writer для логов. По умолчанию os.Stderr.
// Используется в тестах.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug печатает сообщение, если включён debug-режим.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if debug {
		write("DEBUG", format, args...)
	}
}

// Info печатает информационное сообщение.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	write("INFO", format, args...)
}

// Warn печатает предупреждение.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	write("WARN", format, args...)
}

// Error печатает сообщение об ошибке.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	write("ERROR", format, args...)
}

func write(level, format string, args ...any) {
	ts := time.Now().Format("2006/01/02 15:04:05")
	fmt.Fprintf(output, ts+" ["+level+"] "+format+"\n", args...)
}
