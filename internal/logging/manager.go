package logging

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// LoggerManager выдаёт именованные логгеры компонентов поверх глобального
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*zap.Logger
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{
			loggers: make(map[string]*zap.Logger),
		}
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при необходимости
func (lm *LoggerManager) GetLogger(component string) *zap.Logger {
	lm.mu.RLock()
	if logger, exists := lm.loggers[component]; exists {
		lm.mu.RUnlock()
		return logger
	}
	lm.mu.RUnlock()

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if logger, exists := lm.loggers[component]; exists {
		return logger
	}
	logger := L().Named(component)
	lm.loggers[component] = logger
	return logger
}

// Reset забывает созданные логгеры (после смены глобального логгера)
func (lm *LoggerManager) Reset() {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.loggers = make(map[string]*zap.Logger)
}

// ListComponents возвращает имена компонентов по алфавиту
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// Удобные функции для получения логгеров
func GetComponentLogger(component string) *zap.Logger {
	return GetLoggerManager().GetLogger(component)
}

func GetWorldLogger() *zap.Logger {
	return GetComponentLogger("world")
}

func GetGameLogger() *zap.Logger {
	return GetComponentLogger("game")
}
