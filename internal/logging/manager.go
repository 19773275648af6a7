package logging

import (
	"fmt"
	"sync"
)

// Manager hands out one Logger per named component, creating it lazily.
type Manager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{loggers: make(map[string]*Logger)}
	})
	return globalManager
}

func (m *Manager) GetLogger(component string) (*Logger, error) {
	m.mu.RLock()
	if logger, ok := m.loggers[component]; ok {
		m.mu.RUnlock()
		return logger, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if logger, ok := m.loggers[component]; ok {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("create logger for %s: %w", component, err)
	}
	m.loggers[component] = logger
	return logger, nil
}

// MustGetLogger falls back to defaultLogger (console-only) if the file
// logger for component can't be opened.
func (m *Manager) MustGetLogger(component string) *Logger {
	logger, err := m.GetLogger(component)
	if err != nil {
		return defaultLogger
	}
	return logger
}

func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for component, logger := range m.loggers {
		if err := logger.Close(); err != nil {
			lastErr = fmt.Errorf("close logger for %s: %w", component, err)
		}
	}
	m.loggers = make(map[string]*Logger)
	return lastErr
}

func (m *Manager) ListComponents() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	components := make([]string, 0, len(m.loggers))
	for component := range m.loggers {
		components = append(components, component)
	}
	return components
}

func (m *Manager) SetLevels(component string, console, file Level) error {
	m.mu.RLock()
	logger, ok := m.loggers[component]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("logger for component %s not found", component)
	}
	logger.minConsoleLevel = console
	logger.minFileLevel = file
	return nil
}

func ForComponent(component string) *Logger {
	return GetManager().MustGetLogger(component)
}
