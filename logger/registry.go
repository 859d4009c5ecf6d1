package logger

import (
	"strings"
	"sync"
)

// registry maps dotted logger names such as "httpclient.billing" to loggers.
var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
}

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// Register stores l under name. Registering "httpclient" routes every
// "httpclient.<client>" logger that has no entry of its own to l.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// Unregister removes the logger stored under name.
func Unregister(name string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.loggers, name)
}

// Get returns the logger for a dotted name. An exact registration wins.
// Otherwise the closest registered parent is used, tagged with the full name
// under FieldLogger. With no registered parent it returns the global logger
// with name as its component.
//
//	logger.Register("httpclient", l)
//	logger.Get("httpclient.billing") // l with logger=httpclient.billing
func Get(name string) *Logger {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	if l, ok := registry.loggers[name]; ok {
		return l
	}
	for key := parentName(name); key != ""; key = parentName(key) {
		if l, ok := registry.loggers[key]; ok {
			return l.WithFields(Fields(FieldLogger, name))
		}
	}
	return GetGlobalLogger().WithComponent(name)
}

func parentName(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[:i]
}
