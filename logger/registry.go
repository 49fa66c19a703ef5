package logger

import "sync"

// named maps component names to registered loggers.
var named sync.Map

// Register makes l the logger Get returns for name. Packages that resolve
// their logger lazily, such as stream, use it for instances created
// afterwards. A nil l removes the registration.
func Register(name string, l *Logger) {
	if l == nil {
		named.Delete(name)
		return
	}
	named.Store(name, l)
}

// Get returns the logger registered under name, or the global logger tagged
// with name as its component.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}
