package block

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the block package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the block package's logger.
// This must be called before any blocks are built. Reference count changes are
// traced only when l has debug logging enabled.
func SetLogger(l *zap.Logger) {
	logger = l
	cells.Unsubscribe(cellLogger{})
	if l.Core().Enabled(zap.DebugLevel) {
		cells.Subscribe(cellLogger{})
	}
}
