package internal

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the package logger. It is a no-op logger unless SetLogger
// has been called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger replaces the package logger. Interpreters created afterward use
// it unless their own Log field is set.
func SetLogger(l *zap.Logger) {
	logger = l
}

// log returns the interpreter's logger.
func (i *Interp) log() *zap.Logger {
	if i.Log != nil {
		return i.Log
	}
	return Logger()
}
