//go:build !(rp2040 || rp2350)

package logx

import (
	"sync"

	logger "github.com/d2r2/go-logger"
)

// Logger wraps a d2r2 package logger.
type Logger struct{ l logger.PackageLog }

var (
	mu    sync.Mutex
	names []string
	level = InfoLevel
)

// New returns the logger for a package name, e.g. "rtc".
func New(name string) Logger {
	mu.Lock()
	defer mu.Unlock()
	names = append(names, name)
	return Logger{logger.NewPackageLogger(name, d2r2Level(level))}
}

// SetLevel changes the threshold of every logger, existing or future.
func SetLevel(lv Level) {
	mu.Lock()
	defer mu.Unlock()
	level = lv
	for _, n := range names {
		_ = logger.ChangePackageLogLevel(n, d2r2Level(lv))
	}
}

func d2r2Level(lv Level) logger.LogLevel {
	switch lv {
	case DebugLevel:
		return logger.DebugLevel
	case WarnLevel:
		return logger.WarnLevel
	case ErrorLevel:
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}

func (g Logger) Debugf(format string, args ...any) { g.l.Debugf(format, args...) }
func (g Logger) Infof(format string, args ...any)  { g.l.Infof(format, args...) }
func (g Logger) Warnf(format string, args ...any)  { g.l.Warningf(format, args...) }
func (g Logger) Errorf(format string, args ...any) { g.l.Errorf(format, args...) }
