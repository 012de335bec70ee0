//go:build rp2040 || rp2350

package logx

import "rtcnode-go/x/fmtx"

// Logger prefixes lines with its name and writes to fmtx.DefaultOutput.
type Logger struct{ name string }

var level = InfoLevel

func New(name string) Logger { return Logger{name: name} }

func SetLevel(lv Level) { level = lv }

func (g Logger) emit(lv Level, tag, format string, args []any) {
	if lv < level {
		return
	}
	_, _ = fmtx.Printf("["+g.name+"] "+tag+format+"\r\n", args...)
}

func (g Logger) Debugf(format string, args ...any) { g.emit(DebugLevel, "debug: ", format, args) }
func (g Logger) Infof(format string, args ...any)  { g.emit(InfoLevel, "", format, args) }
func (g Logger) Warnf(format string, args ...any)  { g.emit(WarnLevel, "warn: ", format, args) }
func (g Logger) Errorf(format string, args ...any) { g.emit(ErrorLevel, "error: ", format, args) }
