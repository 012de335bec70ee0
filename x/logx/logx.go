// Package logx gives every package a named logger that works on host and
// MCU builds alike.
package logx

// Level orders messages by severity.
type Level uint8

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "debug":
		return DebugLevel, true
	case "info":
		return InfoLevel, true
	case "warn", "warning":
		return WarnLevel, true
	case "error":
		return ErrorLevel, true
	}
	return InfoLevel, false
}
