//go:build rp2040 || rp2350

package fmtx

import "io"

// DefaultOutput is used by Print/Printf on MCU builds.
// Set this from your platform bootstrap (e.g. a UART writer).
var DefaultOutput io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func Sprintf(format string, a ...any) string { return string(appendf(nil, format, a...)) }

func Printf(format string, a ...any) (int, error) {
	return DefaultOutput.Write(appendf(nil, format, a...))
}

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	return w.Write(appendf(nil, format, a...))
}

func Errorf(format string, a ...any) error { return &stringError{Sprintf(format, a...)} }

type stringError struct{ s string }

func (e *stringError) Error() string { return e.s }
