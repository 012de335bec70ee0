// Package platform binds the rtc service to real hardware: an I2C bus,
// the FOUT pin, the system clock and a restart path.
package platform

import (
	"io"

	"tinygo.org/x/drivers"

	"rtcnode-go/drivers/ab1805"
	"rtcnode-go/services/rtc"
	"rtcnode-go/x/logx"
)

var log = logx.New("platform")

// Host is an opened platform.
type Host struct {
	I2C     drivers.I2C
	Pin     rtc.PinFactory
	Clock   ab1805.SystemClock
	Restart func()

	// Console streams; nil when no console is wired.
	In  io.Reader
	Out io.Writer

	closers []func() error
}

// Bindings returns the rtc service view of h.
func (h *Host) Bindings() rtc.Bindings {
	return rtc.Bindings{
		I2C:     h.I2C,
		Pin:     h.Pin,
		Clock:   h.Clock,
		Restart: h.Restart,
	}
}

// Close releases buses in reverse order of opening.
func (h *Host) Close() error {
	var first error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	h.closers = nil
	return first
}
